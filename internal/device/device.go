// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package device implements the registry of field devices.

Devices are registered by operators, report liveness through unauthenticated
heartbeats, and are hard-deleted on removal. Count events keep their device
reference after removal.

# Liveness

The stored status only changes through a heartbeat (always "active") or an
explicit operator override. Whether a device is currently reporting is
derived on read from the last heartbeat, see [Classify].
*/
package device

import "time"

// # Domain Entities

// Status is the operator-facing lifecycle state of a device.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Device is a registered field unit.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Status       Status    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
	LastSeen     time.Time `json:"last_seen"`
}

// # Defaults & Limits

const (
	DefaultName     = "Field device"
	DefaultLocation = "Unspecified"

	MaxNameLength     = 100
	MaxLocationLength = 200
)

// # Field Identifiers

const (
	FieldName     = "name"
	FieldLocation = "location"
	FieldStatus   = "status"
)
