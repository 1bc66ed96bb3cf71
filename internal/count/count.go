// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package count implements the append-only log of animal counts reported by
field devices and the aggregations computed over it.

Events are immutable once written. The device id on an event is a free
reference: events from unknown or removed devices are accepted and kept.
*/
package count

import "time"

// Event is a single count reported by a device.
type Event struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	Count      int64     `json:"count"`
	AnimalType string    `json:"animal_type"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	// DefaultDeviceID tags events submitted without a device reference.
	DefaultDeviceID = "unknown"

	// DefaultAnimalType tags events submitted without a classification.
	DefaultAnimalType = "unknown"

	MaxDeviceIDLength   = 36
	MaxAnimalTypeLength = 50
)

const (
	FieldDeviceID   = "device_id"
	FieldCount      = "count"
	FieldAnimalType = "animal_type"
)
