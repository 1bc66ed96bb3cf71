// Copyright (c) 2026 Herdcount. All rights reserved.

package device

import (
	"context"
	"time"
)

// Repository defines the data access contract for the device registry.
//
// Every method that addresses a device by id returns [apperr.NotFound] when
// no such device exists.
type Repository interface {
	// Create persists a new device. The caller sets every field.
	Create(ctx context.Context, device *Device) error

	// FindByID returns the device with the given id.
	FindByID(ctx context.Context, id string) (*Device, error)

	// List returns every device ordered by registration time, then id.
	List(ctx context.Context) ([]*Device, error)

	// Touch records a heartbeat at seenAt and marks the device active.
	//
	// LastSeen never moves backwards: the stored value becomes
	// max(LastSeen, seenAt) in a single statement.
	Touch(ctx context.Context, id string, seenAt time.Time) error

	// SetStatus overrides the stored status and returns the updated device.
	SetStatus(ctx context.Context, id string, status Status) (*Device, error)

	// Delete hard-deletes the device.
	Delete(ctx context.Context, id string) error
}
