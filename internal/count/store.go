// Copyright (c) 2026 Herdcount. All rights reserved.

package count

import (
	"context"
	"time"
)

// Repository defines the data access contract for the event log.
type Repository interface {
	// Insert appends one event.
	Insert(ctx context.Context, event *Event) error

	// List returns every event, newest first.
	List(ctx context.Context) ([]*Event, error)

	// ListBetween returns events with from <= timestamp < to, newest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]*Event, error)

	// Stats computes every aggregate in one statement over one snapshot.
	Stats(ctx context.Context, windows Windows) (Stats, error)
}
