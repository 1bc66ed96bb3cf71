// Copyright (c) 2026 Herdcount. All rights reserved.

package auth

import (
	"context"
	"time"
)

// UserRepository defines the data access contract for operator accounts.
//
// # Implementations
//
// The canonical implementation is PostgreSQL ([PostgresUserRepository]).
type UserRepository interface {
	// Create persists a brand-new account.
	//
	// Returns [apperr.AlreadyExists] when the username is taken. Uniqueness
	// is decided by the storage constraint, not by a prior read.
	Create(ctx context.Context, user *User) error

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if no such account exists.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// List returns every account ordered by creation time.
	List(ctx context.Context) ([]*User, error)
}

// AttemptStore counts consecutive failed logins per username.
//
// Counters expire on their own once the window elapses.
type AttemptStore interface {
	// Failures returns the current failure count and the time left before
	// the counter expires.
	Failures(ctx context.Context, username string) (int, time.Duration, error)

	// RecordFailure increments the counter, starting a new window when none
	// is open, and returns the new count.
	RecordFailure(ctx context.Context, username string, window time.Duration) (int, error)

	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, username string) error
}
