// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package auth implements operator identity and session management.

It covers registration with salted password hashes, login that issues a
signed bearer token valid for a fixed window, verification of those tokens,
and an optional failed-login throttle.

# Architecture

  - Service: Orchestrates business logic (Register, Login, VerifyToken).
  - Repository: Postgres for accounts, Redis for failed-attempt counters.
  - Security: bcrypt hashes and HS256 session tokens from package sec.
*/
package auth

import "time"

// # Domain Entities

// User represents a dashboard operator.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// # Limits

const (
	// MaxUsernameLength is counted in runes after normalisation.
	MaxUsernameLength = 80

	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)
