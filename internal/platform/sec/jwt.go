// Copyright (c) 2026 Herdcount. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. The auth service consumes it through small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/herdcount/herdcount/internal/platform/clock"
)

// minSecretLength rejects toy secrets at startup.
const minSecretLength = 16

// ErrWeakSecret is returned when the configured signing secret is too short.
var ErrWeakSecret = errors.New("sec: signing secret must be at least 16 bytes")

// AuthClaims is the payload embedded inside a session token.
//
// The username doubles as the subject. Verification re-resolves it against
// the credential store, so no other identity data is carried.
type AuthClaims struct {
	jwt.RegisteredClaims

	Username string `json:"unm"`
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues and verifies HS256 session tokens.
//
// The secret is fixed for the lifetime of the process. Rotating it
// invalidates every outstanding session.
type TokenService struct {
	secret     []byte
	issuer     string
	timeToLive time.Duration
	clock      clock.Clock
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret, issuer string, timeToLive time.Duration, clk clock.Clock) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if timeToLive <= 0 {
		return nil, fmt.Errorf("sec: token ttl must be positive, got %s", timeToLive)
	}
	if clk == nil {
		clk = clock.Real()
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
		clock:      clk,
	}, nil
}

// IssueToken signs a token for username valid for the configured TTL.
//
// # Returns
//   - The signed token string.
//   - The absolute expiry embedded in the token.
func (service *TokenService) IssueToken(username string) (string, time.Time, error) {
	issuedAt := service.clock.Now().Truncate(time.Second)
	expiresAt := issuedAt.Add(service.timeToLive)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// ParseToken checks the signature, issuer and expiry of a token string.
//
// It does not check that the username still exists; the auth service does.
func (service *TokenService) ParseToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	if !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// TimeToLive reports the configured session validity window.
func (service *TokenService) TimeToLive() time.Duration {
	return service.timeToLive
}
