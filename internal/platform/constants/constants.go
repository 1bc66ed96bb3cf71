// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Storage: per-operation deadlines for the backing store.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and session lifetime.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "herdcount-api"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 15 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 20 * time.Second

	// MaxRequestBodyBytes caps JSON payloads. Devices send a few dozen bytes.
	MaxRequestBodyBytes = 64 << 10
)

// # Storage

const (
	// StoreTimeout bounds every single repository call.
	StoreTimeout = 5 * time.Second

	// StatementTimeout is applied server-side to every pooled connection.
	StatementTimeout = 10 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "herdcount"

	// DefaultSessionTTL is the validity window of an issued session token.
	DefaultSessionTTL = 24 * time.Hour
)

// # Devices

const (
	// DefaultDeviceStaleAfter is three missed 60-second heartbeats.
	DefaultDeviceStaleAfter = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"
	AuthSchemeBearer    = "bearer"
	ContentTypeJSONUTF8 = "application/json; charset=utf-8"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Redis Prefixes

const (
	RedisPrefixLoginAttempts = "auth:login_attempts:"
)
