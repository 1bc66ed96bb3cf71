// Copyright (c) 2026 Herdcount. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	"github.com/herdcount/herdcount/internal/platform/metrics"
	"github.com/herdcount/herdcount/internal/platform/sec"
	"github.com/herdcount/herdcount/internal/platform/validate"
	"github.com/herdcount/herdcount/pkg/label"
	"github.com/herdcount/herdcount/pkg/uuidv7"
)

// errInvalidCredentials is shared by unknown users and wrong passwords so
// callers cannot probe which usernames exist.
var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// # Contracts & Types

// TokenIssuer signs and parses session tokens. *sec.TokenService satisfies it.
type TokenIssuer interface {
	IssueToken(username string) (string, time.Time, error)
	ParseToken(token string) (*sec.AuthClaims, error)
}

// ThrottleConfig enables the failed-login throttle.
type ThrottleConfig struct {
	Store       AttemptStore
	MaxAttempts int
	Window      time.Duration
}

// Service implements operator authentication use cases.
type Service struct {
	userRepository UserRepository
	tokenIssuer    TokenIssuer
	throttle       ThrottleConfig
	clock          clock.Clock
	metrics        *metrics.Metrics
}

// NewService constructs a new [Service] with necessary dependencies.
//
// A zero [ThrottleConfig] disables throttling. m may be nil.
func NewService(users UserRepository, tokens TokenIssuer, throttle ThrottleConfig, clk clock.Clock, m *metrics.Metrics) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		userRepository: users,
		tokenIssuer:    tokens,
		throttle:       throttle,
		clock:          clk,
		metrics:        m,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new operator.
type RegisterInput struct {
	Username string
	Password string
}

/*
Register validates, hashes, and persists a new operator account.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - error: InvalidInput, AlreadyExists (if the username is taken) or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) error {
	username := label.Canonical(input.Username)

	validator := &validate.Validator{}
	validator.
		NotEmpty(FieldUsername, username).
		MaxLen(FieldUsername, username, MaxUsernameLength).
		Required(FieldPassword, input.Password).
		MaxBytes(FieldPassword, input.Password, MaxPasswordBytes)
	if err := validator.Err(); err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuidv7.New(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    service.clock.Now().UTC(),
	}

	// The unique constraint decides concurrent registrations of one name.
	if err := service.userRepository.Create(ctx, user); err != nil {
		if apperr.HasCode(err, apperr.CodeAlreadyExists) {
			return apperr.AlreadyExists("Username is already taken")
		}
		return fmt.Errorf("auth_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "operator_registered", slog.String("username", username))
	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

/*
Login validates credentials and issues a session token.

Unknown usernames and wrong passwords fail identically. When a throttle is
configured, too many failures inside the window yield RateLimited until the
window closes.

Returns:
  - *Session: Signed token with its absolute expiry
  - error: InvalidInput, Unauthorized, RateLimited or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	username := label.Canonical(input.Username)

	validator := &validate.Validator{}
	validator.NotEmpty(FieldUsername, username).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.checkThrottle(ctx, username); err != nil {
		service.metrics.Login(metrics.ResultRejected)
		return nil, err
	}

	user, err := service.userRepository.FindByUsername(ctx, username)
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
		}
		// Spend the same bcrypt time as a real comparison.
		sec.BurnPasswordCheck(input.Password)
		return nil, service.loginFailed(ctx, username)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, service.loginFailed(ctx, username)
	}

	service.resetThrottle(ctx, username)

	token, expiresAt, err := service.tokenIssuer.IssueToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.metrics.Login(metrics.ResultOK)
	return &Session{Token: token, Username: user.Username, ExpiresAt: expiresAt}, nil
}

/*
VerifyToken resolves a bearer token to the operator it was issued to.

It fails for malformed, forged and expired tokens, and for tokens whose
username no longer exists.
*/
func (service *Service) VerifyToken(ctx context.Context, token string) (*sec.Identity, error) {
	claims, err := service.tokenIssuer.ParseToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	user, err := service.userRepository.FindByUsername(ctx, claims.Username)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, apperr.Internal(fmt.Errorf("auth_service_verify_lookup_failed: %w", err))
	}

	identity := &sec.Identity{Username: user.Username}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// ListUsers returns every operator account.
func (service *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return service.userRepository.List(ctx)
}

// # Throttle

func (service *Service) throttleEnabled() bool {
	return service.throttle.Store != nil && service.throttle.MaxAttempts > 0
}

// checkThrottle fails open: a Redis outage must not lock operators out.
func (service *Service) checkThrottle(ctx context.Context, username string) error {
	if !service.throttleEnabled() {
		return nil
	}

	failures, remaining, err := service.throttle.Store.Failures(ctx, username)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_unavailable", slog.Any("error", err))
		return nil
	}

	if failures >= service.throttle.MaxAttempts {
		return apperr.RateLimited(retrySeconds(remaining))
	}
	return nil
}

func (service *Service) loginFailed(ctx context.Context, username string) error {
	service.metrics.Login(metrics.ResultFailed)

	if !service.throttleEnabled() {
		return errInvalidCredentials
	}

	failures, err := service.throttle.Store.RecordFailure(ctx, username, service.throttle.Window)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_unavailable", slog.Any("error", err))
		return errInvalidCredentials
	}

	if failures >= service.throttle.MaxAttempts {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttled",
			slog.String("username", username),
			slog.Int("failures", failures),
		)
	}
	return errInvalidCredentials
}

func (service *Service) resetThrottle(ctx context.Context, username string) {
	if !service.throttleEnabled() {
		return
	}
	if err := service.throttle.Store.Reset(ctx, username); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_reset_failed", slog.Any("error", err))
	}
}

func retrySeconds(remaining time.Duration) int {
	seconds := int(math.Ceil(remaining.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

