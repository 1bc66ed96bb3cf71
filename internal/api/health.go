// Copyright (c) 2026 Herdcount. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	"github.com/herdcount/herdcount/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(ctx context.Context) error

	// CheckCache pings the Redis client. Nil when Redis is not configured.
	CheckCache func(ctx context.Context) error

	// Clock stamps the probe response. Defaults to the wall clock.
	Clock clock.Clock
}

// HealthHandlers are the unauthenticated probe endpoints.
type HealthHandlers struct {
	dependencies HealthDependencies
}

// NewHealthHandlers creates the probe handlers.
func NewHealthHandlers(deps HealthDependencies) *HealthHandlers {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &HealthHandlers{dependencies: deps}
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
}

type probeResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Liveness handles GET /health. It never touches dependencies.
func (handler *HealthHandlers) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// Probe handles GET /api/test, the connectivity check used by field devices.
func (handler *HealthHandlers) Probe(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, probeResponse{
		Message:   "Server is running",
		Timestamp: handler.dependencies.Clock.Now().UTC(),
	})
}

// Readiness handles GET /ready. Any failing dependency yields 503.
func (handler *HealthHandlers) Readiness(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	checks := []struct {
		name  string
		check func(ctx context.Context) error
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}

		result := checkResult{Name: dependency.name, IsOK: true}
		if err := dependency.check(ctx); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "readiness_check_failed",
				slog.String("dependency", dependency.name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	if !isSystemReady {
		respond.JSON(writer, http.StatusServiceUnavailable, readinessResponse{Status: "degraded", Checks: results})
		return
	}
	respond.OK(writer, readinessResponse{Status: "ready", Checks: results})
}
