// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/herdcount/herdcount/internal/platform/config"
	"github.com/herdcount/herdcount/internal/platform/constants"
	"github.com/herdcount/herdcount/internal/platform/metrics"
	"github.com/herdcount/herdcount/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// RouteRegistrar is implemented by every domain handler. Public routes are
// reachable by field devices, protected routes require a session.
type RouteRegistrar interface {
	PublicRoutes(router chi.Router)
	ProtectedRoutes(router chi.Router)
}

// Handlers groups everything mounted on the router.
type Handlers struct {
	// Health serves /health, /ready and /api/test.
	Health *HealthHandlers

	// Domains are mounted under /api in order.
	Domains []RouteRegistrar
}

// Dependencies are the cross-cutting components of the middleware chain.
type Dependencies struct {
	Verifier    middleware.TokenVerifier
	RateLimiter *middleware.RateLimiter

	// Metrics is optional. When set, /metrics is exposed.
	Metrics *metrics.Metrics
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *Server {
	r := NewRouter(cfg, log, deps, h)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the handler tree without binding a listener.
func NewRouter(cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log, cfg.Proxies()))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Handler)
	}
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.ExposeErrors(cfg.IsDevelopment()))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	if h.Health != nil {
		r.Get("/health", h.Health.Liveness)
		r.Get("/ready", h.Health.Readiness)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// # Application API
	r.Route("/api", func(api chi.Router) {
		if h.Health != nil {
			api.Get("/test", h.Health.Probe)
		}

		for _, domain := range h.Domains {
			domain.PublicRoutes(api)
		}

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticate(deps.Verifier))
			for _, domain := range h.Domains {
				domain.ProtectedRoutes(protected)
			}
		})
	})

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Handler exposes the root handler for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
