// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package metrics exposes Prometheus collectors for the HTTP boundary and the
ingestion paths.

Collectors live on a dedicated [prometheus.Registry] owned by [Metrics], not
on the global default registry, so several servers can coexist in one test
binary.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "herdcount"

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
)

// Metrics groups every collector the service records.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	countEventsTotal *prometheus.CounterVec
	animalsCounted   prometheus.Counter
	heartbeatsTotal  *prometheus.CounterVec
	loginsTotal      *prometheus.CounterVec
}

// New builds and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		countEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "count_events_total",
				Help:      "Count submissions received from field devices",
			},
			[]string{"result"},
		),
		animalsCounted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "animals_counted_total",
				Help:      "Sum of the count field over stored count events",
			},
		),
		heartbeatsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "device_heartbeats_total",
				Help:      "Heartbeats received from field devices",
			},
			[]string{"result"},
		),
		loginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Operator login attempts",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.countEventsTotal,
		m.animalsCounted,
		m.heartbeatsTotal,
		m.loginsTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// # Domain Recorders
//
// Recorders are safe to call on a nil *Metrics, so services can run without
// instrumentation in tests.

// CountRecorded records one stored count event.
func (m *Metrics) CountRecorded(count int64) {
	if m == nil {
		return
	}
	m.countEventsTotal.WithLabelValues(ResultOK).Inc()
	if count > 0 {
		m.animalsCounted.Add(float64(count))
	}
}

// CountFailed records a count submission that was not stored.
func (m *Metrics) CountFailed() {
	if m == nil {
		return
	}
	m.countEventsTotal.WithLabelValues(ResultFailed).Inc()
}

// Heartbeat records a heartbeat with its outcome.
func (m *Metrics) Heartbeat(result string) {
	if m == nil {
		return
	}
	m.heartbeatsTotal.WithLabelValues(result).Inc()
}

// Login records a login attempt with its outcome.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

// # HTTP Instrumentation

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency per chi route pattern.
//
// The route pattern, not the raw path, is used as label so device ids do not
// explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		wrapped := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(wrapped, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequestDuration.WithLabelValues(route, request.Method).Observe(time.Since(startTime).Seconds())
		m.httpRequestsTotal.WithLabelValues(route, request.Method, strconv.Itoa(wrapped.status)).Inc()
	})
}
