// Copyright (c) 2026 Herdcount. All rights reserved.

package count

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/herdcount/herdcount/internal/platform/request"
	"github.com/herdcount/herdcount/internal/platform/respond"
)

// Handler implements the event log HTTP endpoints.
type Handler struct {
	countService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{countService: service}
}

// PublicRoutes registers endpoints called by field devices.
//
// # Endpoints
//   - POST /count : Appends a count event.
func (handler *Handler) PublicRoutes(router chi.Router) {
	router.Post("/count", handler.record)
}

// ProtectedRoutes registers operator endpoints.
//
// # Endpoints
//   - GET /counts       : Lists every event.
//   - GET /counts/today : Lists today's events with their sum.
//   - GET /counts/stats : Returns totals and rolling sums.
func (handler *Handler) ProtectedRoutes(router chi.Router) {
	router.Get("/counts", handler.list)
	router.Get("/counts/today", handler.today)
	router.Get("/counts/stats", handler.stats)
}

// # Request Payloads

type recordRequest struct {
	DeviceID   string `json:"device_id"`
	Count      *int64 `json:"count"`
	AnimalType string `json:"animal_type"`
}

// # Response Payloads

type recordResponse struct {
	Message string `json:"message"`
	Data    *Event `json:"data"`
}

type listResponse struct {
	Counts []*Event `json:"counts"`
	Total  int      `json:"total"`
}

type todayResponse struct {
	Counts     []*Event `json:"counts"`
	TotalToday int64    `json:"total_today"`
	Records    int      `json:"records"`
}

/*
record appends a count submitted by a device. No authentication.

POST /api/count

Response:
  - 201: {message, data}
  - 400: Invalid JSON, missing count or oversized labels
*/
func (handler *Handler) record(writer http.ResponseWriter, request *http.Request) {
	var input recordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	event, err := handler.countService.Record(request.Context(), RecordInput{
		DeviceID:   input.DeviceID,
		Count:      input.Count,
		AnimalType: input.AnimalType,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, recordResponse{Message: "Count recorded successfully", Data: event})
}

// list returns the whole event log. GET /api/counts
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	events, err := handler.countService.ListAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, listResponse{Counts: events, Total: len(events)})
}

// today returns the events of the current local day. GET /api/counts/today
func (handler *Handler) today(writer http.ResponseWriter, request *http.Request) {
	today, err := handler.countService.ListToday(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, todayResponse{
		Counts:     today.Events,
		TotalToday: today.Total,
		Records:    today.Records,
	})
}

// stats returns the aggregates. GET /api/counts/stats
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.countService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}
