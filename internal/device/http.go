// Copyright (c) 2026 Herdcount. All rights reserved.

package device

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/herdcount/herdcount/internal/platform/request"
	"github.com/herdcount/herdcount/internal/platform/respond"
)

// Handler implements the device registry HTTP endpoints.
type Handler struct {
	deviceService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{deviceService: service}
}

// PublicRoutes registers endpoints called by field devices.
//
// # Endpoints
//   - POST /devices/{id}/heartbeat : Reports that a device is alive.
func (handler *Handler) PublicRoutes(router chi.Router) {
	router.Post("/devices/{id}/heartbeat", handler.heartbeat)
}

// ProtectedRoutes registers operator endpoints.
//
// # Endpoints
//   - GET    /devices             : Lists devices with liveness.
//   - POST   /devices/register    : Registers a new device.
//   - GET    /devices/{id}        : Returns one device.
//   - PUT    /devices/{id}/status : Overrides the stored status.
//   - DELETE /devices/{id}        : Removes a device.
func (handler *Handler) ProtectedRoutes(router chi.Router) {
	router.Get("/devices", handler.list)
	router.Post("/devices/register", handler.register)
	router.Get("/devices/{id}", handler.get)
	router.Put("/devices/{id}/status", handler.setStatus)
	router.Delete("/devices/{id}", handler.remove)
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// # Response Payloads

type listResponse struct {
	Devices []View `json:"devices"`
	Total   int    `json:"total"`
}

type deviceResponse struct {
	Message string `json:"message,omitempty"`
	Device  View   `json:"device"`
}

/*
list returns every registered device.

GET /api/devices

Response:
  - 200: {devices, total}
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	devices, err := handler.deviceService.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, listResponse{Devices: devices, Total: len(devices)})
}

/*
register creates a device. An empty body is accepted and yields defaults.

POST /api/devices/register

Response:
  - 201: {message, device}
  - 400: Invalid JSON or oversized metadata
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeOptionalJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	device, err := handler.deviceService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Location: input.Location,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, deviceResponse{Message: "Device registered successfully", Device: device})
}

// get returns one device. GET /api/devices/{id}
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	device, err := handler.deviceService.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, deviceResponse{Device: device})
}

/*
setStatus overrides the stored status of a device.

PUT /api/devices/{id}/status

Response:
  - 200: {message, device}
  - 400: Invalid JSON or status
  - 404: Unknown device
*/
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	var input statusRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	device, err := handler.deviceService.SetStatus(request.Context(), requestutil.Param(request, "id"), input.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, deviceResponse{Message: "Device status updated", Device: device})
}

/*
heartbeat records that a field device is alive. No authentication.

POST /api/devices/{id}/heartbeat

Response:
  - 200: {message}
  - 404: Unknown device
*/
func (handler *Handler) heartbeat(writer http.ResponseWriter, request *http.Request) {
	if err := handler.deviceService.Heartbeat(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Heartbeat received")
}

// remove deletes a device. DELETE /api/devices/{id}
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.deviceService.Remove(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, "Device removed successfully")
}
