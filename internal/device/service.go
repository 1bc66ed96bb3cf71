// Copyright (c) 2026 Herdcount. All rights reserved.

package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	"github.com/herdcount/herdcount/internal/platform/metrics"
	"github.com/herdcount/herdcount/internal/platform/validate"
	"github.com/herdcount/herdcount/pkg/label"
	"github.com/herdcount/herdcount/pkg/uuidv7"
)

// Service implements the device registry use cases.
type Service struct {
	repository Repository
	clock      clock.Clock
	staleAfter time.Duration
	metrics    *metrics.Metrics
}

// NewService constructs a new [Service].
//
// staleAfter is the silence after which a device is reported stale. m may be nil.
func NewService(repository Repository, clk clock.Clock, staleAfter time.Duration, m *metrics.Metrics) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		repository: repository,
		clock:      clk,
		staleAfter: staleAfter,
		metrics:    m,
	}
}

// RegisterInput carries optional device metadata.
type RegisterInput struct {
	Name     string
	Location string
}

/*
Register creates a new active device.

Blank metadata falls back to [DefaultName] and [DefaultLocation].

Returns:
  - View: The stored device, online by construction
  - error: InvalidInput on oversized metadata, otherwise storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (View, error) {
	name := label.OrDefault(input.Name, DefaultName)
	location := label.OrDefault(input.Location, DefaultLocation)

	validator := &validate.Validator{}
	validator.
		MaxLen(FieldName, name, MaxNameLength).
		MaxLen(FieldLocation, location, MaxLocationLength)
	if err := validator.Err(); err != nil {
		return View{}, err
	}

	now := service.clock.Now().UTC()
	device := &Device{
		ID:           uuidv7.New(),
		Name:         name,
		Location:     location,
		Status:       StatusActive,
		RegisteredAt: now,
		LastSeen:     now,
	}

	if err := service.repository.Create(ctx, device); err != nil {
		return View{}, fmt.Errorf("device_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "device_registered",
		slog.String("device_id", device.ID),
		slog.String("name", device.Name),
	)
	return NewView(device, now, service.staleAfter), nil
}

/*
Heartbeat marks a device as alive at the current server time.

Ids that are not UUIDs cannot name a device and yield NotFound without a
storage round trip.
*/
func (service *Service) Heartbeat(ctx context.Context, id string) error {
	if !validate.IsUUID(id) {
		service.metrics.Heartbeat(metrics.ResultNotFound)
		return apperr.NotFound(resourceDevice)
	}

	err := service.repository.Touch(ctx, id, service.clock.Now().UTC())
	switch {
	case err == nil:
		service.metrics.Heartbeat(metrics.ResultOK)
		return nil
	case apperr.HasCode(err, apperr.CodeNotFound):
		service.metrics.Heartbeat(metrics.ResultNotFound)
		return err
	default:
		service.metrics.Heartbeat(metrics.ResultFailed)
		return fmt.Errorf("device_service_heartbeat_failed: %w", err)
	}
}

// List returns every device with its liveness at the current time.
func (service *Service) List(ctx context.Context) ([]View, error) {
	devices, err := service.repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("device_service_list_failed: %w", err)
	}

	now := service.clock.Now()
	views := make([]View, 0, len(devices))
	for _, device := range devices {
		views = append(views, NewView(device, now, service.staleAfter))
	}
	return views, nil
}

// Get returns one device with its liveness.
func (service *Service) Get(ctx context.Context, id string) (View, error) {
	if !validate.IsUUID(id) {
		return View{}, apperr.NotFound(resourceDevice)
	}

	device, err := service.repository.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return NewView(device, service.clock.Now(), service.staleAfter), nil
}

/*
SetStatus applies an operator override of the stored status.

Returns:
  - View: The updated device
  - error: InvalidInput for an unknown status, NotFound, or storage errors
*/
func (service *Service) SetStatus(ctx context.Context, id string, status string) (View, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldStatus, status).
		OneOf(FieldStatus, status, string(StatusActive), string(StatusInactive))
	if err := validator.Err(); err != nil {
		return View{}, err
	}

	if !validate.IsUUID(id) {
		return View{}, apperr.NotFound(resourceDevice)
	}

	device, err := service.repository.SetStatus(ctx, id, Status(status))
	if err != nil {
		return View{}, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "device_status_changed",
		slog.String("device_id", id),
		slog.String("status", status),
	)
	return NewView(device, service.clock.Now(), service.staleAfter), nil
}

// Remove hard-deletes a device.
func (service *Service) Remove(ctx context.Context, id string) error {
	if !validate.IsUUID(id) {
		return apperr.NotFound(resourceDevice)
	}

	if err := service.repository.Delete(ctx, id); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "device_removed", slog.String("device_id", id))
	return nil
}
