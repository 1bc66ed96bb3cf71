// Copyright (c) 2026 Herdcount. All rights reserved.

package count

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/ctxutil"
	"github.com/herdcount/herdcount/internal/platform/metrics"
	"github.com/herdcount/herdcount/internal/platform/validate"
	"github.com/herdcount/herdcount/pkg/label"
	"github.com/herdcount/herdcount/pkg/slice"
	"github.com/herdcount/herdcount/pkg/uuidv7"
)

// Service implements the event log and aggregation use cases.
type Service struct {
	repository Repository
	clock      clock.Clock
	location   *time.Location
	metrics    *metrics.Metrics
}

// NewService constructs a new [Service].
//
// loc defines the calendar day for today aggregations. m may be nil.
func NewService(repository Repository, clk clock.Clock, loc *time.Location, m *metrics.Metrics) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repository: repository,
		clock:      clk,
		location:   loc,
		metrics:    m,
	}
}

// RecordInput is a count submitted by a device. Count is required; the
// other fields fall back to their defaults when blank.
type RecordInput struct {
	DeviceID   string
	Count      *int64
	AnimalType string
}

/*
Record appends a count event stamped with the server clock.

The sign of the count is not checked. Zero and negative corrections are
stored as sent.

Returns:
  - *Event: The stored event
  - error: InvalidInput when count is missing or a label is too long
*/
func (service *Service) Record(ctx context.Context, input RecordInput) (*Event, error) {
	deviceID := label.OrDefault(input.DeviceID, DefaultDeviceID)
	animalType := label.OrDefault(input.AnimalType, DefaultAnimalType)

	validator := &validate.Validator{}
	validator.
		Present(FieldCount, input.Count != nil).
		MaxLen(FieldDeviceID, deviceID, MaxDeviceIDLength).
		MaxLen(FieldAnimalType, animalType, MaxAnimalTypeLength)
	if err := validator.Err(); err != nil {
		service.metrics.CountFailed()
		return nil, err
	}

	event := &Event{
		ID:         uuidv7.New(),
		DeviceID:   deviceID,
		Count:      *input.Count,
		AnimalType: animalType,
		Timestamp:  service.clock.Now().UTC(),
	}

	if err := service.repository.Insert(ctx, event); err != nil {
		service.metrics.CountFailed()
		return nil, fmt.Errorf("count_service_record_failed: %w", err)
	}

	service.metrics.CountRecorded(event.Count)
	ctxutil.GetLogger(ctx).DebugContext(ctx, "count_recorded",
		slog.String("device_id", event.DeviceID),
		slog.Int64("count", event.Count),
		slog.String("animal_type", event.AnimalType),
	)
	return event, nil
}

// ListAll returns the whole event log, newest first.
func (service *Service) ListAll(ctx context.Context) ([]*Event, error) {
	events, err := service.repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("count_service_list_failed: %w", err)
	}
	return events, nil
}

// ListToday returns the events of the current local calendar day with
// their sum and record count.
func (service *Service) ListToday(ctx context.Context) (*Today, error) {
	start, end := DayBounds(service.clock.Now(), service.location)

	events, err := service.repository.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count_service_list_today_failed: %w", err)
	}

	return &Today{
		Events:  events,
		Total:   slice.Reduce(events, int64(0), func(sum int64, event *Event) int64 { return sum + event.Count }),
		Records: len(events),
	}, nil
}

// Stats returns all-time totals and rolling window sums.
func (service *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := service.repository.Stats(ctx, WindowsAt(service.clock.Now(), service.location))
	if err != nil {
		return Stats{}, fmt.Errorf("count_service_stats_failed: %w", err)
	}
	return stats, nil
}
