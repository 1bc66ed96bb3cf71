// Copyright (c) 2026 Herdcount. All rights reserved.

package device_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/device"
	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/metrics"
)

var epoch = time.Date(2026, 5, 2, 6, 0, 0, 0, time.UTC)

const staleAfter = 3 * time.Minute

// memRepository is an in-memory [device.Repository] with the same
// last-seen semantics as the SQL implementation.
type memRepository struct {
	mu      sync.Mutex
	devices map[string]*device.Device
}

func newMemRepository() *memRepository {
	return &memRepository{devices: make(map[string]*device.Device)}
}

func (r *memRepository) Create(_ context.Context, d *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *d
	r.devices[d.ID] = &stored
	return nil
}

func (r *memRepository) FindByID(_ context.Context, id string) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, apperr.NotFound("Device")
	}
	copied := *d
	return &copied, nil
}

func (r *memRepository) List(_ context.Context) ([]*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := make([]*device.Device, 0, len(r.devices))
	for _, d := range r.devices {
		copied := *d
		devices = append(devices, &copied)
	}
	sort.Slice(devices, func(i, j int) bool {
		if !devices[i].RegisteredAt.Equal(devices[j].RegisteredAt) {
			return devices[i].RegisteredAt.Before(devices[j].RegisteredAt)
		}
		return devices[i].ID < devices[j].ID
	})
	return devices, nil
}

func (r *memRepository) Touch(_ context.Context, id string, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return apperr.NotFound("Device")
	}
	if seenAt.After(d.LastSeen) {
		d.LastSeen = seenAt
	}
	d.Status = device.StatusActive
	return nil
}

func (r *memRepository) SetStatus(_ context.Context, id string, status device.Status) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, apperr.NotFound("Device")
	}
	d.Status = status
	copied := *d
	return &copied, nil
}

func (r *memRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[id]; !ok {
		return apperr.NotFound("Device")
	}
	delete(r.devices, id)
	return nil
}

type fixture struct {
	clock      *clock.Fake
	repository *memRepository
	metrics    *metrics.Metrics
	service    *device.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:      clock.NewFake(epoch),
		repository: newMemRepository(),
		metrics:    metrics.New(),
	}
	f.service = device.NewService(f.repository, f.clock, staleAfter, f.metrics)
	return f
}

/*
TestService_Register applies defaults and starts the device online.
*/
func TestService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.service.Register(ctx, device.RegisterInput{})
	require.NoError(t, err)
	assert.Equal(t, device.DefaultName, view.Name)
	assert.Equal(t, device.DefaultLocation, view.Location)
	assert.Equal(t, device.StatusActive, view.Status)
	assert.Equal(t, epoch, view.RegisteredAt)
	assert.Equal(t, epoch, view.LastSeen)
	assert.Equal(t, device.LivenessOnline, view.Liveness)
	assert.Len(t, view.ID, 36)

	view, err = f.service.Register(ctx, device.RegisterInput{Name: "  North   gate ", Location: "Paddock 4"})
	require.NoError(t, err)
	assert.Equal(t, "North gate", view.Name)
	assert.Equal(t, "Paddock 4", view.Location)

	_, err = f.service.Register(ctx, device.RegisterInput{Name: strings.Repeat("x", device.MaxNameLength+1)})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))
}

/*
TestService_HeartbeatKeepsLastSeenMonotonic reactivates devices and never
moves last-seen backwards.
*/
func TestService_HeartbeatKeepsLastSeenMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.service.Register(ctx, device.RegisterInput{Name: "gate"})
	require.NoError(t, err)

	_, err = f.service.SetStatus(ctx, view.ID, string(device.StatusInactive))
	require.NoError(t, err)

	f.clock.Advance(90 * time.Second)
	require.NoError(t, f.service.Heartbeat(ctx, view.ID))

	got, err := f.service.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, device.StatusActive, got.Status)
	assert.Equal(t, epoch.Add(90*time.Second), got.LastSeen)

	// A replica with a lagging clock must not rewind last-seen.
	f.clock.Set(epoch.Add(30 * time.Second))
	require.NoError(t, f.service.Heartbeat(ctx, view.ID))

	got, err = f.service.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(90*time.Second), got.LastSeen)
}

/*
TestService_HeartbeatUnknown returns NotFound for unknown and malformed ids.
*/
func TestService_HeartbeatUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.service.Heartbeat(ctx, "0190f2a4-5c1e-7b7e-9a55-1d2f0e3c4b5a")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	err = f.service.Heartbeat(ctx, "not-a-uuid")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestService_ListLiveness derives liveness without demoting stored status.
*/
func TestService_ListLiveness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Register(ctx, device.RegisterInput{Name: "first"})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	second, err := f.service.Register(ctx, device.RegisterInput{Name: "second"})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)

	views, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, first.ID, views[0].ID)
	assert.Equal(t, device.LivenessStale, views[0].Liveness)
	assert.Equal(t, int64(240), views[0].SecondsSinceSeen)
	assert.Equal(t, device.StatusActive, views[0].Status)

	assert.Equal(t, second.ID, views[1].ID)
	assert.Equal(t, device.LivenessOnline, views[1].Liveness)
	assert.Equal(t, int64(120), views[1].SecondsSinceSeen)
}

/*
TestService_SetStatus validates the requested status.
*/
func TestService_SetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.service.Register(ctx, device.RegisterInput{})
	require.NoError(t, err)

	_, err = f.service.SetStatus(ctx, view.ID, "retired")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))

	_, err = f.service.SetStatus(ctx, "0190f2a4-5c1e-7b7e-9a55-1d2f0e3c4b5a", "inactive")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	updated, err := f.service.SetStatus(ctx, view.ID, "inactive")
	require.NoError(t, err)
	assert.Equal(t, device.StatusInactive, updated.Status)
}

/*
TestService_Remove deletes once and then reports NotFound.
*/
func TestService_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.service.Register(ctx, device.RegisterInput{})
	require.NoError(t, err)

	require.NoError(t, f.service.Remove(ctx, view.ID))

	err = f.service.Remove(ctx, view.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	err = f.service.Heartbeat(ctx, view.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
