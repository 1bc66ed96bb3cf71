// Copyright (c) 2026 Herdcount. All rights reserved.

package count_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/count"
	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/metrics"
	"github.com/herdcount/herdcount/pkg/pointer"
)

var epoch = time.Date(2026, 5, 2, 6, 0, 0, 0, time.UTC)

// memRepository is an in-memory [count.Repository].
type memRepository struct {
	mu     sync.Mutex
	events []*count.Event
	fail   error
}

func (r *memRepository) Insert(_ context.Context, event *count.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	stored := *event
	r.events = append(r.events, &stored)
	return nil
}

func (r *memRepository) sorted(keep func(*count.Event) bool) []*count.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]*count.Event, 0, len(r.events))
	for _, event := range r.events {
		if keep(event) {
			copied := *event
			events = append(events, &copied)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].ID > events[j].ID
	})
	return events
}

func (r *memRepository) List(_ context.Context) ([]*count.Event, error) {
	return r.sorted(func(*count.Event) bool { return true }), nil
}

func (r *memRepository) ListBetween(_ context.Context, from, to time.Time) ([]*count.Event, error) {
	return r.sorted(func(e *count.Event) bool {
		return !e.Timestamp.Before(from) && e.Timestamp.Before(to)
	}), nil
}

func (r *memRepository) Stats(_ context.Context, windows count.Windows) (count.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats count.Stats
	for _, e := range r.events {
		stats.TotalAnimals += e.Count
		stats.TotalRecords++
		if !e.Timestamp.Before(windows.StartOfToday) {
			stats.Today += e.Count
		}
		if !e.Timestamp.Before(windows.WeekAgo) {
			stats.ThisWeek += e.Count
		}
		if !e.Timestamp.Before(windows.MonthAgo) {
			stats.ThisMonth += e.Count
		}
	}
	return stats, nil
}

type fixture struct {
	clock      *clock.Fake
	repository *memRepository
	metrics    *metrics.Metrics
	service    *count.Service
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	f := &fixture{
		clock:      clock.NewFake(epoch),
		repository: &memRepository{},
		metrics:    metrics.New(),
	}
	f.service = count.NewService(f.repository, f.clock, loc, f.metrics)
	return f
}

func (f *fixture) record(t *testing.T, at time.Time, n int64) {
	t.Helper()
	f.clock.Set(at)
	_, err := f.service.Record(context.Background(), count.RecordInput{Count: pointer.To(n)})
	require.NoError(t, err)
}

/*
TestService_RecordDefaults fills blank labels and stamps server time.
*/
func TestService_RecordDefaults(t *testing.T) {
	f := newFixture(t, time.UTC)

	event, err := f.service.Record(context.Background(), count.RecordInput{Count: pointer.To[int64](3)})
	require.NoError(t, err)
	assert.Equal(t, count.DefaultDeviceID, event.DeviceID)
	assert.Equal(t, count.DefaultAnimalType, event.AnimalType)
	assert.Equal(t, int64(3), event.Count)
	assert.Equal(t, epoch, event.Timestamp)
	assert.Len(t, event.ID, 36)

	event, err = f.service.Record(context.Background(), count.RecordInput{
		DeviceID:   "rasp-01",
		Count:      pointer.To[int64](-2),
		AnimalType: "  sheep\u200b ",
	})
	require.NoError(t, err)
	assert.Equal(t, "rasp-01", event.DeviceID)
	assert.Equal(t, "sheep", event.AnimalType)
	assert.Equal(t, int64(-2), event.Count, "sign is not validated")
}

/*
TestService_RecordValidation rejects a missing count and long labels.
*/
func TestService_RecordValidation(t *testing.T) {
	f := newFixture(t, time.UTC)
	ctx := context.Background()

	_, err := f.service.Record(ctx, count.RecordInput{DeviceID: "rasp-01"})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))

	_, err = f.service.Record(ctx, count.RecordInput{
		Count:      pointer.To[int64](1),
		AnimalType: strings.Repeat("x", count.MaxAnimalTypeLength+1),
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))

	f.repository.fail = errors.New("disk full")
	_, err = f.service.Record(ctx, count.RecordInput{Count: pointer.To[int64](1)})
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))

	assert.Empty(t, f.repository.events)

	expected := `
# HELP herdcount_count_events_total Count submissions received from field devices
# TYPE herdcount_count_events_total counter
herdcount_count_events_total{result="failed"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "herdcount_count_events_total"))
}

/*
TestService_ListToday uses the configured local calendar day.
*/
func TestService_ListToday(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	seed := func(f *fixture) {
		f.record(t, time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC), 1)  // May 1 23:00 Berlin
		f.record(t, time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC), 3)  // May 2 01:00 Berlin
		f.record(t, time.Date(2026, 5, 2, 5, 0, 0, 0, time.UTC), 4)   // May 2 07:00 Berlin
		f.record(t, time.Date(2026, 5, 2, 22, 0, 0, 0, time.UTC), 50) // May 3 00:00 Berlin
		f.clock.Set(epoch)
	}

	t.Run("berlin", func(t *testing.T) {
		f := newFixture(t, berlin)
		seed(f)

		today, err := f.service.ListToday(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, today.Records)
		assert.Equal(t, int64(7), today.Total)
		assert.Equal(t, int64(4), today.Events[0].Count, "newest first")
		assert.Equal(t, int64(3), today.Events[1].Count)
	})

	t.Run("utc", func(t *testing.T) {
		f := newFixture(t, time.UTC)
		seed(f)

		today, err := f.service.ListToday(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, today.Records)
		assert.Equal(t, int64(54), today.Total)
	})
}

/*
TestService_Stats sums all-time and rolling windows independently.
*/
func TestService_Stats(t *testing.T) {
	f := newFixture(t, time.UTC)

	f.record(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 100)
	f.record(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), 20)
	f.record(t, time.Date(2026, 4, 28, 6, 0, 0, 0, time.UTC), 10)
	f.record(t, time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC), 3)
	f.record(t, time.Date(2026, 5, 2, 5, 0, 0, 0, time.UTC), 4)
	f.clock.Set(epoch)

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, count.Stats{
		TotalAnimals: 137,
		TotalRecords: 5,
		Today:        4,
		ThisWeek:     17,
		ThisMonth:    37,
	}, stats)

	all, err := f.service.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(4), all[0].Count)
	assert.Equal(t, int64(100), all[4].Count)
}

/*
TestService_StatsRollingWindows places events at now, -2d, -10d and -40d.
*/
func TestService_StatsRollingWindows(t *testing.T) {
	f := newFixture(t, time.UTC)

	for _, event := range []struct {
		age   time.Duration
		count int64
	}{
		{0, 1},
		{2 * 24 * time.Hour, 2},
		{10 * 24 * time.Hour, 4},
		{40 * 24 * time.Hour, 8},
	} {
		f.record(t, epoch.Add(-event.age), event.count)
	}
	f.clock.Set(epoch)

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Today)
	assert.Equal(t, int64(3), stats.ThisWeek)
	assert.Equal(t, int64(7), stats.ThisMonth)
	assert.Equal(t, int64(15), stats.TotalAnimals)
	assert.Equal(t, int64(4), stats.TotalRecords)
}

/*
TestService_RecordThenListAll finds exactly the submitted event.
*/
func TestService_RecordThenListAll(t *testing.T) {
	f := newFixture(t, time.UTC)
	callTime := f.clock.Now()

	_, err := f.service.Record(context.Background(), count.RecordInput{
		DeviceID:   "d1",
		Count:      pointer.To[int64](3),
		AnimalType: "bovine",
	})
	require.NoError(t, err)

	events, err := f.service.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "d1", events[0].DeviceID)
	assert.Equal(t, int64(3), events[0].Count)
	assert.Equal(t, "bovine", events[0].AnimalType)
	assert.False(t, events[0].Timestamp.Before(callTime))
}
