// Copyright (c) 2026 Herdcount. All rights reserved.

package count_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/count"
)

/*
TestDayBounds builds the local calendar day, including DST transitions.
*/
func TestDayBounds(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantLen   time.Duration
	}{
		{
			name:      "utc_midday",
			now:       time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
			wantLen:   24 * time.Hour,
		},
		{
			// 23:30 UTC on May 2 is already May 3 in Berlin.
			name:      "local_day_differs_from_utc",
			now:       time.Date(2026, 5, 2, 23, 30, 0, 0, time.UTC),
			wantStart: time.Date(2026, 5, 3, 0, 0, 0, 0, berlin),
			wantLen:   24 * time.Hour,
		},
		{
			name:      "spring_forward",
			now:       time.Date(2026, 3, 29, 12, 0, 0, 0, berlin),
			wantStart: time.Date(2026, 3, 29, 0, 0, 0, 0, berlin),
			wantLen:   23 * time.Hour,
		},
		{
			name:      "fall_back",
			now:       time.Date(2026, 10, 25, 12, 0, 0, 0, berlin),
			wantStart: time.Date(2026, 10, 25, 0, 0, 0, 0, berlin),
			wantLen:   25 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := tt.wantStart.Location()
			start, end := count.DayBounds(tt.now, loc)
			assert.True(t, start.Equal(tt.wantStart), "start %s", start)
			assert.Equal(t, tt.wantLen, end.Sub(start))
		})
	}
}

/*
TestWindowsAt uses rolling windows independent of the calendar.
*/
func TestWindowsAt(t *testing.T) {
	now := time.Date(2026, 5, 2, 6, 0, 0, 0, time.UTC)

	windows := count.WindowsAt(now, time.UTC)

	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), windows.StartOfToday)
	assert.Equal(t, time.Date(2026, 4, 25, 6, 0, 0, 0, time.UTC), windows.WeekAgo)
	assert.Equal(t, time.Date(2026, 4, 2, 6, 0, 0, 0, time.UTC), windows.MonthAgo)
}
