// Copyright (c) 2026 Herdcount. All rights reserved.

package count

import "time"

// Stats summarises the event log. All sums are int64.
type Stats struct {
	TotalAnimals int64 `json:"total_animals"`
	TotalRecords int64 `json:"total_records"`
	Today        int64 `json:"today"`
	ThisWeek     int64 `json:"this_week"`
	ThisMonth    int64 `json:"this_month"`
}

// Windows holds the lower bounds of the rolling aggregation windows.
//
// The windows are independent: this week is the last 7 x 24h, not the
// calendar week.
type Windows struct {
	StartOfToday time.Time
	WeekAgo      time.Time
	MonthAgo     time.Time
}

// WindowsAt computes the aggregation windows for now in loc.
func WindowsAt(now time.Time, loc *time.Location) Windows {
	start, _ := DayBounds(now, loc)
	return Windows{
		StartOfToday: start,
		WeekAgo:      now.Add(-7 * 24 * time.Hour),
		MonthAgo:     now.Add(-30 * 24 * time.Hour),
	}
}

// DayBounds returns the local calendar day containing now as the half-open
// interval [start, end).
//
// Days are built with [time.Date] so days shortened or stretched by a DST
// transition keep their real length.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	year, month, day := local.Date()

	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	return start, end
}

// Today is the event log restricted to the current local day.
type Today struct {
	Events  []*Event
	Total   int64
	Records int
}
