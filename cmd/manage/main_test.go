// Copyright (c) 2026 Herdcount. All rights reserved.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/auth"
	"github.com/herdcount/herdcount/internal/count"
	"github.com/herdcount/herdcount/internal/device"
)

var epoch = time.Date(2026, 5, 2, 6, 0, 0, 0, time.UTC)

/*
TestRun_Usage covers argument handling that never reaches the database.
*/
func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    string
		wantStdout string
	}{
		{name: "help_command", args: []string{"help"}, wantStdout: "Commands:"},
		{name: "help_flag", args: []string{"--help"}, wantStdout: "testuser"},
		{name: "missing_command", args: nil, wantErr: "missing command"},
		{name: "unknown_command", args: []string{"migrate"}, wantErr: `unknown command "migrate"`},
		{name: "extra_argument", args: []string{"users", "admin"}, wantErr: `unexpected argument "admin"`},
		{name: "drop_unconfirmed", args: []string{"drop"}, wantErr: "pass --yes"},
		{name: "reset_unconfirmed", args: []string{"RESET"}, wantErr: "pass --yes"},
		{name: "bad_flag", args: []string{"--limit", "many", "counts"}, wantErr: "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			err := run(context.Background(), tt.args, &stdout, &stderr)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout.String(), tt.wantStdout)
		})
	}
}

/*
TestPrintCounts limits rows but totals the whole log.
*/
func TestPrintCounts(t *testing.T) {
	events := []*count.Event{
		demoEvent("dev-1", 0, 0, epoch),
		demoEvent("dev-1", 0, 1, epoch),
		demoEvent("dev-1", 0, 2, epoch),
	}

	var out bytes.Buffer
	require.NoError(t, printCounts(&out, events, 2))

	text := out.String()
	assert.Contains(t, text, "Total records: 3")
	assert.Contains(t, text, "Total animals: 6")
	assert.Equal(t, 2, strings.Count(text, "dev-1"))
	assert.Contains(t, text, "2026-05-02 06:00:00Z")
}

/*
TestPrintDevicesAndUsers renders one row per entry.
*/
func TestPrintDevicesAndUsers(t *testing.T) {
	d := demoDevice(0, epoch)
	views := []device.View{device.NewView(d, epoch.Add(10*time.Minute), 3*time.Minute)}

	var out bytes.Buffer
	require.NoError(t, printDevices(&out, views))
	assert.Contains(t, out.String(), "Demo device 1")
	assert.Contains(t, out.String(), "stale")

	out.Reset()
	require.NoError(t, printUsers(&out, []*auth.User{{ID: "u-1", Username: "rancher", CreatedAt: epoch}}))
	assert.Contains(t, out.String(), "Total users: 1")
	assert.Contains(t, out.String(), "rancher")
}

/*
TestDemoEvent spreads events backwards one hour apart.
*/
func TestDemoEvent(t *testing.T) {
	first := demoEvent("dev-1", 1, 0, epoch)
	third := demoEvent("dev-1", 1, 2, epoch)

	assert.Equal(t, epoch, first.Timestamp)
	assert.Equal(t, epoch.Add(-2*time.Hour), third.Timestamp)
	assert.Equal(t, int64(2), first.Count)
	assert.Equal(t, "cattle", first.AnimalType)
}
