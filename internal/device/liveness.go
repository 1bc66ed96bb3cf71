// Copyright (c) 2026 Herdcount. All rights reserved.

package device

import "time"

// Liveness tells whether a device has reported recently.
type Liveness string

const (
	LivenessOnline Liveness = "online"
	LivenessStale  Liveness = "stale"
)

// View is a device as presented to operators, with derived liveness.
type View struct {
	Device

	Liveness         Liveness `json:"liveness"`
	SecondsSinceSeen int64    `json:"seconds_since_seen"`
}

// Classify derives liveness from the last heartbeat.
//
// A device is online while now - lastSeen <= staleAfter. A last-seen time in
// the future (clock skew between replicas) counts as zero seconds.
func Classify(lastSeen, now time.Time, staleAfter time.Duration) (Liveness, int64) {
	silence := now.Sub(lastSeen)
	if silence < 0 {
		silence = 0
	}

	if silence <= staleAfter {
		return LivenessOnline, int64(silence / time.Second)
	}
	return LivenessStale, int64(silence / time.Second)
}

// NewView wraps a device with its liveness at now.
func NewView(device *Device, now time.Time, staleAfter time.Duration) View {
	liveness, seconds := Classify(device.LastSeen, now, staleAfter)
	return View{Device: *device, Liveness: liveness, SecondsSinceSeen: seconds}
}
