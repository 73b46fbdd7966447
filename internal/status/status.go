// Package status provides a thread-safe status tracker for the door-sentry
// daemon. It is read by the HTTP handlers and feeds the MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
)

// Config contains daemon configuration for display.
type Config struct {
	Device       int
	Width        int
	Height       int
	Broker       string
	HTTPAddr     string
	UploadDir    string
	IndicatorPin int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Door            detect.Status
	ChangePct       float64
	Threshold       float64
	LiveActive      bool
	Counts          detect.Counts
	FramesProcessed int64
	StartTime       time.Time
	Now             time.Time
	MQTTConnected   bool
	Config          Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Door:      detect.StatusUncalibrated,
			Threshold: detect.DefaultThreshold,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateDetection sets the door status from a live classification.
// Called from the live stream on every frame.
func (t *Tracker) UpdateDetection(door detect.Status, changePct, threshold float64, counts detect.Counts) {
	t.mu.Lock()
	t.snap.Door = door
	t.snap.ChangePct = changePct
	t.snap.Threshold = threshold
	t.snap.Counts = counts
	t.snap.FramesProcessed++
	t.mu.Unlock()
}

// SetLiveActive sets whether a live session is running. Starting a session
// resets the detection fields alongside the fresh detector; stopping leaves
// the last known state visible.
func (t *Tracker) SetLiveActive(active bool) {
	t.mu.Lock()
	t.snap.LiveActive = active
	if active {
		t.snap.Door = detect.StatusUncalibrated
		t.snap.ChangePct = 0
		t.snap.Threshold = detect.DefaultThreshold
		t.snap.Counts = detect.Counts{}
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
