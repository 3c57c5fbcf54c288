// Package status keeps a thread-safe view of the daemon for the web page and
// MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	ActiveDurationMs int64
	HeartbeatMs      int64
	DebounceMs       int64
	IRQPriority      int
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
type Snapshot struct {
	State         logic.AppState
	LastWake      logic.WakeSources
	LastReason    string
	LastCycleID   string
	LastError     string
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. It is a
// logic.EventSink: every emitted event updates the snapshot.
type Tracker struct {
	clk clock.Clock

	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker started at clk.Now().
func NewTracker(clk clock.Clock, cfg Config) *Tracker {
	return &Tracker{
		clk: clk,
		snap: Snapshot{
			StartTime: clk.Now(),
			Config:    cfg,
		},
	}
}

// Emit records e.
func (t *Tracker) Emit(e logic.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Counts.Record(e)
	switch e.Type {
	case logic.EventStateActive, logic.EventStateIdle:
		t.snap.State = e.State
	case logic.EventSleepEnter:
		t.snap.LastCycleID = e.CycleID
	case logic.EventSleepExit:
		t.snap.LastWake = e.Wake
		t.snap.LastReason = e.Reason
	case logic.EventBoundaryError:
		t.snap.LastError = e.Reason
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a copy of the daemon state with Now set to the current time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.clk.Now()
	return s
}
