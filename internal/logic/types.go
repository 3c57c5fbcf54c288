// Package logic contains the pure power-state vocabulary shared by both domains.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// AppState is the application state owned by the state machine task.
type AppState uint8

const (
	StateActive AppState = iota + 1
	StateIdle
)

func (s AppState) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateIdle:
		return "IDLE"
	}
	return "UNKNOWN"
}

// Mode tags each invocation of a low-power transition callback.
type Mode uint8

const (
	BeforeTransition Mode = iota + 1
	AfterTransition
)

func (m Mode) String() string {
	switch m {
	case BeforeTransition:
		return "BEFORE_TRANSITION"
	case AfterTransition:
		return "AFTER_TRANSITION"
	}
	return "UNKNOWN"
}

// EventType names a telemetry event.
type EventType string

const (
	EventStateActive   EventType = "STATE_ACTIVE"
	EventStateIdle     EventType = "STATE_IDLE"
	EventSleepEnter    EventType = "SLEEP_ENTER"
	EventSleepExit     EventType = "SLEEP_EXIT"
	EventBoundaryError EventType = "BOUNDARY_ERROR"
)

// Event is a single observation to be published and counted.
type Event struct {
	Timestamp time.Time
	Type      EventType
	State     AppState
	// Wake is set on SLEEP_EXIT and on Idle->Active transitions.
	Wake WakeSources
	// Reason is the human-readable wake reason or error text.
	Reason string
	// CycleID correlates SLEEP_ENTER with its SLEEP_EXIT.
	CycleID string
}

// EventSink receives events from the state machine and the power manager.
// Implementations must be safe for concurrent use.
type EventSink interface {
	Emit(Event)
}

// DiscardSink drops every event.
type DiscardSink struct{}

// Emit implements EventSink.
func (DiscardSink) Emit(Event) {}

// EventCounts tracks the number of each observation since startup.
type EventCounts struct {
	Active         int
	Idle           int
	SleepCycles    int
	ButtonWakes    int
	UnknownWakes   int
	BoundaryErrors int
}
