// Package mqtt publishes power-state telemetry, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/sleepwake/internal/logic"
)

// Topic is the MQTT topic for state and sleep events.
const Topic = "power/sleepwake/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "power/sleepwake/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a power event. Failures must not stop the caller.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (startup, shutdown, offline).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // pre-formatted payload; returned as-is by FormatSystemPayload
	Retained   bool
}

// Payload is the MQTT message body for a power event.
type Payload struct {
	Power PowerPayload `json:"power"`
}

// PowerPayload contains the event details.
type PowerPayload struct {
	Timestamp  string `json:"timestamp"`
	Event      string `json:"event"`
	State      string `json:"state,omitempty"`
	WakeSource uint32 `json:"wake_source"`
	Reason     string `json:"reason,omitempty"`
	CycleID    string `json:"cycle_id,omitempty"`
}

// FormatPayload creates the JSON payload for a power event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := PowerPayload{
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
		Event:      string(event.Type),
		WakeSource: uint32(event.Wake),
		Reason:     event.Reason,
		CycleID:    event.CycleID,
	}
	if event.State != 0 {
		p.State = event.State.String()
	}
	return json.Marshal(Payload{Power: p})
}

// SystemPayload is the body of a system event without a status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
