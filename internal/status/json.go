package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	LastWake      WakeJSON   `json:"last_wake"`
	LastError     string     `json:"last_error,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// WakeJSON describes the most recent wake.
type WakeJSON struct {
	Source  uint32 `json:"source"`
	Reason  string `json:"reason,omitempty"`
	CycleID string `json:"cycle_id,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Active         int `json:"active"`
	Idle           int `json:"idle"`
	SleepCycles    int `json:"sleep_cycles"`
	ButtonWakes    int `json:"button_wakes"`
	UnknownWakes   int `json:"unknown_wakes"`
	BoundaryErrors int `json:"boundary_errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ActiveDurationMs int64  `json:"active_duration_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	IRQPriority      int    `json:"irq_priority"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State: snap.State.String(),
		LastWake: WakeJSON{
			Source:  uint32(snap.LastWake),
			Reason:  snap.LastReason,
			CycleID: snap.LastCycleID,
		},
		LastError:     snap.LastError,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Active:         snap.Counts.Active,
			Idle:           snap.Counts.Idle,
			SleepCycles:    snap.Counts.SleepCycles,
			ButtonWakes:    snap.Counts.ButtonWakes,
			UnknownWakes:   snap.Counts.UnknownWakes,
			BoundaryErrors: snap.Counts.BoundaryErrors,
		},
		Config: ConfigJSON(snap.Config),
	}
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
