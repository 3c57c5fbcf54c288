package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/sleepwake/internal/logic"
)

var ts = time.Date(2026, 3, 4, 9, 15, 0, 0, time.UTC)

func TestFormatPayloadSleepExit(t *testing.T) {
	event := logic.Event{
		Timestamp: ts,
		Type:      logic.EventSleepExit,
		Wake:      logic.WakeUserButton1,
		Reason:    logic.ReasonButton,
		CycleID:   "c-1",
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"power":{"timestamp":"2026-03-04T09:15:00Z","event":"SLEEP_EXIT","wake_source":1,"reason":"button interrupt","cycle_id":"c-1"}}`
	if string(payload) != want {
		t.Errorf("payload:\ngot:  %s\nwant: %s", payload, want)
	}
}

func TestFormatPayloadStates(t *testing.T) {
	tests := []struct {
		event     logic.Event
		wantEvent string
		wantState string
	}{
		{logic.Event{Type: logic.EventStateActive, State: logic.StateActive}, "STATE_ACTIVE", "ACTIVE"},
		{logic.Event{Type: logic.EventStateIdle, State: logic.StateIdle}, "STATE_IDLE", "IDLE"},
		{logic.Event{Type: logic.EventSleepEnter}, "SLEEP_ENTER", ""},
		{logic.Event{Type: logic.EventBoundaryError, Reason: "psa: generic error"}, "BOUNDARY_ERROR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.wantEvent, func(t *testing.T) {
			tt.event.Timestamp = ts
			payload, err := FormatPayload(tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Power.Event != tt.wantEvent {
				t.Errorf("event: got %s, want %s", parsed.Power.Event, tt.wantEvent)
			}
			if parsed.Power.State != tt.wantState {
				t.Errorf("state: got %q, want %q", parsed.Power.State, tt.wantState)
			}
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 3, 4, 11, 15, 0, 0, loc),
		Type:      logic.EventSleepEnter,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Power.Timestamp != "2026-03-04T09:15:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Power.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			"startup",
			SystemEvent{Timestamp: ts, Event: "STARTUP"},
			`{"system":{"timestamp":"2026-03-04T09:15:00Z","event":"STARTUP"}}`,
		},
		{
			"shutdown",
			SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGTERM"},
			`{"system":{"timestamp":"2026-03-04T09:15:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			"offline will",
			SystemEvent{Timestamp: ts, Event: "OFFLINE"},
			`{"system":{"timestamp":"2026-03-04T09:15:00Z","event":"OFFLINE"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := FormatSystemPayload(tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(payload) != tt.want {
				t.Errorf("payload:\ngot:  %s\nwant: %s", payload, tt.want)
			}
		})
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":"ok"}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	events := []logic.Event{
		{Timestamp: ts, Type: logic.EventSleepEnter, CycleID: "a"},
		{Timestamp: ts, Type: logic.EventSleepExit, CycleID: "a", Wake: logic.WakeUserButton1},
		{Timestamp: ts, Type: logic.EventStateActive, State: logic.StateActive},
	}
	for _, e := range events {
		if err := f.Publish(e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got := f.Events()
	if len(got) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(got))
	}
	for i := range events {
		if got[i] != events[i] {
			t.Errorf("event %d: got %+v, want %+v", i, got[i], events[i])
		}
	}
	if len(f.Payloads()) != len(events) {
		t.Errorf("expected %d payloads, got %d", len(events), len(f.Payloads()))
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	if err := f.Publish(logic.Event{Type: logic.EventSleepEnter}); err == nil {
		t.Error("expected Publish error")
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected PublishSystem error")
	}
	if len(f.Events()) != 0 || len(f.SystemEvents()) != 0 {
		t.Error("failed publishes must not be recorded")
	}
}

func TestFakePublisherSystemEvents(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGINT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.SystemEvents()
	if len(got) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(got))
	}
	if !got[0].Retained || got[1].Retained {
		t.Error("retained flag not preserved")
	}
	if got[1].Reason != "SIGINT" {
		t.Errorf("reason: got %s", got[1].Reason)
	}
	if len(f.SystemPayloads()) != 2 {
		t.Errorf("expected 2 system payloads, got %d", len(f.SystemPayloads()))
	}
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	f.PublishError = errors.New("x")
	_ = f.PublishSystem(SystemEvent{Event: "STARTUP"})
	_ = f.Close()

	if !f.Closed() || !f.IsConnected() {
		t.Fatal("expected closed and connected before reset")
	}

	f.Reset()
	if f.Closed() || f.IsConnected() {
		t.Error("reset should clear closed and connected")
	}
	if len(f.SystemEvents()) != 0 {
		t.Error("reset should clear system events")
	}
	if err := f.Publish(logic.Event{Type: logic.EventSleepEnter}); err != nil {
		t.Errorf("publisher should be reusable after reset: %v", err)
	}
}

func TestNewRealPublisherRequiresBroker(t *testing.T) {
	if _, err := NewRealPublisher(Config{}); err == nil {
		t.Error("expected error for empty broker")
	}
}

func TestTopics(t *testing.T) {
	if Topic != "power/sleepwake/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "power/sleepwake/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}
