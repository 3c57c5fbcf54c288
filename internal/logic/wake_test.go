package logic

import (
	"testing"
	"time"
)

func TestWakeSourcesReason(t *testing.T) {
	tests := []struct {
		name string
		w    WakeSources
		want string
	}{
		{"zero", 0, ReasonUnknown},
		{"button", WakeUserButton1, ReasonButton},
		{"button plus unrelated", WakeUserButton1 | 0x80, ReasonButton},
		{"unrelated only", 0x02, ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Reason(); got != tt.want {
				t.Errorf("Reason(%#x) = %q, want %q", uint32(tt.w), got, tt.want)
			}
		})
	}
}

func TestWakeSourcesHasZero(t *testing.T) {
	if WakeSources(0xff).Has(0) {
		t.Error("Has(0) should be false")
	}
}

func TestAppStateString(t *testing.T) {
	if StateActive.String() != "ACTIVE" {
		t.Errorf("got %s", StateActive)
	}
	if StateIdle.String() != "IDLE" {
		t.Errorf("got %s", StateIdle)
	}
	if AppState(0).String() != "UNKNOWN" {
		t.Errorf("got %s", AppState(0))
	}
}

func TestModeString(t *testing.T) {
	if BeforeTransition.String() != "BEFORE_TRANSITION" {
		t.Errorf("got %s", BeforeTransition)
	}
	if AfterTransition.String() != "AFTER_TRANSITION" {
		t.Errorf("got %s", AfterTransition)
	}
}

func TestEventCountsRecord(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: now, Type: EventStateActive},
		{Timestamp: now, Type: EventStateIdle},
		{Timestamp: now, Type: EventSleepEnter},
		{Timestamp: now, Type: EventSleepExit, Wake: WakeUserButton1},
		{Timestamp: now, Type: EventSleepExit},
		{Timestamp: now, Type: EventBoundaryError},
		{Timestamp: now, Type: EventStateActive},
	}

	var c EventCounts
	for _, e := range events {
		c.Record(e)
	}

	want := EventCounts{Active: 2, Idle: 1, SleepCycles: 2, ButtonWakes: 1, UnknownWakes: 1, BoundaryErrors: 1}
	if c != want {
		t.Errorf("counts = %+v, want %+v", c, want)
	}
}
