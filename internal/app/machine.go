// Package app contains the application tasks: the state machine that
// alternates between Active and Idle, and the heartbeat it suspends.
package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/logic"
)

// DefaultActiveDuration is how long the machine stays Active.
const DefaultActiveDuration = 20 * time.Second

// ReasonActiveTimeout is logged on the Active->Idle transition.
const ReasonActiveTimeout = "active state timeout"

// Suspender controls the heartbeat task. *rtos.Task implements it.
type Suspender interface {
	Suspend()
	Resume()
}

// Waiter blocks until the wake notification is given. *rtos.Notification
// implements it.
type Waiter interface {
	Take(ctx context.Context) error
}

// WakeReader returns the wake sources read after the last wake.
// *pm.WakeCallback implements it.
type WakeReader interface {
	WakeSources() logic.WakeSources
}

// Config configures a Machine.
type Config struct {
	Clock          clock.Clock
	ActiveDuration time.Duration
	Heartbeat      Suspender
	HeartbeatLED   gpio.LED
	Notify         Waiter
	Wake           WakeReader
	Sink           logic.EventSink
	Logger         zerolog.Logger
}

// Machine is the application state machine. Only Run changes its state.
type Machine struct {
	clock  clock.Clock
	active time.Duration
	hb     Suspender
	led    gpio.LED
	notify Waiter
	wake   WakeReader
	sink   logic.EventSink
	log    zerolog.Logger

	state atomic.Uint32
}

// NewMachine creates a Machine in the Active state.
func NewMachine(cfg Config) (*Machine, error) {
	switch {
	case cfg.ActiveDuration <= 0:
		return nil, errors.New("machine: active duration must be positive")
	case cfg.Heartbeat == nil:
		return nil, errors.New("machine: nil heartbeat")
	case cfg.HeartbeatLED == nil:
		return nil, errors.New("machine: nil heartbeat LED")
	case cfg.Notify == nil:
		return nil, errors.New("machine: nil notification")
	case cfg.Wake == nil:
		return nil, errors.New("machine: nil wake reader")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Sink == nil {
		cfg.Sink = logic.DiscardSink{}
	}

	m := &Machine{
		clock:  cfg.Clock,
		active: cfg.ActiveDuration,
		hb:     cfg.Heartbeat,
		led:    cfg.HeartbeatLED,
		notify: cfg.Notify,
		wake:   cfg.Wake,
		sink:   cfg.Sink,
		log:    cfg.Logger,
	}
	m.state.Store(uint32(logic.StateActive))
	return m, nil
}

// State returns the current state. Safe to call from any goroutine.
func (m *Machine) State() logic.AppState {
	return logic.AppState(m.state.Load())
}

// Run drives the machine until ctx ends.
func (m *Machine) Run(ctx context.Context) error {
	m.log.Info().Msg("app state manager running")

	next := logic.StateActive
	suspended := false
	var wake logic.WakeSources
	resumed := false

	for {
		switch next {
		case logic.StateActive:
			if suspended {
				m.hb.Resume()
				suspended = false
			}
			m.enter(logic.StateActive, wake, resumed)

			if !m.waitActive(ctx) {
				return nil
			}
			m.log.Info().
				Stringer("from", logic.StateActive).
				Stringer("to", logic.StateIdle).
				Str("reason", ReasonActiveTimeout).
				Msg("app state switch")
			next = logic.StateIdle

		default:
			m.hb.Suspend()
			suspended = true
			m.enter(logic.StateIdle, 0, false)
			if err := m.led.Set(false); err != nil {
				m.log.Warn().Err(err).Msg("heartbeat LED off")
			}

			if err := m.notify.Take(ctx); err != nil {
				return nil
			}

			wake = m.wake.WakeSources()
			resumed = true
			m.log.Info().
				Stringer("from", logic.StateIdle).
				Stringer("to", logic.StateActive).
				Str("reason", wake.Reason()).
				Msg("app state switch")
			next = logic.StateActive
		}
	}
}

// waitActive blocks until the Active deadline. It reports false if ctx
// ended first.
func (m *Machine) waitActive(ctx context.Context) bool {
	deadline := m.clock.Now().Add(m.active)
	timer := m.clock.NewTimer(deadline.Sub(m.clock.Now()))
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *Machine) enter(s logic.AppState, wake logic.WakeSources, resumed bool) {
	m.state.Store(uint32(s))
	m.log.Info().Stringer("state", s).Msg("current app state")

	e := logic.Event{
		Timestamp: m.clock.Now(),
		Type:      logic.EventStateActive,
		State:     s,
	}
	switch {
	case s == logic.StateIdle:
		e.Type = logic.EventStateIdle
		e.Reason = ReasonActiveTimeout
	case resumed:
		e.Wake = wake
		e.Reason = wake.Reason()
	}
	m.sink.Emit(e)
}
