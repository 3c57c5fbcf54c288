// Package pm is the application-domain sleep-mode manager and the
// low-power transition callback registered with it.
package pm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/logic"
)

// Callback is invoked immediately before and after every deep-sleep cycle.
type Callback interface {
	Transition(ctx context.Context, mode logic.Mode) error
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(ctx context.Context, mode logic.Mode) error

// Transition implements Callback.
func (f CallbackFunc) Transition(ctx context.Context, mode logic.Mode) error {
	return f(ctx, mode)
}

// Manager sequences deep-sleep cycles. The platform decides when to sleep
// (RequestSleep) and when to resume (Wake); registered callbacks have no
// say in either.
type Manager struct {
	clock clock.Clock
	sink  logic.EventSink
	log   zerolog.Logger

	mu        sync.Mutex
	callbacks []Callback
	started   bool
	cycles    int

	sleepReq chan struct{}
	wake     chan struct{}
}

// NewManager creates a Manager with no callbacks.
func NewManager(clk clock.Clock, sink logic.EventSink, log zerolog.Logger) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	if sink == nil {
		sink = logic.DiscardSink{}
	}
	return &Manager{
		clock:    clk,
		sink:     sink,
		log:      log,
		sleepReq: make(chan struct{}, 1),
		wake:     make(chan struct{}, 1),
	}
}

// Register adds cb. Callbacks must be registered before Run starts.
func (m *Manager) Register(cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("pm: register after start")
	}
	m.callbacks = append(m.callbacks, cb)
	return nil
}

// RequestSleep asks for a deep-sleep cycle. Repeated requests coalesce.
func (m *Manager) RequestSleep() {
	select {
	case m.sleepReq <- struct{}{}:
	default:
	}
}

// Wake resumes the core from deep sleep. It is called after each
// interrupt has been serviced. Repeated wakes coalesce.
func (m *Manager) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Cycles returns the number of completed deep-sleep cycles.
func (m *Manager) Cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

// Run performs one deep-sleep cycle per sleep request until ctx ends.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.sleepReq:
			if err := m.DeepSleep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				m.log.Error().Err(err).Msg("deep sleep callbacks failed")
			}
		}
	}
}

// DeepSleep runs the before-transition callbacks in registration order,
// blocks until Wake, then runs the after-transition callbacks in reverse
// order. Callback failures never skip the rest of the cycle; they are
// joined into the returned error.
func (m *Manager) DeepSleep(ctx context.Context) error {
	m.mu.Lock()
	cbs := append([]Callback(nil), m.callbacks...)
	m.mu.Unlock()

	// A wake left over from an interrupt taken while awake says nothing
	// about this cycle.
	select {
	case <-m.wake:
	default:
	}

	cycleID := uuid.NewString()
	log := m.log.With().Str("cycle", cycleID).Logger()
	ctx = withCycle(ctx, cycleID)

	var errs []error
	for _, cb := range cbs {
		if err := cb.Transition(ctx, logic.BeforeTransition); err != nil {
			errs = append(errs, fmt.Errorf("before transition: %w", err))
		}
	}

	m.sink.Emit(logic.Event{Timestamp: m.clock.Now(), Type: logic.EventSleepEnter, State: logic.StateIdle, CycleID: cycleID})
	log.Debug().Msg("entering deep sleep")

	select {
	case <-m.wake:
	case <-ctx.Done():
		return ctx.Err()
	}

	log.Debug().Msg("exited deep sleep")
	for i := len(cbs) - 1; i >= 0; i-- {
		if err := cbs[i].Transition(ctx, logic.AfterTransition); err != nil {
			errs = append(errs, fmt.Errorf("after transition: %w", err))
		}
	}

	m.mu.Lock()
	m.cycles++
	m.mu.Unlock()

	return errors.Join(errs...)
}

type cycleKey struct{}

func withCycle(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleKey{}, id)
}

// CycleID returns the ID of the deep-sleep cycle a callback is running in,
// or "" outside a cycle.
func CycleID(ctx context.Context) string {
	id, _ := ctx.Value(cycleKey{}).(string)
	return id
}
