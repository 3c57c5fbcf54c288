package pm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/logic"
)

// WakeSourceService is the wake-source service reached across the call
// boundary. *wakesrc.Client implements it.
type WakeSourceService interface {
	Clear(ctx context.Context) error
	Get(ctx context.Context) (logic.WakeSources, error)
}

// Notifier unblocks the task waiting for a wake. *rtos.Notification
// implements it.
type Notifier interface {
	Give()
}

// WakeCallbackConfig configures a WakeCallback.
type WakeCallbackConfig struct {
	Service   WakeSourceService
	Indicator gpio.LED
	Notify    Notifier
	Clock     clock.Clock
	Sink      logic.EventSink
	Logger    zerolog.Logger
}

// WakeCallback clears the wake source before every sleep and reads it
// after every wake, then notifies the application state machine.
type WakeCallback struct {
	svc       WakeSourceService
	indicator gpio.LED
	notify    Notifier
	clock     clock.Clock
	sink      logic.EventSink
	log       zerolog.Logger

	mu   sync.Mutex
	wake logic.WakeSources
}

// NewWakeCallback creates a WakeCallback.
func NewWakeCallback(cfg WakeCallbackConfig) (*WakeCallback, error) {
	if cfg.Service == nil {
		return nil, errors.New("wake callback: nil service")
	}
	if cfg.Indicator == nil {
		return nil, errors.New("wake callback: nil indicator")
	}
	if cfg.Notify == nil {
		return nil, errors.New("wake callback: nil notifier")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Sink == nil {
		cfg.Sink = logic.DiscardSink{}
	}
	return &WakeCallback{
		svc:       cfg.Service,
		indicator: cfg.Indicator,
		notify:    cfg.Notify,
		clock:     cfg.Clock,
		sink:      cfg.Sink,
		log:       cfg.Logger,
	}, nil
}

// Transition implements Callback.
func (c *WakeCallback) Transition(ctx context.Context, mode logic.Mode) error {
	switch mode {
	case logic.BeforeTransition:
		return c.beforeSleep(ctx)
	case logic.AfterTransition:
		return c.afterWake(ctx)
	}
	return nil
}

// WakeSources returns the bitfield read after the most recent wake.
func (c *WakeCallback) WakeSources() logic.WakeSources {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wake
}

func (c *WakeCallback) beforeSleep(ctx context.Context) error {
	var errs []error
	if err := c.svc.Clear(ctx); err != nil {
		c.boundaryError(ctx, err)
		errs = append(errs, err)
	}
	if err := c.indicator.Set(true); err != nil {
		errs = append(errs, fmt.Errorf("sleep indicator on: %w", err))
	}
	return errors.Join(errs...)
}

func (c *WakeCallback) afterWake(ctx context.Context) error {
	var errs []error
	if err := c.indicator.Set(false); err != nil {
		errs = append(errs, fmt.Errorf("sleep indicator off: %w", err))
	}

	wake, err := c.svc.Get(ctx)
	if err != nil {
		// The machine still has to leave Idle; it will report an
		// unknown interrupt.
		c.boundaryError(ctx, err)
		errs = append(errs, err)
		wake = 0
	}

	c.mu.Lock()
	c.wake = wake
	c.mu.Unlock()

	c.sink.Emit(logic.Event{
		Timestamp: c.clock.Now(),
		Type:      logic.EventSleepExit,
		State:     logic.StateIdle,
		Wake:      wake,
		Reason:    wake.Reason(),
		CycleID:   CycleID(ctx),
	})
	c.notify.Give()

	return errors.Join(errs...)
}

func (c *WakeCallback) boundaryError(ctx context.Context, err error) {
	c.log.Error().Err(err).Str("cycle", CycleID(ctx)).Msg("wake source call failed")
	c.sink.Emit(logic.Event{
		Timestamp: c.clock.Now(),
		Type:      logic.EventBoundaryError,
		Reason:    err.Error(),
		CycleID:   CycleID(ctx),
	})
}
