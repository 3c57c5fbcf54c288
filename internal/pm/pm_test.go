package pm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/logic"
	"github.com/sweeney/sleepwake/internal/rtos"
)

// recordingSink collects emitted events.
type recordingSink struct {
	mu     sync.Mutex
	events []logic.Event
}

func (s *recordingSink) Emit(e logic.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []logic.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []logic.EventType
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeService records calls in order and serves a scripted register.
type fakeService struct {
	mu       sync.Mutex
	calls    []string
	reg      logic.WakeSources
	clearErr error
	getErr   error
}

func (f *fakeService) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "clear")
	if f.clearErr != nil {
		return f.clearErr
	}
	f.reg = 0
	return nil
}

func (f *fakeService) Get(context.Context) (logic.WakeSources, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "get")
	return f.reg, f.getErr
}

func (f *fakeService) press() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg |= logic.WakeUserButton1
}

func (f *fakeService) history() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newCallback(t *testing.T, svc WakeSourceService, sink logic.EventSink) (*WakeCallback, *gpio.FakeLED, *rtos.Notification) {
	t.Helper()
	led := gpio.NewFakeLED()
	n := rtos.NewNotification()
	cb, err := NewWakeCallback(WakeCallbackConfig{
		Service:   svc,
		Indicator: led,
		Notify:    n,
		Sink:      sink,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return cb, led, n
}

func TestNewWakeCallbackValidates(t *testing.T) {
	_, err := NewWakeCallback(WakeCallbackConfig{})
	assert.Error(t, err)
	_, err = NewWakeCallback(WakeCallbackConfig{Service: &fakeService{}})
	assert.Error(t, err)
	_, err = NewWakeCallback(WakeCallbackConfig{Service: &fakeService{}, Indicator: gpio.NewFakeLED()})
	assert.Error(t, err)
}

func TestBeforeTransitionClearsThenIndicates(t *testing.T) {
	svc := &fakeService{reg: logic.WakeUserButton1}
	cb, led, n := newCallback(t, svc, nil)

	require.NoError(t, cb.Transition(context.Background(), logic.BeforeTransition))

	assert.Equal(t, []string{"clear"}, svc.history())
	assert.True(t, led.On(), "sleep indicator should be on")
	assert.False(t, n.Pending(), "entering sleep must not notify")
}

func TestAfterTransitionReadsAndNotifies(t *testing.T) {
	svc := &fakeService{}
	sink := &recordingSink{}
	cb, led, n := newCallback(t, svc, sink)
	ctx := withCycle(context.Background(), "cycle-1")

	require.NoError(t, cb.Transition(ctx, logic.BeforeTransition))
	svc.press()
	require.NoError(t, cb.Transition(ctx, logic.AfterTransition))

	assert.Equal(t, []string{"clear", "get"}, svc.history())
	assert.False(t, led.On(), "sleep indicator should be off after wake")
	assert.Equal(t, logic.WakeUserButton1, cb.WakeSources())
	assert.True(t, n.Pending())

	require.Len(t, sink.events, 1)
	exit := sink.events[0]
	assert.Equal(t, logic.EventSleepExit, exit.Type)
	assert.Equal(t, logic.ReasonButton, exit.Reason)
	assert.Equal(t, "cycle-1", exit.CycleID)
}

func TestAfterTransitionGetFailure(t *testing.T) {
	svc := &fakeService{reg: logic.WakeUserButton1, getErr: errors.New("boundary down")}
	sink := &recordingSink{}
	cb, _, n := newCallback(t, svc, sink)

	err := cb.Transition(context.Background(), logic.AfterTransition)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boundary down")

	assert.Equal(t, logic.WakeSources(0), cb.WakeSources())
	assert.True(t, n.Pending(), "machine must still be released")
	assert.Equal(t, []logic.EventType{logic.EventBoundaryError, logic.EventSleepExit}, sink.types())
}

func TestBeforeTransitionClearFailureStillIndicates(t *testing.T) {
	svc := &fakeService{clearErr: errors.New("refused")}
	cb, led, _ := newCallback(t, svc, nil)

	err := cb.Transition(context.Background(), logic.BeforeTransition)
	assert.Error(t, err)
	assert.True(t, led.On())
}

func TestIndicatorFailureReported(t *testing.T) {
	svc := &fakeService{}
	cb, led, _ := newCallback(t, svc, nil)
	led.SetError = errors.New("line busy")

	err := cb.Transition(context.Background(), logic.BeforeTransition)
	assert.ErrorContains(t, err, "sleep indicator on")
	assert.Equal(t, []string{"clear"}, svc.history())
}

func TestUnknownModeIgnored(t *testing.T) {
	svc := &fakeService{}
	cb, _, _ := newCallback(t, svc, nil)
	assert.NoError(t, cb.Transition(context.Background(), logic.Mode(9)))
	assert.Empty(t, svc.history())
}

func TestDeepSleepSequencing(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(nil, sink, zerolog.Nop())

	var mu sync.Mutex
	var order []string
	record := func(name string) Callback {
		return CallbackFunc(func(ctx context.Context, mode logic.Mode) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name+":"+mode.String())
			assert.NotEmpty(t, CycleID(ctx))
			return nil
		})
	}
	require.NoError(t, m.Register(record("a")))
	require.NoError(t, m.Register(record("b")))

	// A wake taken while awake must not end the next cycle early.
	m.Wake()

	done := make(chan error, 1)
	go func() { done <- m.DeepSleep(context.Background()) }()

	select {
	case <-done:
		t.Fatal("deep sleep returned without a wake")
	case <-time.After(30 * time.Millisecond):
	}

	m.Wake()
	require.NoError(t, <-done)

	assert.Equal(t, []string{
		"a:BEFORE_TRANSITION",
		"b:BEFORE_TRANSITION",
		"b:AFTER_TRANSITION",
		"a:AFTER_TRANSITION",
	}, order)
	assert.Equal(t, 1, m.Cycles())
	assert.Equal(t, []logic.EventType{logic.EventSleepEnter}, sink.types())
}

func TestDeepSleepJoinsErrors(t *testing.T) {
	m := NewManager(nil, nil, zerolog.Nop())
	calls := 0
	require.NoError(t, m.Register(CallbackFunc(func(_ context.Context, mode logic.Mode) error {
		calls++
		if mode == logic.BeforeTransition {
			m.Wake()
		}
		return errors.New("nope")
	})))

	err := m.DeepSleep(context.Background())
	assert.ErrorContains(t, err, "before transition")
	assert.ErrorContains(t, err, "after transition")
	assert.Equal(t, 2, calls)
}

func TestRegisterAfterStart(t *testing.T) {
	m := NewManager(nil, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Run(ctx))
	assert.Error(t, m.Register(CallbackFunc(func(context.Context, logic.Mode) error { return nil })))
}

func TestCycleIDOutsideCycle(t *testing.T) {
	assert.Equal(t, "", CycleID(context.Background()))
}
