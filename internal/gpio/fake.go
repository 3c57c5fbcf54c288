package gpio

import "sync"

// FakeController is a test double for a shared interrupt line.
// Edges are injected with Edge. Safe for concurrent use.
type FakeController struct {
	mu       sync.Mutex
	pending  map[Pin]bool
	irq      chan struct{}
	priority int
	secure   bool
	clears   map[Pin]int
	closed   bool
}

// NewFakeController creates a FakeController with nothing pending.
func NewFakeController() *FakeController {
	return &FakeController{
		pending: make(map[Pin]bool),
		irq:     make(chan struct{}, 1),
		clears:  make(map[Pin]int),
	}
}

// Edge simulates a falling edge on pin: the pin's flag latches and the
// shared line becomes pending.
func (f *FakeController) Edge(pin Pin) {
	f.mu.Lock()
	f.pending[pin] = true
	f.mu.Unlock()

	select {
	case f.irq <- struct{}{}:
	default:
	}
}

// Latch sets pin's flag without asserting the line, as board bring-up
// can leave it.
func (f *FakeController) Latch(pin Pin) {
	f.mu.Lock()
	f.pending[pin] = true
	f.mu.Unlock()
}

// Pending implements Controller.
func (f *FakeController) Pending(pin Pin) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[pin]
}

// ClearInterrupt implements Controller.
func (f *FakeController) ClearInterrupt(pin Pin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[pin] = false
	f.clears[pin]++
}

// ClearPendingIRQ implements Controller.
func (f *FakeController) ClearPendingIRQ() {
	select {
	case <-f.irq:
	default:
	}
}

// LinePending reports whether the shared line is asserted.
func (f *FakeController) LinePending() bool {
	return len(f.irq) > 0
}

// SetPriority implements Controller.
func (f *FakeController) SetPriority(priority int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priority = priority
}

// Priority returns the last priority set.
func (f *FakeController) Priority() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.priority
}

// TargetSecure implements Controller.
func (f *FakeController) TargetSecure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secure = true
}

// Secure reports whether TargetSecure was called.
func (f *FakeController) Secure() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secure
}

// Clears returns how many times pin's flag was cleared.
func (f *FakeController) Clears(pin Pin) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears[pin]
}

// IRQ implements Controller.
func (f *FakeController) IRQ() <-chan struct{} {
	return f.irq
}

// Close marks the controller as closed.
func (f *FakeController) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeController) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeLED records output changes. Safe for concurrent use.
type FakeLED struct {
	mu      sync.Mutex
	on      bool
	toggles int
	history []bool
	// SetError, if set, is returned by Set and Toggle.
	SetError error
}

// NewFakeLED creates a FakeLED that starts off.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// Set implements LED.
func (l *FakeLED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SetError != nil {
		return l.SetError
	}
	l.on = on
	l.history = append(l.history, on)
	return nil
}

// Toggle implements LED.
func (l *FakeLED) Toggle() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SetError != nil {
		return l.SetError
	}
	l.on = !l.on
	l.toggles++
	l.history = append(l.history, l.on)
	return nil
}

// On reports the current output.
func (l *FakeLED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Toggles returns the number of Toggle calls.
func (l *FakeLED) Toggles() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.toggles
}

// History returns every value the LED has been driven to.
func (l *FakeLED) History() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.history...)
}

// Close is a no-op.
func (l *FakeLED) Close() error { return nil }
