//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RealController latches falling edges on the Linux GPIO character device
// and presents them as a shared interrupt line.
type RealController struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line

	mu       sync.Mutex
	pending  map[Pin]bool
	priority int
	secure   bool
	irq      chan struct{}
}

// NewRealController requests pins as pulled-up inputs with falling-edge
// detection on the named chip.
func NewRealController(chipName string, pins ...Pin) (*RealController, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	c := &RealController{
		chip:    chip,
		pending: make(map[Pin]bool),
		irq:     make(chan struct{}, 1),
	}

	for _, pin := range pins {
		line, err := chip.RequestLine(int(pin),
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithEventHandler(c.handleEvent))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		c.lines = append(c.lines, line)
	}

	return c, nil
}

func (c *RealController) handleEvent(evt gpiocdev.LineEvent) {
	c.mu.Lock()
	c.pending[Pin(evt.Offset)] = true
	c.mu.Unlock()

	select {
	case c.irq <- struct{}{}:
	default:
	}
}

// Pending implements Controller.
func (c *RealController) Pending(pin Pin) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[pin]
}

// ClearInterrupt implements Controller.
func (c *RealController) ClearInterrupt(pin Pin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, pin)
}

// ClearPendingIRQ implements Controller.
func (c *RealController) ClearPendingIRQ() {
	select {
	case <-c.irq:
	default:
	}
}

// SetPriority records the priority. The character device has no
// per-line priority, so the value is informational.
func (c *RealController) SetPriority(priority int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.priority = priority
}

// TargetSecure records the routing request. Edge events are consumed only
// by the partition goroutine, which is the trusted side on a hosted build.
func (c *RealController) TargetSecure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secure = true
}

// IRQ implements Controller.
func (c *RealController) IRQ() <-chan struct{} {
	return c.irq
}

// Close releases the requested lines and the chip.
func (c *RealController) Close() error {
	var errs []error
	for _, line := range c.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", line.Offset(), err))
		}
	}
	c.lines = nil
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		c.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealLED drives an output line.
type RealLED struct {
	line *gpiocdev.Line

	mu sync.Mutex
	on bool
}

// NewRealLED requests pin on the named chip as an output driven low.
func NewRealLED(chipName string, pin Pin) (*RealLED, error) {
	line, err := gpiocdev.RequestLine(chipName, int(pin), gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}
	return &RealLED{line: line}, nil
}

// Set implements LED.
func (l *RealLED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setLocked(on)
}

// Toggle implements LED.
func (l *RealLED) Toggle() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setLocked(!l.on)
}

func (l *RealLED) setLocked(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED pin %d: %w", l.line.Offset(), err)
	}
	l.on = on
	return nil
}

// Close drives the LED low and releases the line.
func (l *RealLED) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	if err := l.setLocked(false); err != nil {
		errs = append(errs, err)
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close LED line: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
