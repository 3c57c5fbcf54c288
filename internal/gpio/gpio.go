// Package gpio provides the wake-pin interrupt and LED hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Pin is a line offset on the GPIO chip.
type Pin int

// Pin defaults (BCM numbering). The two buttons share one interrupt line.
const (
	DefaultPinBtn1 = 17 // wake button
	DefaultPinBtn2 = 27 // co-located button on the same line
	DefaultPinLED1 = 22 // heartbeat
	DefaultPinLED2 = 23 // deep-sleep indicator
)

// Controller is the interrupt-side view of a group of input pins that
// share one interrupt line.
type Controller interface {
	// Pending reports whether the interrupt flag for pin is latched.
	Pending(pin Pin) bool

	// ClearInterrupt clears the latched interrupt flag for pin.
	ClearInterrupt(pin Pin)

	// ClearPendingIRQ clears the pending status of the shared line.
	ClearPendingIRQ()

	// SetPriority sets the priority of the shared line.
	SetPriority(priority int)

	// TargetSecure routes the shared line to the trusted domain.
	TargetSecure()

	// IRQ delivers a value whenever the shared line becomes pending.
	// At most one assertion is outstanding at a time.
	IRQ() <-chan struct{}

	// Close releases GPIO resources.
	Close() error
}

// LED drives an indicator output.
type LED interface {
	Set(on bool) error
	Toggle() error
	Close() error
}
