package logic

// WakeSources is the bitfield of wake reasons kept by the trusted domain.
type WakeSources uint32

// WakeUserButton1 is set when the user button woke the device.
const WakeUserButton1 WakeSources = 0x01

// Has reports whether every bit in bits is set.
func (w WakeSources) Has(bits WakeSources) bool {
	return bits != 0 && w&bits == bits
}

// Reason returns the reason logged on an Idle->Active transition.
func (w WakeSources) Reason() string {
	if w.Has(WakeUserButton1) {
		return ReasonButton
	}
	return ReasonUnknown
}

const (
	ReasonButton  = "button interrupt"
	ReasonUnknown = "unknown interrupt"
)

// Record counts e into c.
func (c *EventCounts) Record(e Event) {
	switch e.Type {
	case EventStateActive:
		c.Active++
	case EventStateIdle:
		c.Idle++
	case EventSleepExit:
		c.SleepCycles++
		if e.Wake.Has(WakeUserButton1) {
			c.ButtonWakes++
		} else {
			c.UnknownWakes++
		}
	case EventBoundaryError:
		c.BoundaryErrors++
	}
}
