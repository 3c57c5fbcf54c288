package gpio

import "fmt"

// SharedLine binds the wake pin and the co-located pin that raises the
// same interrupt line. Its methods always clear both pins' flags together,
// so a press on either button can never leave a stale flag that would
// re-assert the line.
type SharedLine struct {
	ctrl      Controller
	primary   Pin
	secondary Pin
}

// NewSharedLine returns a SharedLine for primary and secondary on ctrl.
func NewSharedLine(ctrl Controller, primary, secondary Pin) (*SharedLine, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("shared line: nil controller")
	}
	if primary == secondary {
		return nil, fmt.Errorf("shared line: primary and secondary are both pin %d", primary)
	}
	return &SharedLine{ctrl: ctrl, primary: primary, secondary: secondary}, nil
}

// Primary returns the wake pin.
func (s *SharedLine) Primary() Pin { return s.primary }

// Secondary returns the co-located pin.
func (s *SharedLine) Secondary() Pin { return s.secondary }

// IRQ delivers shared-line assertions.
func (s *SharedLine) IRQ() <-chan struct{} { return s.ctrl.IRQ() }

// Configure routes the line to the trusted domain and sets its priority.
func (s *SharedLine) Configure(priority int) {
	s.ctrl.TargetSecure()
	s.ctrl.SetPriority(priority)
}

// Acknowledge reports which pins had latched flags, then clears both
// flags and the line's pending status.
func (s *SharedLine) Acknowledge() (primary, secondary bool) {
	primary = s.ctrl.Pending(s.primary)
	secondary = s.ctrl.Pending(s.secondary)

	s.ctrl.ClearInterrupt(s.secondary)
	s.ctrl.ClearInterrupt(s.primary)
	s.ctrl.ClearPendingIRQ()
	return primary, secondary
}
