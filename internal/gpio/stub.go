//go:build !linux

package gpio

import "errors"

// RealController is not available on non-Linux platforms.
type RealController struct{ FakeController }

// NewRealController returns an error on non-Linux platforms.
func NewRealController(chipName string, pins ...Pin) (*RealController, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// RealLED is not available on non-Linux platforms.
type RealLED struct{ FakeLED }

// NewRealLED returns an error on non-Linux platforms.
func NewRealLED(chipName string, pin Pin) (*RealLED, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}
