// Package secure implements the trusted-domain power manager partition:
// the wake-source register, the service that exposes it across the call
// boundary, and the debounced interrupt handler that sets it.
//
// Everything in this package runs on the partition's single dispatch
// goroutine, which serializes interrupt handling and service calls.
package secure

import "github.com/sweeney/sleepwake/internal/logic"

// register holds the wake-source bitfield. It is set only by the
// first-level handler and zeroed only by the clear operation.
type register struct {
	bits logic.WakeSources
}

func (r *register) set(bits logic.WakeSources) { r.bits |= bits }
func (r *register) clear()                      { r.bits = 0 }
func (r *register) load() logic.WakeSources     { return r.bits }
