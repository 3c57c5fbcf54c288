package secure

import "github.com/sweeney/sleepwake/internal/logic"

// FLIHResult tells the dispatcher whether a first-level handler needs the
// partition's own task to be signalled.
type FLIHResult uint8

const (
	// FLIHNoSignal means the handler recorded everything it needed.
	FLIHNoSignal FLIHResult = iota
	// FLIHSignal asks the dispatcher to assert the partition's signal.
	FLIHSignal
)

// wakeButtonFLIH records a user-button wake in the register.
func (p *Partition) wakeButtonFLIH() FLIHResult {
	p.reg.set(logic.WakeUserButton1)
	return FLIHNoSignal
}

// handleIRQ is the interrupt entry for the shared button line.
func (p *Partition) handleIRQ() {
	// Mask contact bounce. Edges arriving during the wait only re-latch
	// flags that Acknowledge clears below.
	p.clock.Sleep(p.debounce)

	primary, secondary := p.line.Acknowledge()
	p.stats.Interrupts++

	if primary {
		p.dispatch(p.wakeButtonFLIH)
	} else {
		p.stats.Spurious++
		p.log.Debug().Bool("secondary", secondary).Msg("shared line interrupt without wake pin")
	}

	if p.onInterrupt != nil {
		p.onInterrupt()
	}
}

// dispatch runs a first-level handler on behalf of the partition.
func (p *Partition) dispatch(flih func() FLIHResult) {
	p.stats.Dispatched++
	if flih() == FLIHSignal {
		p.stats.Signals++
	}
}
