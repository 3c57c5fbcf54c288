package secure

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/psa"
)

// DefaultDebounce is the contact-bounce mask applied to each interrupt.
const DefaultDebounce = 200 * time.Millisecond

// DefaultPriority is the shared line priority.
const DefaultPriority = 3

// Config configures a Partition.
type Config struct {
	Line     *gpio.SharedLine
	Endpoint *psa.Endpoint
	Clock    clock.Clock
	Debounce time.Duration
	Priority int
	Logger   zerolog.Logger
	// OnInterrupt, if set, runs after every handled interrupt. The
	// platform uses it to resume the core from deep sleep.
	OnInterrupt func()
}

// Stats counts partition activity.
type Stats struct {
	Interrupts int
	Dispatched int
	Spurious   int
	Signals    int
	Calls      int
}

// Partition is the trusted-domain power manager.
type Partition struct {
	line        *gpio.SharedLine
	ep          *psa.Endpoint
	clock       clock.Clock
	debounce    time.Duration
	priority    int
	log         zerolog.Logger
	onInterrupt func()

	reg     register
	stats   Stats
	statsCh chan chan Stats
	ready   bool
}

// New creates a Partition. Call Init before Run.
func New(cfg Config) (*Partition, error) {
	if cfg.Line == nil {
		return nil, fmt.Errorf("partition: nil shared line")
	}
	if cfg.Endpoint == nil {
		return nil, fmt.Errorf("partition: nil endpoint")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("partition: negative debounce %v", cfg.Debounce)
	}
	return &Partition{
		line:        cfg.Line,
		ep:          cfg.Endpoint,
		clock:       cfg.Clock,
		debounce:    cfg.Debounce,
		priority:    cfg.Priority,
		log:         cfg.Logger,
		onInterrupt: cfg.OnInterrupt,
		statsCh:     make(chan chan Stats),
	}, nil
}

// Init prepares the shared line before interrupts are taken. Board
// bring-up can leave both buttons' flags latched, which would assert the
// line immediately, so both are cleared first.
func (p *Partition) Init() error {
	if p.ready {
		return fmt.Errorf("partition: already initialized")
	}
	p.line.Configure(p.priority)
	p.line.Acknowledge()
	p.ready = true

	p.log.Info().
		Int("primary", int(p.line.Primary())).
		Int("secondary", int(p.line.Secondary())).
		Int("priority", p.priority).
		Dur("debounce", p.debounce).
		Msg("power manager partition init")
	return nil
}

// Run dispatches interrupts and boundary calls until ctx ends.
func (p *Partition) Run(ctx context.Context) error {
	if !p.ready {
		return fmt.Errorf("partition: run before init")
	}
	defer p.ep.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-p.line.IRQ():
			p.handleIRQ()

		case req := <-p.ep.Requests():
			p.stats.Calls++
			msg, err := req.Decode()
			if err != nil {
				p.log.Error().Err(err).Msg("malformed boundary request")
				req.Reply(psa.ErrProgrammerError)
				continue
			}
			status, out := p.serve(msg)
			if status != psa.Success {
				p.log.Warn().Stringer("type", msg.Type).Err(status).Msg("boundary call rejected")
			}
			req.Reply(status, out...)

		case reply := <-p.statsCh:
			reply <- p.stats
		}
	}
}

// Stats returns the partition's counters. It is answered by the dispatch
// goroutine, so it blocks while Run is not active.
func (p *Partition) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case p.statsCh <- reply:
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}
