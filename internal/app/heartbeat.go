package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/rtos"
)

// DefaultHeartbeatPeriod is the heartbeat LED toggle period.
const DefaultHeartbeatPeriod = 500 * time.Millisecond

// NewHeartbeat returns a task that toggles led every period.
func NewHeartbeat(clk clock.Clock, led gpio.LED, period time.Duration) *rtos.Task {
	return rtos.NewTask("heartbeat", func(ctx context.Context) error {
		if err := led.Toggle(); err != nil {
			return fmt.Errorf("toggle heartbeat LED: %w", err)
		}

		timer := clk.NewTimer(period)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
