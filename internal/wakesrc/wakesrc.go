// Package wakesrc is the application-side API of the power manager
// partition's wake-source service.
package wakesrc

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/sweeney/sleepwake/internal/logic"
	"github.com/sweeney/sleepwake/internal/psa"
)

// Caller performs a boundary call. *psa.Client implements it.
type Caller interface {
	Call(ctx context.Context, typ psa.Type, in [][]byte, outLen []int) ([][]byte, error)
}

// Client calls the wake-source service.
type Client struct {
	c Caller
}

// New returns a Client that calls through c.
func New(c Caller) *Client {
	return &Client{c: c}
}

// Clear resets the wake-source register.
func (w *Client) Clear(ctx context.Context) error {
	if _, err := w.c.Call(ctx, psa.ClearWakeupSource, nil, nil); err != nil {
		return fmt.Errorf("clear wake source: %w", err)
	}
	return nil
}

// Get reads the wake-source register.
func (w *Client) Get(ctx context.Context) (logic.WakeSources, error) {
	out, err := w.c.Call(ctx, psa.GetWakeupSource, nil, []int{4})
	if err != nil {
		return 0, fmt.Errorf("get wake source: %w", err)
	}
	if len(out) != 1 || len(out[0]) != 4 {
		return 0, fmt.Errorf("get wake source: short reply: %w", psa.ErrProgrammerError)
	}
	return logic.WakeSources(binary.LittleEndian.Uint32(out[0])), nil
}
