package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sweeney/sleepwake/internal/config"
	"github.com/sweeney/sleepwake/internal/gpio"
)

// hardware is the set of GPIO resources the daemon drives.
type hardware struct {
	ctrl         gpio.Controller
	heartbeatLED gpio.LED
	sleepLED     gpio.LED
	sim          *gpio.FakeController // set in simulate mode
}

func openHardware(cfg config.Config, log zerolog.Logger) (*hardware, error) {
	if cfg.Simulate {
		ctrl := gpio.NewFakeController()
		log.Info().Msg(`simulated gpio: type "1" or "2" and enter to press a button`)
		return &hardware{
			ctrl:         ctrl,
			heartbeatLED: gpio.NewFakeLED(),
			sleepLED:     gpio.NewFakeLED(),
			sim:          ctrl,
		}, nil
	}

	ctrl, err := gpio.NewRealController(cfg.Chip, cfg.PinBtn1, cfg.PinBtn2)
	if err != nil {
		return nil, fmt.Errorf("buttons: %w", err)
	}
	hw := &hardware{ctrl: ctrl}

	led1, err := gpio.NewRealLED(cfg.Chip, cfg.PinLED1)
	if err != nil {
		hw.Close()
		return nil, fmt.Errorf("heartbeat led: %w", err)
	}
	hw.heartbeatLED = led1

	led2, err := gpio.NewRealLED(cfg.Chip, cfg.PinLED2)
	if err != nil {
		hw.Close()
		return nil, fmt.Errorf("sleep led: %w", err)
	}
	hw.sleepLED = led2
	return hw, nil
}

// Close releases every opened resource.
func (h *hardware) Close() error {
	var errs []error
	for _, c := range []io.Closer{h.ctrl, h.heartbeatLED, h.sleepLED} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// simulate presses btn1 or btn2 for each "1" or "2" line read from r.
func simulate(r io.Reader, ctrl *gpio.FakeController, btn1, btn2 gpio.Pin, log zerolog.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case "1":
			ctrl.Edge(btn1)
		case "2":
			ctrl.Edge(btn2)
		case "":
		default:
			log.Warn().Str("input", sc.Text()).Msg(`simulate: expected "1" or "2"`)
		}
	}
}
