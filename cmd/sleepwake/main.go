// Command sleepwake runs the power manager partition and the application
// state machine that sleeps the device when idle and wakes it on a button.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/config"
	"github.com/sweeney/sleepwake/internal/mqtt"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	log := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	if err := run(cfg, log); err != nil {
		// Initialization failures halt the device.
		log.Fatal().Err(err).Msg("fatal")
	}
}

func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func run(cfg config.Config, log zerolog.Logger) error {
	hw, err := openHardware(cfg, log)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer hw.Close()

	pub := connectPublisher(cfg.Broker, log)
	defer pub.Close()

	d, err := newDaemon(cfg, hw, pub, clock.Real(), log)
	if err != nil {
		return err
	}

	if cfg.Simulate {
		go simulate(os.Stdin, hw.sim, cfg.PinBtn1, cfg.PinBtn2, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	reason := make(chan string, 1)
	go func() {
		select {
		case s := <-sigCh:
			log.Info().Stringer("signal", s).Msg("shutting down")
			reason <- signalName(s)
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := d.Run(ctx)

	shutdownReason := "ERROR"
	select {
	case r := <-reason:
		shutdownReason = r
	default:
	}
	d.Shutdown(shutdownReason)
	return runErr
}

// connectPublisher returns a broker-backed publisher, or a no-op one if
// the broker is disabled or unreachable. MQTT is never fatal.
func connectPublisher(broker string, log zerolog.Logger) mqtt.Publisher {
	if broker == "" {
		log.Info().Msg("mqtt disabled")
		return discardPublisher{}
	}
	p, err := mqtt.NewRealPublisher(mqtt.Config{Broker: broker, Logger: log})
	if err != nil {
		log.Warn().Err(err).Msg("mqtt unavailable, continuing without telemetry")
		return discardPublisher{}
	}
	return p
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
