package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/sleepwake/internal/app"
	"github.com/sweeney/sleepwake/internal/clock"
	"github.com/sweeney/sleepwake/internal/config"
	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/logic"
	"github.com/sweeney/sleepwake/internal/mqtt"
	"github.com/sweeney/sleepwake/internal/pm"
	"github.com/sweeney/sleepwake/internal/psa"
	"github.com/sweeney/sleepwake/internal/rtos"
	"github.com/sweeney/sleepwake/internal/secure"
	"github.com/sweeney/sleepwake/internal/status"
	"github.com/sweeney/sleepwake/internal/wakesrc"
	"github.com/sweeney/sleepwake/internal/web"
)

// daemon owns every long-running component.
type daemon struct {
	clock clock.Clock
	log   zerolog.Logger

	partition *secure.Partition
	manager   *pm.Manager
	callback  *pm.WakeCallback
	machine   *app.Machine
	heartbeat *rtos.Task
	tracker   *status.Tracker
	pub       mqtt.Publisher
	web       *web.Server // nil when disabled
}

// newDaemon wires the components. Any error here is fatal.
func newDaemon(cfg config.Config, hw *hardware, pub mqtt.Publisher, clk clock.Clock, log zerolog.Logger) (*daemon, error) {
	line, err := gpio.NewSharedLine(hw.ctrl, cfg.PinBtn1, cfg.PinBtn2)
	if err != nil {
		return nil, fmt.Errorf("shared line: %w", err)
	}

	tracker := status.NewTracker(clk, statusConfig(cfg))
	sink := &telemetry{tracker: tracker, pub: pub, log: log}

	mgr := pm.NewManager(clk, sink, component(log, "pm"))

	ep := psa.NewEndpoint()
	partition, err := secure.New(secure.Config{
		Line:        line,
		Endpoint:    ep,
		Clock:       clk,
		Debounce:    cfg.Debounce,
		Priority:    cfg.IRQPriority,
		Logger:      component(log, "partition"),
		OnInterrupt: mgr.Wake,
	})
	if err != nil {
		return nil, err
	}
	if err := partition.Init(); err != nil {
		return nil, fmt.Errorf("partition init: %w", err)
	}

	notify := rtos.NewNotification()
	cb, err := pm.NewWakeCallback(pm.WakeCallbackConfig{
		Service:   wakesrc.New(psa.NewClient(ep)),
		Indicator: hw.sleepLED,
		Notify:    notify,
		Clock:     clk,
		Sink:      sink,
		Logger:    component(log, "pm"),
	})
	if err != nil {
		return nil, err
	}
	if err := mgr.Register(cb); err != nil {
		return nil, fmt.Errorf("register wake callback: %w", err)
	}
	// The machine blocking on its notification is the idle point that
	// triggers deep sleep.
	notify.OnBlock(mgr.RequestSleep)

	hb := app.NewHeartbeat(clk, hw.heartbeatLED, cfg.Heartbeat)
	machine, err := app.NewMachine(app.Config{
		Clock:          clk,
		ActiveDuration: cfg.ActiveDuration,
		Heartbeat:      hb,
		HeartbeatLED:   hw.heartbeatLED,
		Notify:         notify,
		Wake:           cb,
		Sink:           sink,
		Logger:         component(log, "app"),
	})
	if err != nil {
		return nil, err
	}

	d := &daemon{
		clock:     clk,
		log:       log,
		partition: partition,
		manager:   mgr,
		callback:  cb,
		machine:   machine,
		heartbeat: hb,
		tracker:   tracker,
		pub:       pub,
	}
	if cfg.HTTPAddr != "" {
		d.web = web.New(cfg.HTTPAddr, tracker, log)
	}
	return d, nil
}

// Run publishes STARTUP and runs every component until ctx ends or one
// of them fails.
func (d *daemon) Run(ctx context.Context) error {
	d.publishSystem("STARTUP", "")
	d.log.Info().Msg("started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.partition.Run(ctx) })
	g.Go(func() error { return d.manager.Run(ctx) })
	g.Go(func() error { return d.heartbeat.Run(ctx) })
	g.Go(func() error { return d.machine.Run(ctx) })
	if d.web != nil {
		g.Go(func() error { return d.web.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown publishes the SHUTDOWN system event.
func (d *daemon) Shutdown(reason string) {
	d.publishSystem("SHUTDOWN", reason)
}

func (d *daemon) publishSystem(event, reason string) {
	if cs, ok := d.pub.(mqtt.ConnectionStatus); ok {
		d.tracker.SetMQTTConnected(cs.IsConnected())
	}
	snap := d.tracker.Snapshot()
	err := d.pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		d.log.Warn().Err(err).Str("event", event).Msg("publish system event")
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		ActiveDurationMs: cfg.ActiveDuration.Milliseconds(),
		HeartbeatMs:      cfg.Heartbeat.Milliseconds(),
		DebounceMs:       cfg.Debounce.Milliseconds(),
		IRQPriority:      cfg.IRQPriority,
		Broker:           cfg.Broker,
		HTTPAddr:         cfg.HTTPAddr,
	}
}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// telemetry fans events out to the status tracker and MQTT.
type telemetry struct {
	tracker *status.Tracker
	pub     mqtt.Publisher
	log     zerolog.Logger
}

// Emit implements logic.EventSink. Publish failures are logged and dropped.
func (t *telemetry) Emit(e logic.Event) {
	t.tracker.Emit(e)
	if err := t.pub.Publish(e); err != nil {
		t.log.Warn().Err(err).Str("event", string(e.Type)).Msg("publish")
	}
	if cs, ok := t.pub.(mqtt.ConnectionStatus); ok {
		t.tracker.SetMQTTConnected(cs.IsConnected())
	}
}

// discardPublisher is used when MQTT is disabled or unreachable.
type discardPublisher struct{}

func (discardPublisher) Publish(logic.Event) error            { return nil }
func (discardPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (discardPublisher) Close() error                         { return nil }
