// Package config loads daemon settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/sleepwake/internal/app"
	"github.com/sweeney/sleepwake/internal/gpio"
	"github.com/sweeney/sleepwake/internal/secure"
)

// EnvPrefix prefixes environment overrides, e.g. SLEEPWAKE_ACTIVE_DURATION.
const EnvPrefix = "SLEEPWAKE"

// Config holds daemon settings.
type Config struct {
	ActiveDuration time.Duration
	Heartbeat      time.Duration
	Debounce       time.Duration
	IRQPriority    int

	Chip    string
	PinBtn1 gpio.Pin
	PinBtn2 gpio.Pin
	PinLED1 gpio.Pin
	PinLED2 gpio.Pin

	Broker   string // empty disables MQTT
	HTTPAddr string // empty disables the status page
	LogLevel zerolog.Level
	Simulate bool
}

const (
	keyConfig         = "config"
	keyActiveDuration = "active-duration"
	keyHeartbeat      = "heartbeat"
	keyDebounce       = "debounce"
	keyIRQPriority    = "irq-priority"
	keyChip           = "chip"
	keyPinBtn1        = "pin-btn1"
	keyPinBtn2        = "pin-btn2"
	keyPinLED1        = "pin-led1"
	keyPinLED2        = "pin-led2"
	keyBroker         = "broker"
	keyHTTP           = "http"
	keyLogLevel       = "log-level"
	keySimulate       = "simulate"
)

// FlagSet returns the command-line flags with their defaults.
func FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(keyConfig, "", "config file (yaml, toml or json)")
	fs.Duration(keyActiveDuration, app.DefaultActiveDuration, "time spent Active before going Idle")
	fs.Duration(keyHeartbeat, app.DefaultHeartbeatPeriod, "heartbeat LED toggle period")
	fs.Duration(keyDebounce, secure.DefaultDebounce, "button debounce delay")
	fs.Int(keyIRQPriority, secure.DefaultPriority, "priority of the shared button interrupt line")
	fs.String(keyChip, "gpiochip0", "GPIO chip name")
	fs.Int(keyPinBtn1, gpio.DefaultPinBtn1, "line offset of the wake button")
	fs.Int(keyPinBtn2, gpio.DefaultPinBtn2, "line offset of the second button on the shared line")
	fs.Int(keyPinLED1, gpio.DefaultPinLED1, "line offset of the heartbeat LED")
	fs.Int(keyPinLED2, gpio.DefaultPinLED2, "line offset of the deep-sleep LED")
	fs.String(keyBroker, "tcp://localhost:1883", "MQTT broker address (empty to disable)")
	fs.String(keyHTTP, ":8080", "HTTP status address (empty to disable)")
	fs.String(keyLogLevel, "info", "log level (debug, info, warn, error)")
	fs.Bool(keySimulate, false, `use simulated GPIO; type "1" or "2" on stdin to press a button`)
	return fs
}

// Load parses args and layers them over environment variables and the
// optional config file. Flags set explicitly win over env, env wins over
// the file, and the file wins over defaults. pflag.ErrHelp is returned
// unwrapped when --help is given.
func Load(args []string, usage io.Writer) (Config, error) {
	fs := FlagSet("sleepwake")
	fs.SetOutput(usage)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, err := zerolog.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyLogLevel, err)
	}

	c := Config{
		ActiveDuration: v.GetDuration(keyActiveDuration),
		Heartbeat:      v.GetDuration(keyHeartbeat),
		Debounce:       v.GetDuration(keyDebounce),
		IRQPriority:    v.GetInt(keyIRQPriority),
		Chip:           v.GetString(keyChip),
		PinBtn1:        gpio.Pin(v.GetInt(keyPinBtn1)),
		PinBtn2:        gpio.Pin(v.GetInt(keyPinBtn2)),
		PinLED1:        gpio.Pin(v.GetInt(keyPinLED1)),
		PinLED2:        gpio.Pin(v.GetInt(keyPinLED2)),
		Broker:         v.GetString(keyBroker),
		HTTPAddr:       v.GetString(keyHTTP),
		LogLevel:       level,
		Simulate:       v.GetBool(keySimulate),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	var errs []error
	durations := []struct {
		key string
		d   time.Duration
	}{
		{keyActiveDuration, c.ActiveDuration},
		{keyHeartbeat, c.Heartbeat},
		{keyDebounce, c.Debounce},
	}
	for _, v := range durations {
		if v.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", v.key, v.d))
		}
	}
	if c.IRQPriority < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", keyIRQPriority, c.IRQPriority))
	}
	if c.PinBtn1 == c.PinBtn2 {
		errs = append(errs, fmt.Errorf("%s and %s must differ, both %d", keyPinBtn1, keyPinBtn2, c.PinBtn1))
	}
	if c.PinLED1 == c.PinLED2 {
		errs = append(errs, fmt.Errorf("%s and %s must differ, both %d", keyPinLED1, keyPinLED2, c.PinLED1))
	}
	if !c.Simulate && c.Chip == "" {
		errs = append(errs, fmt.Errorf("%s is required", keyChip))
	}
	return errors.Join(errs...)
}
