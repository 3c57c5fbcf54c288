package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/sleepwake/internal/gpio"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, c.ActiveDuration)
	assert.Equal(t, 500*time.Millisecond, c.Heartbeat)
	assert.Equal(t, 200*time.Millisecond, c.Debounce)
	assert.Equal(t, 3, c.IRQPriority)
	assert.Equal(t, "gpiochip0", c.Chip)
	assert.Equal(t, gpio.Pin(17), c.PinBtn1)
	assert.Equal(t, gpio.Pin(27), c.PinBtn2)
	assert.Equal(t, gpio.Pin(22), c.PinLED1)
	assert.Equal(t, gpio.Pin(23), c.PinLED2)
	assert.Equal(t, "tcp://localhost:1883", c.Broker)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, zerolog.InfoLevel, c.LogLevel)
	assert.False(t, c.Simulate)
}

func TestLoadFlags(t *testing.T) {
	c, err := Load([]string{
		"--active-duration=5s",
		"--debounce=50ms",
		"--broker=",
		"--log-level=debug",
		"--simulate",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, c.ActiveDuration)
	assert.Equal(t, 50*time.Millisecond, c.Debounce)
	assert.Empty(t, c.Broker)
	assert.Equal(t, zerolog.DebugLevel, c.LogLevel)
	assert.True(t, c.Simulate)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SLEEPWAKE_ACTIVE_DURATION", "7s")
	t.Setenv("SLEEPWAKE_PIN_BTN2", "5")

	c, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, c.ActiveDuration)
	assert.Equal(t, gpio.Pin(5), c.PinBtn2)
}

func TestLoadFlagBeatsEnv(t *testing.T) {
	t.Setenv("SLEEPWAKE_HEARTBEAT", "2s")

	c, err := Load([]string{"--heartbeat=1s"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.Heartbeat)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleepwake.yaml")
	require.NoError(t, os.WriteFile(path, []byte("irq-priority: 1\nhttp: \":9090\"\nheartbeat: 250ms\n"), 0o644))
	t.Setenv("SLEEPWAKE_HEARTBEAT", "300ms")

	c, err := Load([]string{"--config", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, c.IRQPriority)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 300*time.Millisecond, c.Heartbeat, "env overrides file")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}, io.Discard)
	assert.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"--help"}, io.Discard)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"zero active duration", []string{"--active-duration=0s"}},
		{"negative heartbeat", []string{"--heartbeat=-1s"}},
		{"zero debounce", []string{"--debounce=0"}},
		{"negative priority", []string{"--irq-priority=-1"}},
		{"same buttons", []string{"--pin-btn1=4", "--pin-btn2=4"}},
		{"same leds", []string{"--pin-led1=4", "--pin-led2=4"}},
		{"empty chip", []string{"--chip="}},
		{"bad log level", []string{"--log-level=loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	err := Config{Chip: "gpiochip0", PinBtn1: 1, PinBtn2: 1, PinLED1: 2, PinLED2: 3}.Validate()
	require.Error(t, err)
	for _, want := range []string{"active-duration", "heartbeat", "debounce", "pin-btn1"} {
		assert.Contains(t, err.Error(), want)
	}
}
