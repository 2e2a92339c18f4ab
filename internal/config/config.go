// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "sigbench/internal/log"
	"sigbench/internal/method"
	"sigbench/internal/signal"

	"gopkg.in/yaml.v3"
)

// Core configuration constants that define the defaults for a run.
const (
	DefaultConfigFile       = "sigbench.yaml"
	DefaultLogLevel         = "info"
	DefaultWorkers          = 0 // 0 selects runtime.NumCPU()
	DefaultTimeout          = 30 * time.Second
	DefaultBitDepth         = signal.DefaultBitDepth
	DefaultWebSocketAddress = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPQueueSize     = 128
)

var errInvalidConfig = errors.New("invalid configuration")

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	Run       RunConfig       `yaml:"run"`       // Method selection and dispatch settings.
	Signals   []SignalConfig  `yaml:"signals"`   // Inputs to run the methods on.
	Transport TransportConfig `yaml:"transport"` // Outcome sinks.
	Metrics   MetricsConfig   `yaml:"metrics"`   // Prometheus endpoint.
}

// RunConfig holds settings for method selection and dispatch.
type RunConfig struct {
	Methods     []string      `yaml:"methods"`      // Method IDs to run; empty selects by task.
	Task        string        `yaml:"task"`         // "denoising", "detection" or empty for all.
	Workers     int           `yaml:"workers"`      // Concurrent invocations (0 for one per CPU).
	Timeout     time.Duration `yaml:"timeout"`      // Per-invocation bound (0 for none).
	VerifyInput bool          `yaml:"verify_input"` // Fail methods that mutate their input.
	OutputDir   string        `yaml:"output_dir"`   // Directory for denoised WAV files; empty disables.
	BitDepth    int           `yaml:"bit_depth"`    // Bit depth of written WAV files.
}

// SignalConfig names one input: either a WAV file or a synthetic signal.
type SignalConfig struct {
	Name      string            `yaml:"name"`
	Path      string            `yaml:"path,omitempty"`
	Synthetic *signal.Synthetic `yaml:"synthetic,omitempty"`
}

// TransportConfig holds settings related to publishing outcomes.
type TransportConfig struct {
	LogEnabled       bool   `yaml:"log_enabled"`        // Log every outcome.
	WebSocketEnabled bool   `yaml:"websocket_enabled"`  // Broadcast outcomes as JSON.
	WebSocketAddress string `yaml:"websocket_address"`  // Listen address of the WebSocket server.
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send outcome packets over UDP.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPQueueSize     int    `yaml:"udp_queue_size"`     // Records buffered before the publisher drops.
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Address string `yaml:"address"` // Listen address for /metrics; empty disables.
}

// Default returns the built-in configuration: every method on one noisy
// synthetic test tone, outcomes logged.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Run: RunConfig{
			Workers:  DefaultWorkers,
			Timeout:  DefaultTimeout,
			BitDepth: DefaultBitDepth,
		},
		Signals: []SignalConfig{
			{
				Name: "tone",
				Synthetic: &signal.Synthetic{
					Frequency:  440,
					Harmonics:  true,
					Amplitude:  0.5,
					Duration:   time.Second,
					SampleRate: 16000,
					Noise:      0.02,
					Seed:       1,
					Impulses:   []int{4000, 8000, 12000},
				},
			},
		},
		Transport: TransportConfig{
			LogEnabled:       true,
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPQueueSize:     DefaultUDPQueueSize,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it looks for DefaultConfigFile in the working directory and falls
// back to Default when there is none. Environment overrides are applied
// after loading, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: Loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the runner cannot use.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		fail("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	if c.Run.Task != "" {
		if _, err := method.ParseTask(c.Run.Task); err != nil {
			fail("run.task: %v", err)
		}
	}
	if c.Run.Workers < 0 {
		fail("run.workers must not be negative, got %d", c.Run.Workers)
	}
	if c.Run.Timeout < 0 {
		fail("run.timeout must not be negative, got %s", c.Run.Timeout)
	}
	switch c.Run.BitDepth {
	case 16, 24, 32:
	default:
		fail("run.bit_depth must be 16, 24 or 32, got %d", c.Run.BitDepth)
	}

	names := make(map[string]bool, len(c.Signals))
	for i, s := range c.Signals {
		switch {
		case s.Path == "" && s.Synthetic == nil:
			fail("signals[%d]: one of path or synthetic is required", i)
		case s.Path != "" && s.Synthetic != nil:
			fail("signals[%d]: path and synthetic are mutually exclusive", i)
		}
		name := s.SignalName()
		if name == "" {
			fail("signals[%d]: name is required for synthetic signals", i)
		} else if names[name] {
			fail("signals[%d]: duplicate name %q", i, name)
		}
		names[name] = true
	}

	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		fail("transport.websocket_address must be set when the WebSocket transport is enabled")
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			fail("transport.udp_target_address must be set when UDP is enabled")
		} else if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			fail("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", errInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SignalName returns the configured name, or the file name without its
// extension for WAV inputs.
func (s SignalConfig) SignalName() string {
	if s.Name != "" || s.Path == "" {
		return s.Name
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SignalsFromPaths builds WAV signal entries for paths.
func SignalsFromPaths(paths []string) []SignalConfig {
	signals := make([]SignalConfig, len(paths))
	for i, p := range paths {
		signals[i] = SignalConfig{Path: p}
	}
	return signals
}

// LoadSignals reads or generates every configured signal, in order.
func (c *Config) LoadSignals() ([]signal.Named, error) {
	named := make([]signal.Named, 0, len(c.Signals))
	for _, s := range c.Signals {
		var (
			sig signal.Signal
			err error
		)
		if s.Synthetic != nil {
			sig, err = s.Synthetic.Generate()
		} else {
			sig, err = signal.ReadWAV(s.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("signal %q: %w", s.SignalName(), err)
		}
		applog.Debugf("configuration: Loaded signal %q (%d samples @ %.0f Hz)",
			s.SignalName(), sig.Len(), sig.SampleRate)
		named = append(named, signal.Named{Name: s.SignalName(), Signal: sig})
	}
	return named, nil
}

// applyEnvOverrides replaces config values with ENV_* variables when set.
// Unparseable values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			applog.Debugf("configuration: Overriding debug from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_{WORKERS,TIMEOUT}
	// These are specific to the dispatcher.

	// ENV_WORKERS
	if val, ok := os.LookupEnv("ENV_WORKERS"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Run.Workers = n
			applog.Debugf("configuration: Overriding run.workers from env: %d", n)
		} else {
			applog.Warnf("configuration: Ignoring ENV_WORKERS=%q: %v", val, err)
		}
	}
	// ENV_TIMEOUT
	if val, ok := os.LookupEnv("ENV_TIMEOUT"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Run.Timeout = dur
			applog.Debugf("configuration: Overriding run.timeout from env: %s", dur)
		} else {
			applog.Warnf("configuration: Ignoring ENV_TIMEOUT=%q: %v", val, err)
		}
	}

	// ENV_UDP_{...} and ENV_WS_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Debugf("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_UDP_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Debugf("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			applog.Debugf("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_WS_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Debugf("configuration: Overriding transport.websocket_address from env: %s", val)
	}

	// ENV_METRICS_ADDRESS
	if val, ok := os.LookupEnv("ENV_METRICS_ADDRESS"); ok {
		c.Metrics.Address = val
		applog.Debugf("configuration: Overriding metrics.address from env: %s", val)
	}
}
