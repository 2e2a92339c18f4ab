// SPDX-License-Identifier: MIT
package cmd

import (
	"testing"
	"time"

	"sigbench/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, ""},
		{"run", []string{"run"}, CommandRun},
		{"list", []string{"list", "--task", "detection"}, CommandList},
		{"params", []string{"params", "noise_gate"}, CommandParams},
		{"browse", []string{"browse"}, CommandBrowse},
		{"version", []string{"--version"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.Command)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"params"},
		{"params", "a", "b"},
		{"run", "--workers", "many"},
		{"run", "extra"},
		{"unknown"},
	} {
		_, err := ParseArgs(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseArgsParams(t *testing.T) {
	opts, err := ParseArgs([]string{"params", "spectral_gate", "-v"})
	require.NoError(t, err)
	assert.Equal(t, "spectral_gate", opts.MethodID)
	assert.True(t, opts.Verbose)
}

func TestApplyOverridesOnlyChangedFlags(t *testing.T) {
	opts, err := ParseArgs([]string{
		"run",
		"--method", "noise_gate,spectral_gate",
		"-m", "identity_denoise",
		"--signal", "a.wav",
		"--timeout", "2s",
		"--verify-input",
		"--config", "custom.yaml",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", opts.ConfigPath)

	cfg := config.Default()
	cfg.Run.Workers = 7
	opts.Apply(cfg)

	assert.Equal(t, []string{"noise_gate", "spectral_gate", "identity_denoise"}, cfg.Run.Methods)
	assert.Equal(t, 2*time.Second, cfg.Run.Timeout)
	assert.True(t, cfg.Run.VerifyInput)
	assert.Equal(t, 7, cfg.Run.Workers, "unset flags keep config values")
	require.Len(t, cfg.Signals, 1)
	assert.Equal(t, "a", cfg.Signals[0].SignalName())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyVerbose(t *testing.T) {
	opts, err := ParseArgs([]string{"run", "--verbose", "--workers", "0"})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Run.Workers = 4
	opts.Apply(cfg)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0, cfg.Run.Workers)
}
