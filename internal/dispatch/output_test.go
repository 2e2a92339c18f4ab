// SPDX-License-Identifier: MIT
package dispatch

import (
	"errors"
	"path/filepath"
	"testing"

	"sigbench/internal/method"
	"sigbench/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	o := Outcome{MethodID: "noise_gate", Signal: "takes/voice", ParamIndex: 2}
	assert.Equal(t, "takes_voice__noise_gate__p2.wav", OutputName(o))
}

func TestWriteOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sig := signal.New([]float64{0, 0.5, -0.5, 0.25}, 8000)

	report := &Report{Outcomes: []Outcome{
		{MethodID: "identity_denoise", Signal: "tone", Result: method.Denoised(sig)},
		{MethodID: "peak_detection", Signal: "tone", Result: method.Detected(nil)},
		{MethodID: "broken", Signal: "tone", Err: errors.New("boom")},
		{MethodID: "noise_gate", Signal: "tone", ParamIndex: 1, Result: method.Denoised(sig)},
	}}

	paths, err := WriteOutputs(dir, report, 16)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "tone__identity_denoise__p0.wav"),
		filepath.Join(dir, "tone__noise_gate__p1.wav"),
	}, paths)

	got, err := signal.ReadWAV(paths[0])
	require.NoError(t, err)
	assert.Equal(t, sig.Len(), got.Len())
	assert.Equal(t, sig.SampleRate, got.SampleRate)
	for i := range sig.Samples {
		assert.InDelta(t, sig.Samples[i], got.Samples[i], 1e-4)
	}
}

func TestWriteOutputsBadBitDepth(t *testing.T) {
	sig := signal.New([]float64{0.1}, 8000)
	report := &Report{Outcomes: []Outcome{{MethodID: "m", Signal: "s", Result: method.Denoised(sig)}}}

	paths, err := WriteOutputs(t.TempDir(), report, 12)
	assert.Error(t, err)
	assert.Empty(t, paths)
}
