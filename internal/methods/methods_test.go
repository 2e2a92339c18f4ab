// SPDX-License-Identifier: MIT
package methods

import (
	"testing"

	"sigbench/internal/method"
	"sigbench/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 8000

// paramSets returns the sweep grid of m, or a single nil set.
func paramSets(m method.Method) []method.Params {
	if src, ok := m.(method.ParameterSource); ok {
		return src.Parameters()
	}
	return []method.Params{nil}
}

func noisyTone() signal.Signal {
	return signal.AddNoise(signal.Sine(4096, testSampleRate, 440, 0.5), 0.05, 7)
}

func TestBuiltinsHaveValidIdentity(t *testing.T) {
	r := DefaultRegistry()
	require.Equal(t, len(builtins), r.Len())

	for _, m := range r.All() {
		assert.NotEmpty(t, m.ID())
		assert.True(t, m.Task().Valid(), "%s has task %q", m.ID(), m.Task())
	}
}

func TestRegisterBuiltinsTwiceFails(t *testing.T) {
	r := DefaultRegistry()
	assert.Error(t, RegisterBuiltins(r))
}

func TestIdentityEndToEnd(t *testing.T) {
	m, err := DefaultRegistry().Get(IdentityID)
	require.NoError(t, err)
	assert.Equal(t, method.Denoising, m.Task())

	_, isSource := m.(method.ParameterSource)
	assert.False(t, isSource)

	in := signal.New([]float64{0.1, 0.2, 0.3}, testSampleRate)
	res, err := m.Apply(in, nil)
	require.NoError(t, err)
	require.NoError(t, res.Validate(method.Denoising))
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, res.Signal.Samples)

	_, err = m.Apply(in, method.Params{"gain": 2})
	assert.ErrorIs(t, err, method.ErrInvalidParams)
}

func TestBuiltinsAreDeterministicAndNonMutating(t *testing.T) {
	inputs := map[string]signal.Signal{
		"tone":     noisyTone(),
		"impulses": signal.AddNoise(signal.Impulses(2048, testSampleRate, []int{300, 1500}, 1), 0.01, 3),
		"empty":    signal.New([]float64{}, testSampleRate),
	}

	for _, m := range DefaultRegistry().All() {
		for name, in := range inputs {
			for _, params := range paramSets(m) {
				t.Run(m.ID()+"/"+name+"/"+params.String(), func(t *testing.T) {
					original := in.Clone()

					first, err := m.Apply(in, params)
					require.NoError(t, err)
					require.NoError(t, first.Validate(m.Task()))
					assert.True(t, in.Equal(original), "input was mutated")

					second, err := m.Apply(in, params)
					require.NoError(t, err)
					assert.Equal(t, first, second, "output is not deterministic")

					if m.Task() == method.Denoising {
						assert.Equal(t, in.Len(), first.Signal.Len())
						assert.InDelta(t, in.SampleRate, first.Signal.SampleRate, 0)
					}
				})
			}
		}
	}
}

func TestBuiltinsRejectMalformedParams(t *testing.T) {
	tests := []struct {
		id     string
		params method.Params
	}{
		{NoiseGateID, method.Params{"threshold": 1.5}},
		{NoiseGateID, method.Params{"window": 0}},
		{NoiseGateID, method.Params{"threshold": "loud"}},
		{NoiseGateID, method.Params{"unknown": 1}},
		{SpectralGateID, method.Params{"threshold": -0.1}},
		{SpectralGateID, method.Params{"window": "triangle"}},
		{SpectralGateID, method.Params{"frame": 8}},
		{SpectralGateID, method.Params{"frame": 1 << 30}},
		{SpectralGateID, method.Params{"frame": 1 << 40}},
		{SpectralGateID, method.Params{"frame": (1 << 62) + 1}},
		{EnergyOnsetID, method.Params{"frame": -1}},
		{EnergyOnsetID, method.Params{"ratio": 0.5}},
		{EnergyOnsetID, method.Params{"cooldown": -2}},
		{EnergyOnsetID, method.Params{"threshold": -1}},
		{PeakDetectionID, method.Params{"k": 0}},
		{PeakDetectionID, method.Params{"distance": 0}},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.params.String(), func(t *testing.T) {
			m, err := r.Get(tt.id)
			require.NoError(t, err)

			_, err = m.Apply(noisyTone(), tt.params)
			assert.ErrorIs(t, err, method.ErrInvalidParams)
		})
	}
}

func TestNoiseGate(t *testing.T) {
	in := signal.New([]float64{0.01, -0.02, 0.01, 0, 0.5, -0.4, 0.1, 0, 0.03}, testSampleRate)

	res, err := NewNoiseGate().Apply(in, method.Params{"threshold": 0.05, "window": 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0.5, -0.4, 0.1, 0, 0}, res.Signal.Samples)

	// A closed gate mutes everything, an open one keeps everything.
	res, err = NewNoiseGate().Apply(in, method.Params{"threshold": 1.0, "window": 4})
	require.NoError(t, err)
	assert.Equal(t, make([]float64, in.Len()), res.Signal.Samples)

	res, err = NewNoiseGate().Apply(in, method.Params{"threshold": 0.0, "window": 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.01, -0.02, 0.01, 0, 0.5, -0.4, 0.1, 0, 0.03}, res.Signal.Samples)
}

func TestSpectralGateZeroThresholdReconstructs(t *testing.T) {
	in := noisyTone()

	for _, w := range []string{"hann", "blackman", "rectangular"} {
		t.Run(w, func(t *testing.T) {
			res, err := NewSpectralGate().Apply(in, method.Params{"threshold": 0.0, "window": w, "frame": 256})
			require.NoError(t, err)
			require.Equal(t, in.Len(), res.Signal.Len())
			for i := range in.Samples {
				require.InDelta(t, in.Samples[i], res.Signal.Samples[i], 1e-9, "sample %d", i)
			}
		})
	}
}

func TestSpectralGateReducesNoise(t *testing.T) {
	clean := signal.Sine(4096, testSampleRate, 440, 0.5)
	noisy := signal.AddNoise(clean, 0.05, 11)

	res, err := NewSpectralGate().Apply(noisy, method.Params{"threshold": 0.05})
	require.NoError(t, err)

	before := meanSquaredError(noisy.Samples, clean.Samples)
	after := meanSquaredError(res.Signal.Samples, clean.Samples)
	assert.Less(t, after, before/4, "mse before %.6f after %.6f", before, after)
}

func TestSpectralGateRoundsFrameUp(t *testing.T) {
	g := NewSpectralGate().(*SpectralGate)
	cfg, err := g.params(method.Params{"frame": 300})
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.frame)

	cfg, err = g.params(method.Params{"frame": maxSpectralFrame})
	require.NoError(t, err)
	assert.Equal(t, maxSpectralFrame, cfg.frame)

	_, err = g.params(method.Params{"frame": maxSpectralFrame + 1})
	assert.ErrorIs(t, err, method.ErrInvalidParams)
}

func TestEnergyOnset(t *testing.T) {
	samples := make([]float64, 4096)
	for _, start := range []int{1024, 3072} {
		for i := start; i < start+256; i++ {
			samples[i] = 0.5
		}
	}
	in := signal.New(samples, testSampleRate)

	res, err := NewEnergyOnset().Apply(in, nil)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)

	assert.Equal(t, 1024, res.Events[0].Index)
	assert.Equal(t, 3072, res.Events[1].Index)
	assert.InDelta(t, 1024.0/testSampleRate, res.Events[0].Time, 1e-12)
	assert.InDelta(t, 0.5, res.Events[0].Score, 1e-12)
}

func TestEnergyOnsetSilenceIsEmptyNotNil(t *testing.T) {
	res, err := NewEnergyOnset().Apply(signal.New(make([]float64, 1024), testSampleRate), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Events)
	assert.Empty(t, res.Events)
}

func TestPeakDetection(t *testing.T) {
	in := signal.AddNoise(signal.Impulses(4096, testSampleRate, []int{500, 2000, 3500}, 1), 0.01, 1)

	res, err := NewPeakDetection().Apply(in, nil)
	require.NoError(t, err)

	var indices []int
	for _, e := range res.Events {
		indices = append(indices, e.Index)
	}
	assert.Equal(t, []int{500, 2000, 3500}, indices)
}

func TestPeakDetectionSuppressesNeighbours(t *testing.T) {
	in := signal.Impulses(4096, testSampleRate, []int{1000, 1010, 3000}, 1)
	in.Samples[1010] = 0.9

	res, err := NewPeakDetection().Apply(in, method.Params{"distance": 64})
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, 1000, res.Events[0].Index)
	assert.Equal(t, 3000, res.Events[1].Index)

	res, err = NewPeakDetection().Apply(in, method.Params{"distance": 5})
	require.NoError(t, err)
	assert.Len(t, res.Events, 3)
}

func TestParseWindowFunc(t *testing.T) {
	for w, name := range windowNames {
		got, err := ParseWindowFunc(name)
		require.NoError(t, err)
		assert.Equal(t, w, got)
		assert.Equal(t, name, w.String())
	}

	got, err := ParseWindowFunc("Hanning")
	require.NoError(t, err)
	assert.Equal(t, Hann, got)

	got, err = ParseWindowFunc("triangle")
	assert.Error(t, err)
	assert.Equal(t, Hann, got)
}

func meanSquaredError(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}
