// SPDX-License-Identifier: MIT
package methods

import (
	"math"

	"sigbench/internal/method"
	"sigbench/internal/signal"

	"gonum.org/v1/gonum/floats"
)

// NoiseGateID is the ID of the frame-based noise gate.
const NoiseGateID = "noise_gate"

const (
	defaultGateThreshold = 0.05 // Fraction of full scale.
	defaultGateWindow    = 256  // Samples per gating frame.
)

// GateParams configures the noise gate.
type GateParams struct {
	// Threshold is the absolute amplitude below which a frame is muted.
	// The value is in the range 0.0-1.0 where 0=always open, 1=always closed.
	Threshold float64 `mapstructure:"threshold"`
	// Window is the number of samples per frame.
	Window int `mapstructure:"window"`
}

// NoiseGate splits the signal into fixed frames and mutes every frame whose
// peak amplitude does not exceed the threshold.
type NoiseGate struct {
	method.Template
}

// NewNoiseGate constructs the noise gate.
func NewNoiseGate() method.Method {
	return &NoiseGate{method.Template{MethodID: NoiseGateID, MethodTask: method.Denoising}}
}

// Parameters sweeps three thresholds at the default window.
func (g *NoiseGate) Parameters() []method.Params {
	return []method.Params{
		{"threshold": 0.01, "window": defaultGateWindow},
		{"threshold": 0.05, "window": defaultGateWindow},
		{"threshold": 0.1, "window": defaultGateWindow},
	}
}

func (g *NoiseGate) params(params method.Params) (GateParams, error) {
	p := GateParams{Threshold: defaultGateThreshold, Window: defaultGateWindow}
	if err := method.DecodeParams(params, &p); err != nil {
		return p, err
	}
	if p.Threshold < 0 || p.Threshold > 1 || math.IsNaN(p.Threshold) {
		return p, method.InvalidParamsf("threshold must be within [0, 1], got %f", p.Threshold)
	}
	if p.Window <= 0 {
		return p, method.InvalidParamsf("window must be positive, got %d", p.Window)
	}
	return p, nil
}

// Apply gates sig frame by frame.
func (g *NoiseGate) Apply(sig signal.Signal, params method.Params) (method.Result, error) {
	p, err := g.params(params)
	if err != nil {
		return method.Result{}, err
	}

	out := sig.Clone()
	for start := 0; start < len(out.Samples); start += p.Window {
		end := min(start+p.Window, len(out.Samples))
		frame := out.Samples[start:end]
		if peakAmplitude(frame) <= p.Threshold {
			clear(frame)
		}
	}
	return method.Denoised(out), nil
}

// peakAmplitude returns the largest absolute sample value in frame.
func peakAmplitude(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	return math.Max(floats.Max(frame), -floats.Min(frame))
}
