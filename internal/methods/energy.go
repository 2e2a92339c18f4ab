// SPDX-License-Identifier: MIT
package methods

import (
	"math"

	"sigbench/internal/method"
	"sigbench/internal/signal"
)

// EnergyOnsetID is the ID of the frame-energy onset detector.
const EnergyOnsetID = "energy_onset"

const (
	defaultOnsetFrame     = 256
	defaultOnsetThreshold = 0.1
	defaultOnsetRatio     = 2.0
	defaultOnsetCooldown  = 2
)

// OnsetParams configures the energy onset detector.
type OnsetParams struct {
	Frame     int     `mapstructure:"frame"`     // Samples per analysis frame.
	Threshold float64 `mapstructure:"threshold"` // Minimum frame RMS for an onset.
	Ratio     float64 `mapstructure:"ratio"`     // Minimum RMS increase over the previous frame.
	Cooldown  int     `mapstructure:"cooldown"`  // Frames to skip after an onset.
}

// EnergyOnset reports frames whose RMS energy exceeds a threshold and jumps
// sharply relative to the preceding frame.
type EnergyOnset struct {
	method.Template
}

// NewEnergyOnset constructs the energy onset detector.
func NewEnergyOnset() method.Method {
	return &EnergyOnset{method.Template{MethodID: EnergyOnsetID, MethodTask: method.Detection}}
}

// Parameters sweeps two energy thresholds.
func (d *EnergyOnset) Parameters() []method.Params {
	return []method.Params{
		{"threshold": 0.05},
		{"threshold": 0.1},
	}
}

func (d *EnergyOnset) params(params method.Params) (OnsetParams, error) {
	p := OnsetParams{
		Frame:     defaultOnsetFrame,
		Threshold: defaultOnsetThreshold,
		Ratio:     defaultOnsetRatio,
		Cooldown:  defaultOnsetCooldown,
	}
	if err := method.DecodeParams(params, &p); err != nil {
		return p, err
	}
	switch {
	case p.Frame <= 0:
		return p, method.InvalidParamsf("frame must be positive, got %d", p.Frame)
	case p.Threshold < 0 || math.IsNaN(p.Threshold):
		return p, method.InvalidParamsf("threshold must not be negative, got %f", p.Threshold)
	case p.Ratio < 1 || math.IsNaN(p.Ratio):
		return p, method.InvalidParamsf("ratio must be at least 1, got %f", p.Ratio)
	case p.Cooldown < 0:
		return p, method.InvalidParamsf("cooldown must not be negative, got %d", p.Cooldown)
	}
	return p, nil
}

// Apply scans sig frame by frame. Each event is placed at the start of the
// triggering frame and scored with its RMS.
func (d *EnergyOnset) Apply(sig signal.Signal, params method.Params) (method.Result, error) {
	p, err := d.params(params)
	if err != nil {
		return method.Result{}, err
	}

	events := []method.Event{}
	lastEnergy := 0.0
	skip := 0
	for start := 0; start < len(sig.Samples); start += p.Frame {
		end := min(start+p.Frame, len(sig.Samples))
		energy := rms(sig.Samples[start:end])

		rising := lastEnergy == 0 || energy/lastEnergy > p.Ratio
		if skip == 0 && energy > p.Threshold && rising {
			events = append(events, method.Event{
				Index: start,
				Time:  float64(start) / sig.SampleRate,
				Score: energy,
			})
			skip = p.Cooldown
		} else if skip > 0 {
			skip--
		}

		lastEnergy = energy
	}

	return method.Detected(events), nil
}

// rms calculates the root mean square of frame.
func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sumSquare float64
	for _, v := range frame {
		sumSquare += v * v
	}
	return math.Sqrt(sumSquare / float64(len(frame)))
}
