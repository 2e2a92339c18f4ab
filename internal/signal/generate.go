// SPDX-License-Identifier: MIT
package signal

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Sine generates size samples of a sine wave at frequency Hz.
func Sine(size int, sampleRate, frequency, amplitude float64) Signal {
	samples := make([]float64, size)
	for i := range samples {
		t := float64(i) / sampleRate
		samples[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return New(samples, sampleRate)
}

// Harmonics generates a fundamental plus its 2nd and 3rd harmonics
// (weights 0.5, 0.3, 0.2) scaled to amplitude.
func Harmonics(size int, sampleRate, fundamental, amplitude float64) Signal {
	samples := make([]float64, size)
	for i := range samples {
		t := float64(i) / sampleRate
		v := math.Sin(2*math.Pi*fundamental*t)*0.5 +
			math.Sin(2*math.Pi*2*fundamental*t)*0.3 +
			math.Sin(2*math.Pi*3*fundamental*t)*0.2
		samples[i] = v * amplitude
	}
	return New(samples, sampleRate)
}

// Impulses generates a silent signal with single-sample spikes of the given
// amplitude at each position. Positions outside the signal are ignored.
func Impulses(size int, sampleRate float64, positions []int, amplitude float64) Signal {
	samples := make([]float64, size)
	for _, p := range positions {
		if p >= 0 && p < size {
			samples[p] = amplitude
		}
	}
	return New(samples, sampleRate)
}

// AddNoise returns a copy of s with zero-mean Gaussian noise of the given
// standard deviation added. The same seed always yields the same noise.
func AddNoise(s Signal, stddev float64, seed uint64) Signal {
	out := s.Clone()
	if stddev <= 0 {
		return out
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out.Samples {
		out.Samples[i] += rng.NormFloat64() * stddev
	}
	return out
}

// Synthetic describes a generated signal. It is the YAML shape used by the
// configuration file.
type Synthetic struct {
	Frequency  float64       `yaml:"frequency"`   // Fundamental in Hz; 0 for silence.
	Harmonics  bool          `yaml:"harmonics"`   // Add 2nd and 3rd harmonics.
	Amplitude  float64       `yaml:"amplitude"`   // Peak amplitude of the tone.
	Duration   time.Duration `yaml:"duration"`    // Length of the signal.
	SampleRate float64       `yaml:"sample_rate"` // Sample rate in Hz.
	Noise      float64       `yaml:"noise"`       // Standard deviation of additive Gaussian noise.
	Seed       uint64        `yaml:"seed"`        // Noise seed.
	Impulses   []int         `yaml:"impulses"`    // Sample positions of unit spikes added on top.
}

// Generate builds the signal described by sy.
func (sy Synthetic) Generate() (Signal, error) {
	if sy.SampleRate <= 0 {
		return Signal{}, fmt.Errorf("%w: sample rate must be positive, got %f", ErrInvalidSignal, sy.SampleRate)
	}
	if sy.Duration <= 0 {
		return Signal{}, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidSignal, sy.Duration)
	}

	size := int(sy.Duration.Seconds() * sy.SampleRate)
	amplitude := sy.Amplitude
	if amplitude == 0 {
		amplitude = 0.5
	}

	var s Signal
	switch {
	case sy.Frequency <= 0:
		s = New(make([]float64, size), sy.SampleRate)
	case sy.Harmonics:
		s = Harmonics(size, sy.SampleRate, sy.Frequency, amplitude)
	default:
		s = Sine(size, sy.SampleRate, sy.Frequency, amplitude)
	}

	for _, p := range sy.Impulses {
		if p >= 0 && p < size {
			s.Samples[p] += 1.0
		}
	}

	return AddNoise(s, sy.Noise, sy.Seed), nil
}
