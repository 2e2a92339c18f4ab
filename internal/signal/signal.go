// SPDX-License-Identifier: MIT
/*
Package signal holds the data passed into and out of processing methods: a
mono sequence of float64 samples in the nominal range [-1, 1) together with
its sample rate. It also loads and stores signals as WAV files and
synthesises test signals.
*/
package signal

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// ErrInvalidSignal is returned by Validate for unusable signals.
var ErrInvalidSignal = errors.New("invalid signal")

// Signal is a mono sampled signal.
type Signal struct {
	Samples    []float64 // Sample values, nominally within [-1, 1).
	SampleRate float64   // Sample rate in Hz.
}

// Named pairs a signal with a label used in reports.
type Named struct {
	Name   string
	Signal Signal
}

// New creates a signal from samples. The slice is not copied.
func New(samples []float64, sampleRate float64) Signal {
	return Signal{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples.
func (s Signal) Len() int {
	return len(s.Samples)
}

// Duration returns the length of the signal in time, or zero when the
// sample rate is not positive.
func (s Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Samples)) / s.SampleRate * float64(time.Second))
}

// Clone returns a deep copy of s.
func (s Signal) Clone() Signal {
	return Signal{Samples: slices.Clone(s.Samples), SampleRate: s.SampleRate}
}

// Equal reports whether s and o have the same sample rate and identical
// samples. NaN samples compare equal to NaN at the same position.
func (s Signal) Equal(o Signal) bool {
	if s.SampleRate != o.SampleRate || len(s.Samples) != len(o.Samples) {
		return false
	}
	for i, v := range s.Samples {
		w := o.Samples[i]
		if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			return false
		}
	}
	return true
}

// Validate checks that the signal has a positive sample rate and only finite
// samples.
func (s Signal) Validate() error {
	if s.SampleRate <= 0 || math.IsNaN(s.SampleRate) || math.IsInf(s.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive, got %f", ErrInvalidSignal, s.SampleRate)
	}
	for i, v := range s.Samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidSignal, i)
		}
	}
	return nil
}
