// SPDX-License-Identifier: MIT
package methods

import (
	"math"
	"math/cmplx"

	"sigbench/internal/method"
	"sigbench/internal/signal"
	"sigbench/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectralGateID is the ID of the short-time spectral gate.
const SpectralGateID = "spectral_gate"

const (
	defaultSpectralThreshold = 0.05
	defaultSpectralFrame     = 1024
	minSpectralFrame         = 16
	maxSpectralFrame         = 1 << 20
)

// SpectralParams configures the spectral gate.
type SpectralParams struct {
	// Threshold is the fraction of the frame's peak bin magnitude below
	// which a bin is zeroed (0.0-1.0).
	Threshold float64 `mapstructure:"threshold"`
	// Window names the analysis/synthesis window, see ParseWindowFunc.
	Window string `mapstructure:"window"`
	// Frame is the FFT size. Values that are not a power of two are rounded up.
	Frame int `mapstructure:"frame"`
}

// SpectralGate removes low-magnitude spectral components frame by frame.
// Frames overlap by half and are recombined with weighted overlap-add, so a
// zero threshold reproduces the input.
type SpectralGate struct {
	method.Template
}

// NewSpectralGate constructs the spectral gate.
func NewSpectralGate() method.Method {
	return &SpectralGate{method.Template{MethodID: SpectralGateID, MethodTask: method.Denoising}}
}

// Parameters sweeps the threshold and the window shape.
func (g *SpectralGate) Parameters() []method.Params {
	return []method.Params{
		{"threshold": 0.01, "window": "hann"},
		{"threshold": 0.05, "window": "hann"},
		{"threshold": 0.05, "window": "blackman"},
	}
}

type spectralConfig struct {
	threshold float64
	window    WindowFunc
	frame     int
}

func (g *SpectralGate) params(params method.Params) (spectralConfig, error) {
	p := SpectralParams{
		Threshold: defaultSpectralThreshold,
		Window:    Hann.String(),
		Frame:     defaultSpectralFrame,
	}
	if err := method.DecodeParams(params, &p); err != nil {
		return spectralConfig{}, err
	}
	if p.Threshold < 0 || p.Threshold > 1 || math.IsNaN(p.Threshold) {
		return spectralConfig{}, method.InvalidParamsf("threshold must be within [0, 1], got %f", p.Threshold)
	}
	w, err := ParseWindowFunc(p.Window)
	if err != nil {
		return spectralConfig{}, method.InvalidParamsf("%v", err)
	}
	if p.Frame < minSpectralFrame {
		return spectralConfig{}, method.InvalidParamsf("frame must be at least %d, got %d", minSpectralFrame, p.Frame)
	}
	if p.Frame > maxSpectralFrame {
		return spectralConfig{}, method.InvalidParamsf("frame must be at most %d, got %d", maxSpectralFrame, p.Frame)
	}
	if !bitint.IsPowerOfTwo(p.Frame) {
		p.Frame = bitint.NextPowerOfTwo(p.Frame)
	}
	return spectralConfig{threshold: p.Threshold, window: w, frame: p.Frame}, nil
}

// Apply gates sig in the frequency domain.
func (g *SpectralGate) Apply(sig signal.Signal, params method.Params) (method.Result, error) {
	cfg, err := g.params(params)
	if err != nil {
		return method.Result{}, err
	}

	n := len(sig.Samples)
	if n == 0 {
		return method.Denoised(sig.Clone()), nil
	}

	frame := cfg.frame
	hop := frame / 2

	// Pad half a frame in front and a full frame behind so every input
	// sample is covered by two frames.
	padded := make([]float64, hop+n+frame)
	copy(padded[hop:], sig.Samples)

	fft := fourier.NewFFT(frame)
	win := windowCoefficients(frame, cfg.window)
	input := make([]float64, frame)
	coeffs := make([]complex128, frame/2+1)
	frameOut := make([]float64, frame)
	acc := make([]float64, len(padded))
	weight := make([]float64, len(padded))
	invN := 1.0 / float64(frame)

	for start := 0; start+frame <= len(padded); start += hop {
		for i := range frame {
			input[i] = padded[start+i] * win[i]
		}

		fft.Coefficients(coeffs, input)
		gateBins(coeffs, cfg.threshold)
		fft.Sequence(frameOut, coeffs)

		for i := range frame {
			// Sequence is unnormalised: scale by 1/N before synthesis windowing.
			acc[start+i] += frameOut[i] * invN * win[i]
			weight[start+i] += win[i] * win[i]
		}
	}

	out := make([]float64, n)
	for i := range out {
		if w := weight[hop+i]; w > 1e-12 {
			out[i] = acc[hop+i] / w
		}
	}

	return method.Denoised(signal.New(out, sig.SampleRate)), nil
}

// gateBins zeroes every bin whose magnitude is below threshold times the
// largest magnitude in coeffs.
func gateBins(coeffs []complex128, threshold float64) {
	if threshold <= 0 {
		return
	}
	var peak float64
	for _, c := range coeffs {
		peak = math.Max(peak, cmplx.Abs(c))
	}
	limit := threshold * peak
	for i, c := range coeffs {
		if cmplx.Abs(c) < limit {
			coeffs[i] = 0
		}
	}
}
