// SPDX-License-Identifier: MIT
package signal

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 8000

func TestSignalCloneIsDeep(t *testing.T) {
	s := New([]float64{0.1, 0.2, 0.3}, testSampleRate)
	c := s.Clone()
	require.True(t, s.Equal(c))

	c.Samples[0] = 0.9
	assert.InDelta(t, 0.1, s.Samples[0], 0, "clone shares backing array")
	assert.False(t, s.Equal(c))
}

func TestSignalEqual(t *testing.T) {
	tests := []struct {
		desc string
		a, b Signal
		want bool
	}{
		{"Identical", New([]float64{1, 2}, 10), New([]float64{1, 2}, 10), true},
		{"Different rate", New([]float64{1, 2}, 10), New([]float64{1, 2}, 20), false},
		{"Different length", New([]float64{1, 2}, 10), New([]float64{1}, 10), false},
		{"Different value", New([]float64{1, 2}, 10), New([]float64{1, 3}, 10), false},
		{"NaN at same index", New([]float64{math.NaN()}, 10), New([]float64{math.NaN()}, 10), true},
		{"Both empty", New(nil, 10), New([]float64{}, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestSignalValidate(t *testing.T) {
	assert.NoError(t, New([]float64{0, 0.5}, testSampleRate).Validate())
	assert.ErrorIs(t, New([]float64{0}, 0).Validate(), ErrInvalidSignal)
	assert.ErrorIs(t, New([]float64{math.Inf(1)}, testSampleRate).Validate(), ErrInvalidSignal)
	assert.ErrorIs(t, New([]float64{math.NaN()}, testSampleRate).Validate(), ErrInvalidSignal)
}

func TestSignalDuration(t *testing.T) {
	s := New(make([]float64, testSampleRate/2), testSampleRate)
	assert.Equal(t, 500*time.Millisecond, s.Duration())
	assert.Equal(t, time.Duration(0), New(make([]float64, 10), 0).Duration())
}

func TestAddNoiseIsSeededAndNonMutating(t *testing.T) {
	clean := Sine(1024, testSampleRate, 440, 0.5)
	original := clean.Clone()

	a := AddNoise(clean, 0.1, 42)
	b := AddNoise(clean, 0.1, 42)
	c := AddNoise(clean, 0.1, 43)

	assert.True(t, clean.Equal(original), "AddNoise modified its input")
	assert.True(t, a.Equal(b), "same seed produced different noise")
	assert.False(t, a.Equal(c), "different seeds produced identical noise")
	assert.True(t, AddNoise(clean, 0, 1).Equal(clean))
}

func TestImpulses(t *testing.T) {
	s := Impulses(10, testSampleRate, []int{-1, 2, 7, 10}, 0.8)
	want := []float64{0, 0, 0.8, 0, 0, 0, 0, 0.8, 0, 0}
	assert.Equal(t, want, s.Samples)
}

func TestSyntheticGenerate(t *testing.T) {
	sy := Synthetic{
		Frequency:  440,
		Duration:   250 * time.Millisecond,
		SampleRate: testSampleRate,
		Impulses:   []int{100},
	}
	s, err := sy.Generate()
	require.NoError(t, err)
	assert.Equal(t, testSampleRate/4, s.Len())
	assert.Greater(t, s.Samples[100], 0.9)

	_, err = Synthetic{Duration: time.Second}.Generate()
	assert.ErrorIs(t, err, ErrInvalidSignal)

	_, err = Synthetic{SampleRate: testSampleRate}.Generate()
	assert.ErrorIs(t, err, ErrInvalidSignal)
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := Sine(2048, testSampleRate, 440, 0.5)

	require.NoError(t, WriteWAV(path, in, DefaultBitDepth))

	out, err := ReadWAV(path)
	require.NoError(t, err)
	assert.InDelta(t, testSampleRate, out.SampleRate, 0)
	require.Equal(t, in.Len(), out.Len())

	// 16-bit quantisation error is at most half an LSB.
	for i := range in.Samples {
		if math.Abs(in.Samples[i]-out.Samples[i]) > 1.0/32768 {
			t.Fatalf("sample %d: got %f, want %f", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestReadWAV8BitIsUnsigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcm8.wav")
	file, err := os.Create(path)
	require.NoError(t, err)

	encoder := wav.NewEncoder(file, testSampleRate, 8, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: testSampleRate},
		Data:           []int{128, 128, 0, 192, 255},
		SourceBitDepth: 8,
	}))
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())

	out, err := ReadWAV(path)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, -1, 0.5, 127.0 / 128}, out.Samples, 1e-12)
}

func TestWAVRoundTrip8Bit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone8.wav")
	in := Sine(512, testSampleRate, 440, 0.5)

	require.NoError(t, WriteWAV(path, in, 8))

	out, err := ReadWAV(path)
	require.NoError(t, err)
	require.Equal(t, in.Len(), out.Len())
	for i := range in.Samples {
		if math.Abs(in.Samples[i]-out.Samples[i]) > 1.0/256 {
			t.Fatalf("sample %d: got %f, want %f", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestWAVErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadWAV(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)

	err = WriteWAV(filepath.Join(dir, "bad.wav"), New([]float64{0}, testSampleRate), 12)
	assert.ErrorContains(t, err, "unsupported bit depth")

	err = WriteWAV(filepath.Join(dir, "bad.wav"), New([]float64{0}, 0), DefaultBitDepth)
	assert.ErrorIs(t, err, ErrInvalidSignal)

	err = WriteWAV("/nonexistent/path/file.wav", New([]float64{0}, testSampleRate), DefaultBitDepth)
	assert.Error(t, err)
}
