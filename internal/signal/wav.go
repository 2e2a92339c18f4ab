// SPDX-License-Identifier: MIT
package signal

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultBitDepth is the PCM bit depth used when writing WAV files.
const DefaultBitDepth = 16

var errNotWAV = errors.New("not a valid WAV file")

// ReadWAV decodes a PCM WAV file into a Signal. Only the first channel is
// kept; integer samples are normalised to [-1, 1). 8-bit PCM is unsigned
// with silence at 128.
func ReadWAV(path string) (Signal, error) {
	file, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return Signal{}, fmt.Errorf("%s: %w", path, errNotWAV)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	channels := int(decoder.NumChans)
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		return Signal{}, fmt.Errorf("%s: unknown bit depth", path)
	}

	full := math.Exp2(float64(bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		offset = full
	}
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		samples[i] = (float64(buf.Data[i*channels]) - offset) / full
	}

	return New(samples, float64(decoder.SampleRate)), nil
}

// WriteWAV encodes sig as a mono PCM WAV file with the given bit depth
// (8, 16, 24 or 32). Samples outside [-1, 1] are clipped.
func WriteWAV(path string, sig Signal, bitDepth int) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(file, int(sig.SampleRate), bitDepth, 1, 1)

	full := math.Exp2(float64(bitDepth - 1))
	offset := 0
	if bitDepth == 8 {
		offset = int(full)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(sig.SampleRate),
		},
		Data:           make([]int, len(sig.Samples)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range sig.Samples {
		v = math.Max(-1, math.Min(1, v))
		buf.Data[i] = int(math.Max(-full, math.Min(full-1, math.Round(v*full)))) + offset
	}

	if err := encoder.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalise %s: %w", path, err)
	}
	return file.Close()
}
