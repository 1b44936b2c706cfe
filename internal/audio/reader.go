// Package audio decodes source media into the mono float buffer the
// transcription pipeline consumes.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

var (
	ErrInvalidWAV     = errors.New("not a valid WAV file")
	ErrNoSamples      = errors.New("WAV file contains no samples")
	ErrUnsupportedWAV = errors.New("unsupported WAV layout")
)

// ReadWAVAsFloat64 reads a PCM WAV file and returns mono samples normalized
// to [-1,1] plus the sample rate. Stereo input is downmixed by averaging the
// channels.
func ReadWAVAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding pcm: %w", err)
	}
	if len(buf.Data) == 0 {
		return nil, 0, ErrNoSamples
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(uint(bitDepth)-1))

	numChans := int(dec.NumChans)
	switch numChans {
	case 1:
		out := make([]float64, len(buf.Data))
		for i, s := range buf.Data {
			out[i] = float64(s) * scale
		}
		return out, int(dec.SampleRate), nil
	case 2:
		frames := len(buf.Data) / 2
		out := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			out[i] = (l + r) * 0.5
		}
		return out, int(dec.SampleRate), nil
	default:
		return nil, 0, fmt.Errorf("%w: %d channels", ErrUnsupportedWAV, numChans)
	}
}
