// Package features computes scalar audio descriptors used for diagnostic
// output alongside a transcription: tempo, spectral shape, energy, pitch
// class and cepstral summaries. It reads the raw buffer only and never
// interacts with note segmentation.
package features

import (
	"errors"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// STFT analysis parameters for the descriptor set.
const (
	WindowSize = 2048
	HopSize    = 512
)

var ErrEmptyBuffer = errors.New("audio buffer is empty")

// Summary is the fixed record of descriptors computed from one buffer.
type Summary struct {
	Tempo                float64     // estimated tempo in BPM
	NumBeats             int         // estimated beat count over the buffer
	SpectralCentroidMean float64     // Hz
	SpectralCentroidStd  float64     // Hz
	ZeroCrossingRateMean float64     // fraction of sign changes per frame
	RMSEnergyMean        float64     //
	RMSEnergyStd         float64     //
	ChromaMean           [12]float64 // mean energy per pitch class C..B
	MFCCMean             [13]float64 // mean cepstral coefficients
}

// Summarize computes the full descriptor record for a mono buffer.
func Summarize(samples []float64, sampleRate int) (*Summary, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	spec := stft(samples, WindowSize, HopSize)

	s := &Summary{}
	centroids := spectralCentroids(spec, sampleRate)
	s.SpectralCentroidMean, s.SpectralCentroidStd = meanStd(centroids)

	s.ZeroCrossingRateMean, _ = meanStd(zeroCrossingRates(samples, WindowSize, HopSize))

	rms := rmsEnergies(samples, WindowSize, HopSize)
	s.RMSEnergyMean, s.RMSEnergyStd = meanStd(rms)

	s.ChromaMean = chromaMean(spec, sampleRate)
	s.MFCCMean = mfccMean(spec, sampleRate)

	duration := float64(len(samples)) / float64(sampleRate)
	s.Tempo = EstimateTempo(spec, sampleRate, HopSize)
	if s.Tempo > 0 {
		s.NumBeats = int(duration * s.Tempo / 60.0)
	}

	return s, nil
}

// stft computes a time-major magnitude spectrogram with a Hamming window.
// Buffers shorter than one window are zero-padded to a single frame.
func stft(samples []float64, windowSize, hopSize int) [][]float64 {
	if len(samples) < windowSize {
		padded := make([]float64, windowSize)
		copy(padded, samples)
		samples = padded
	}

	win := window.Hamming(windowSize)
	var spec [][]float64
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		frame := make([]float64, windowSize)
		copy(frame, samples[start:start+windowSize])
		for i := range frame {
			frame[i] *= win[i]
		}
		spectrum := fft.FFTReal(frame)
		mag := make([]float64, windowSize/2)
		for i := range mag {
			re := real(spectrum[i])
			im := imag(spectrum[i])
			mag[i] = math.Hypot(re, im)
		}
		spec = append(spec, mag)
	}
	return spec
}

// spectralCentroids returns the magnitude-weighted mean frequency per frame.
func spectralCentroids(spec [][]float64, sampleRate int) []float64 {
	freqRes := float64(sampleRate) / float64(WindowSize)
	out := make([]float64, 0, len(spec))
	for _, frame := range spec {
		var weighted, total float64
		for k, m := range frame {
			weighted += float64(k) * freqRes * m
			total += m
		}
		if total > 0 {
			out = append(out, weighted/total)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func zeroCrossingRates(samples []float64, windowSize, hopSize int) []float64 {
	var out []float64
	for start := 0; start+windowSize <= len(samples) || start == 0; start += hopSize {
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		frame := samples[start:end]
		if len(frame) < 2 {
			break
		}
		crossings := 0
		for i := 1; i < len(frame); i++ {
			if (frame[i-1] >= 0) != (frame[i] >= 0) {
				crossings++
			}
		}
		out = append(out, float64(crossings)/float64(len(frame)))
		if end == len(samples) {
			break
		}
	}
	return out
}

func rmsEnergies(samples []float64, windowSize, hopSize int) []float64 {
	var out []float64
	for start := 0; start+windowSize <= len(samples) || start == 0; start += hopSize {
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		frame := samples[start:end]
		if len(frame) == 0 {
			break
		}
		var sum float64
		for _, s := range frame {
			sum += s * s
		}
		out = append(out, math.Sqrt(sum/float64(len(frame))))
		if end == len(samples) {
			break
		}
	}
	return out
}

// chromaMean folds STFT bins onto the 12 pitch classes and averages over
// frames. Bin k maps to the pitch class of its center frequency.
func chromaMean(spec [][]float64, sampleRate int) [12]float64 {
	var acc [12]float64
	if len(spec) == 0 {
		return acc
	}
	freqRes := float64(sampleRate) / float64(WindowSize)
	for _, frame := range spec {
		for k, m := range frame {
			freq := float64(k) * freqRes
			if freq < 20 || m == 0 {
				continue
			}
			midi := 69.0 + 12.0*math.Log2(freq/440.0)
			pc := ((int(math.Round(midi)) % 12) + 12) % 12
			acc[pc] += m
		}
	}
	for i := range acc {
		acc[i] /= float64(len(spec))
	}
	return acc
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}
