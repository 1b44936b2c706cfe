package features

import (
	"errors"
	"math"
	"testing"
)

// sine generates a mono sine wave.
func sine(freq, amp float64, sampleRate int, duration float64) []float64 {
	n := int(duration * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestSummarizeEmptyBuffer(t *testing.T) {
	if _, err := Summarize(nil, 22050); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("Expected ErrEmptyBuffer, got %v", err)
	}
}

func TestSummarizeInvalidSampleRate(t *testing.T) {
	if _, err := Summarize([]float64{0.1}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestSummarizePureTone(t *testing.T) {
	const sr = 22050
	samples := sine(440, 0.5, sr, 2.0)

	s, err := Summarize(samples, sr)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	// Centroid of a 440 Hz tone sits near 440 Hz (window leakage smears it).
	if s.SpectralCentroidMean < 300 || s.SpectralCentroidMean > 700 {
		t.Errorf("Expected centroid near 440 Hz, got %.1f", s.SpectralCentroidMean)
	}

	// A sine crosses zero twice per cycle: 2*440/22050 ~ 0.040 per sample.
	if s.ZeroCrossingRateMean < 0.03 || s.ZeroCrossingRateMean > 0.05 {
		t.Errorf("Expected ZCR ~0.04, got %.4f", s.ZeroCrossingRateMean)
	}

	// RMS of a 0.5 amplitude sine is 0.5/sqrt(2) ~ 0.354.
	if math.Abs(s.RMSEnergyMean-0.354) > 0.05 {
		t.Errorf("Expected RMS ~0.354, got %.4f", s.RMSEnergyMean)
	}

	// 440 Hz is pitch class A (index 9 with C=0).
	best := 0
	for pc, v := range s.ChromaMean {
		if v > s.ChromaMean[best] {
			best = pc
		}
	}
	if best != 9 {
		t.Errorf("Expected chroma peak at pitch class 9 (A), got %d", best)
	}

	for i, c := range s.MFCCMean {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Errorf("MFCC coefficient %d is not finite: %f", i, c)
		}
	}
}

func TestSummarizeSilence(t *testing.T) {
	samples := make([]float64, 22050)

	s, err := Summarize(samples, 22050)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.RMSEnergyMean != 0 {
		t.Errorf("Silence should have zero RMS, got %f", s.RMSEnergyMean)
	}
	if s.Tempo != 0 {
		t.Errorf("Silence should have no tempo estimate, got %f", s.Tempo)
	}
	if s.NumBeats != 0 {
		t.Errorf("Silence should have no beats, got %d", s.NumBeats)
	}
}

func TestEstimateTempoClickTrack(t *testing.T) {
	const sr = 22050
	// 8 seconds of clicks at 120 BPM (every 0.5s).
	samples := make([]float64, 8*sr)
	for beat := 0; beat < 16; beat++ {
		start := beat * sr / 2
		for i := 0; i < 256 && start+i < len(samples); i++ {
			samples[start+i] = 0.9
		}
	}

	spec := stft(samples, WindowSize, HopSize)
	tempo := EstimateTempo(spec, sr, HopSize)

	// Lag quantization to STFT frames makes the estimate coarse.
	if tempo < 100 || tempo > 140 {
		t.Errorf("Expected tempo near 120 BPM, got %.1f", tempo)
	}
}

func TestEstimateTempoTooShort(t *testing.T) {
	spec := stft(make([]float64, 1000), WindowSize, HopSize)
	if tempo := EstimateTempo(spec, 22050, HopSize); tempo != 0 {
		t.Errorf("Expected zero tempo for too-short input, got %f", tempo)
	}
}

func TestMelFilterbankShape(t *testing.T) {
	filters := melFilterbank(22050, WindowSize/2)
	if len(filters) != numMelFilters {
		t.Fatalf("Expected %d filters, got %d", numMelFilters, len(filters))
	}
	for m, row := range filters {
		if len(row) != WindowSize/2 {
			t.Errorf("Filter %d has %d bins, expected %d", m, len(row), WindowSize/2)
		}
		for k, w := range row {
			if w < 0 || w > 1 {
				t.Errorf("Filter %d weight out of [0,1] at bin %d: %f", m, k, w)
			}
		}
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(mean-5.0) > 1e-9 {
		t.Errorf("Expected mean 5.0, got %f", mean)
	}
	if math.Abs(std-2.0) > 1e-9 {
		t.Errorf("Expected std 2.0, got %f", std)
	}

	mean, std = meanStd(nil)
	if mean != 0 || std != 0 {
		t.Errorf("Empty input should give 0,0; got %f,%f", mean, std)
	}
}
