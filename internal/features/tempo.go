package features

import "scientificgo.org/fft"

// Tempo search range in BPM.
const (
	minTempo = 30.0
	maxTempo = 300.0
)

// EstimateTempo estimates the dominant tempo from a magnitude spectrogram by
// autocorrelating the onset-strength envelope (positive spectral flux per
// frame) and picking the strongest lag inside the tempo search range.
// Returns 0 when the input is too short to estimate.
func EstimateTempo(spec [][]float64, sampleRate, hopSize int) float64 {
	envelope := onsetStrength(spec)
	if len(envelope) < 4 {
		return 0
	}

	ac := autocorrelate(envelope)

	frameDur := float64(hopSize) / float64(sampleRate)
	minLag := int(60.0 / (maxTempo * frameDur))
	maxLag := int(60.0 / (minTempo * frameDur))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(ac) {
		maxLag = len(ac) - 1
	}
	if minLag >= maxLag {
		return 0
	}

	bestLag, bestVal := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if ac[lag] > bestVal {
			bestVal = ac[lag]
			bestLag = lag
		}
	}
	if bestLag == 0 || bestVal <= 0 {
		return 0
	}
	return 60.0 / (float64(bestLag) * frameDur)
}

// onsetStrength is the half-wave rectified spectral flux: the summed positive
// magnitude increase per frame, mean-subtracted.
func onsetStrength(spec [][]float64) []float64 {
	if len(spec) < 2 {
		return nil
	}
	env := make([]float64, len(spec)-1)
	for t := 1; t < len(spec); t++ {
		var flux float64
		for k := range spec[t] {
			d := spec[t][k] - spec[t-1][k]
			if d > 0 {
				flux += d
			}
		}
		env[t-1] = flux
	}

	var mean float64
	for _, e := range env {
		mean += e
	}
	mean /= float64(len(env))
	for i := range env {
		env[i] -= mean
	}
	return env
}

// autocorrelate computes the autocorrelation of x via FFT (Wiener-Khinchin):
// inverse transform of the power spectrum, zero-padded to avoid circular
// wraparound.
func autocorrelate(x []float64) []float64 {
	n := len(x)
	size := nextPow2(2 * n)

	buf := make([]complex128, size)
	for i, v := range x {
		buf[i] = complex(v, 0)
	}

	spectrum := fft.Fft(buf, false)
	for i, c := range spectrum {
		m := real(c)*real(c) + imag(c)*imag(c)
		spectrum[i] = complex(m, 0)
	}
	inv := fft.Fft(spectrum, true)

	ac := make([]float64, n)
	norm := real(inv[0])
	if norm == 0 {
		return ac
	}
	for i := 0; i < n; i++ {
		ac[i] = real(inv[i]) / norm
	}
	return ac
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
