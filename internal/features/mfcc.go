package features

import "math"

const (
	numMelFilters = 26
	numMFCC       = 13
)

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10, mel/2595.0) - 1.0)
}

// melFilterbank builds triangular filters spaced evenly on the mel scale,
// spanning 0 Hz to Nyquist. Each filter is a row of weights over the
// spectrogram's frequency bins.
func melFilterbank(sampleRate, numBins int) [][]float64 {
	nyquist := float64(sampleRate) / 2.0
	melMax := hzToMel(nyquist)

	// numMelFilters filters need numMelFilters+2 edge points.
	edges := make([]int, numMelFilters+2)
	for i := range edges {
		hz := melToHz(melMax * float64(i) / float64(numMelFilters+1))
		bin := int(hz / nyquist * float64(numBins))
		if bin >= numBins {
			bin = numBins - 1
		}
		edges[i] = bin
	}

	filters := make([][]float64, numMelFilters)
	for m := 0; m < numMelFilters; m++ {
		row := make([]float64, numBins)
		left, center, right := edges[m], edges[m+1], edges[m+2]
		for k := left; k < center; k++ {
			if center > left {
				row[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right && k < numBins; k++ {
			if right > center {
				row[k] = float64(right-k) / float64(right-center)
			}
		}
		filters[m] = row
	}
	return filters
}

// mfccMean computes mel-frequency cepstral coefficients per frame and
// averages them: mel filterbank energies, log compression, then a DCT-II.
func mfccMean(spec [][]float64, sampleRate int) [13]float64 {
	var acc [13]float64
	if len(spec) == 0 {
		return acc
	}

	filters := melFilterbank(sampleRate, len(spec[0]))
	const eps = 1e-10

	for _, frame := range spec {
		logMel := make([]float64, numMelFilters)
		for m, row := range filters {
			var energy float64
			for k, w := range row {
				if w != 0 {
					energy += w * frame[k] * frame[k]
				}
			}
			logMel[m] = math.Log(energy + eps)
		}
		for c := 0; c < numMFCC; c++ {
			var sum float64
			for m := 0; m < numMelFilters; m++ {
				sum += logMel[m] * math.Cos(math.Pi*float64(c)*(float64(m)+0.5)/float64(numMelFilters))
			}
			acc[c] += sum
		}
	}
	for c := range acc {
		acc[c] /= float64(len(spec))
	}
	return acc
}
