package transcribe

// Analysis constants fixed by the inference model's input contract.
const (
	// SampleRate is the sample rate the model was trained on.
	SampleRate = 22050
	// ChunkSize is the exact number of samples the model accepts per call
	// (about 1.99 seconds at 22050 Hz).
	ChunkSize = 43844
	// NumPitchBins covers the 88 piano keys A0..C8.
	NumPitchBins = 88
	// FrameRate is the model's output frame rate in frames per second.
	FrameRate = 22050.0 / 256.0 // ~86.13
	// MinMIDIPitch is the MIDI note number of pitch bin 0 (A0).
	MinMIDIPitch = 21
)

// Prediction holds the three frame-indexed activation grids returned by the
// model for one chunk. Each grid is indexed [frame][pitchBin] with values in
// [0,1]. All three grids share the same dimensions.
type Prediction struct {
	Note    [][]float64
	Onset   [][]float64
	Contour [][]float64
}

// Frames returns the frame count of the prediction.
func (p *Prediction) Frames() int {
	return len(p.Note)
}

// Predictor maps a fixed-length audio chunk to per-frame, per-pitch
// activation grids. Implementations must be deterministic for a given chunk;
// the caller treats any error as fatal to the whole transcription.
type Predictor interface {
	Predict(chunk []float64) (*Prediction, error)
}
