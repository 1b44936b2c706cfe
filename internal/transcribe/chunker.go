package transcribe

import "fmt"

// Chunker feeds an audio buffer through a Predictor in fixed-length,
// overlapping windows and stitches the per-chunk grids into one continuous
// timeline. The predictor is injected so the driver can be exercised with a
// fake model.
type Chunker struct {
	predictor Predictor
	chunkSize int
	hopSize   int
}

// NewChunker builds a Chunker. Zero chunkSize/hopSize select the model
// defaults (ChunkSize and 50% overlap).
func NewChunker(p Predictor, chunkSize, hopSize int) *Chunker {
	if chunkSize == 0 {
		chunkSize = ChunkSize
	}
	if hopSize == 0 {
		hopSize = chunkSize / 2
	}
	return &Chunker{
		predictor: p,
		chunkSize: chunkSize,
		hopSize:   hopSize,
	}
}

// Run splits samples into chunks, runs inference per chunk and concatenates
// the resulting grids along the frame axis. The overlap between consecutive
// chunks is kept as-is: stitching is a straight concatenation, not a
// cross-fade or deduplication. Any predictor error aborts the whole run; no
// partial grids are returned.
func (c *Chunker) Run(samples []float64) (*Prediction, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}

	// Short input: zero-pad to one full chunk.
	if len(samples) < c.chunkSize {
		return c.predictPadded(samples)
	}

	var stitched Prediction
	chunks := 0
	for start := 0; start+c.chunkSize <= len(samples); start += c.hopSize {
		pred, err := c.predictChunk(samples[start : start+c.chunkSize])
		if err != nil {
			return nil, fmt.Errorf("chunk at offset %d: %w", start, err)
		}
		stitched.Note = append(stitched.Note, pred.Note...)
		stitched.Onset = append(stitched.Onset, pred.Onset...)
		stitched.Contour = append(stitched.Contour, pred.Contour...)
		chunks++
	}

	// Hop stepped past the buffer without producing a chunk; fall back to the
	// single padded chunk so at least one inference call happens.
	if chunks == 0 {
		return c.predictPadded(samples)
	}

	return &stitched, nil
}

func (c *Chunker) predictPadded(samples []float64) (*Prediction, error) {
	chunk := make([]float64, c.chunkSize)
	copy(chunk, samples)
	pred, err := c.predictChunk(chunk)
	if err != nil {
		return nil, fmt.Errorf("padded chunk: %w", err)
	}
	return pred, nil
}

func (c *Chunker) predictChunk(chunk []float64) (*Prediction, error) {
	pred, err := c.predictor.Predict(chunk)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if err := validateGrids(pred); err != nil {
		return nil, err
	}
	return pred, nil
}

// validateGrids checks that the three grids of a prediction agree on frame
// count and carry the expected pitch-bin count. A wrong shape is a
// configuration error, not a transient fault.
func validateGrids(p *Prediction) error {
	if p == nil || len(p.Note) == 0 {
		return fmt.Errorf("%w: empty prediction", ErrMalformedGrids)
	}
	if len(p.Onset) != len(p.Note) || len(p.Contour) != len(p.Note) {
		return fmt.Errorf("%w: frame counts differ (note=%d onset=%d contour=%d)",
			ErrMalformedGrids, len(p.Note), len(p.Onset), len(p.Contour))
	}
	for _, plane := range [][][]float64{p.Note, p.Onset, p.Contour} {
		for _, row := range plane {
			if len(row) != NumPitchBins {
				return fmt.Errorf("%w: expected %d pitch bins, got %d",
					ErrMalformedGrids, NumPitchBins, len(row))
			}
		}
	}
	return nil
}
