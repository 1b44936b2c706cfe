package transcribe

import (
	"errors"
	"testing"
)

// fakePredictor returns fixed-size zero grids and records every chunk it was
// handed, so driver behavior can be asserted without a real model.
type fakePredictor struct {
	framesPerChunk int
	chunks         [][]float64
	err            error
	badShape       bool
}

func (f *fakePredictor) Predict(chunk []float64) (*Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := make([]float64, len(chunk))
	copy(copied, chunk)
	f.chunks = append(f.chunks, copied)

	bins := NumPitchBins
	if f.badShape {
		bins = NumPitchBins - 1
	}
	pred := &Prediction{}
	for i := 0; i < f.framesPerChunk; i++ {
		pred.Note = append(pred.Note, make([]float64, bins))
		pred.Onset = append(pred.Onset, make([]float64, bins))
		pred.Contour = append(pred.Contour, make([]float64, bins))
	}
	return pred, nil
}

func TestChunkerShortBufferSinglePaddedChunk(t *testing.T) {
	fake := &fakePredictor{framesPerChunk: 4}
	chunker := NewChunker(fake, 100, 50)

	samples := make([]float64, 30)
	for i := range samples {
		samples[i] = 0.5
	}

	grids, err := chunker.Run(samples)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fake.chunks) != 1 {
		t.Fatalf("Expected exactly 1 predict call, got %d", len(fake.chunks))
	}
	chunk := fake.chunks[0]
	if len(chunk) != 100 {
		t.Errorf("Expected padded chunk of 100 samples, got %d", len(chunk))
	}
	for i := 30; i < len(chunk); i++ {
		if chunk[i] != 0 {
			t.Errorf("Expected zero padding at sample %d, got %f", i, chunk[i])
			break
		}
	}
	if grids.Frames() != 4 {
		t.Errorf("Expected 4 stitched frames, got %d", grids.Frames())
	}
}

func TestChunkerOverlapIsConcatenatedNotDeduplicated(t *testing.T) {
	// Buffer of exactly C+H with 50% overlap yields two chunks. The stitched
	// grid keeps both chunks' frames in full: the overlapping region is NOT
	// removed or cross-faded, so the total frame count is the plain sum.
	fake := &fakePredictor{framesPerChunk: 8}
	chunker := NewChunker(fake, 100, 50)

	samples := make([]float64, 150)
	grids, err := chunker.Run(samples)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fake.chunks) != 2 {
		t.Fatalf("Expected exactly 2 chunks, got %d", len(fake.chunks))
	}
	if grids.Frames() != 16 {
		t.Errorf("Expected 16 stitched frames (8+8, overlap kept), got %d", grids.Frames())
	}
	if len(grids.Onset) != 16 || len(grids.Contour) != 16 {
		t.Errorf("Onset/contour planes not stitched alongside note plane")
	}
}

func TestChunkerChunkOffsets(t *testing.T) {
	fake := &fakePredictor{framesPerChunk: 2}
	chunker := NewChunker(fake, 4, 2)

	samples := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	if _, err := chunker.Run(samples); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Offsets 0, 2, 4: three chunks fit an 8-sample buffer.
	if len(fake.chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(fake.chunks))
	}
	if fake.chunks[1][0] != 2 {
		t.Errorf("Second chunk should start at sample 2, got %f", fake.chunks[1][0])
	}
	if fake.chunks[2][0] != 4 {
		t.Errorf("Third chunk should start at sample 4, got %f", fake.chunks[2][0])
	}
}

func TestChunkerEmptyBuffer(t *testing.T) {
	chunker := NewChunker(&fakePredictor{framesPerChunk: 1}, 100, 50)
	if _, err := chunker.Run(nil); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("Expected ErrEmptyBuffer, got %v", err)
	}
}

func TestChunkerPredictorFailureIsFatal(t *testing.T) {
	boom := errors.New("model exploded")
	chunker := NewChunker(&fakePredictor{err: boom}, 100, 50)

	samples := make([]float64, 150)
	grids, err := chunker.Run(samples)
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped predictor error, got %v", err)
	}
	if grids != nil {
		t.Error("Expected no partial grids on failure")
	}
}

func TestChunkerRejectsMalformedGrids(t *testing.T) {
	chunker := NewChunker(&fakePredictor{framesPerChunk: 4, badShape: true}, 100, 50)

	samples := make([]float64, 150)
	if _, err := chunker.Run(samples); !errors.Is(err, ErrMalformedGrids) {
		t.Errorf("Expected ErrMalformedGrids, got %v", err)
	}
}

func TestValidateGridsMismatchedPlanes(t *testing.T) {
	pred := &Prediction{
		Note:    [][]float64{make([]float64, NumPitchBins)},
		Onset:   [][]float64{},
		Contour: [][]float64{make([]float64, NumPitchBins)},
	}
	if err := validateGrids(pred); !errors.Is(err, ErrMalformedGrids) {
		t.Errorf("Expected ErrMalformedGrids for mismatched planes, got %v", err)
	}
}
