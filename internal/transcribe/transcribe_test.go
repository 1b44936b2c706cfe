package transcribe

import (
	"errors"
	"testing"
)

func TestTranscribeValidatesThresholds(t *testing.T) {
	samples := make([]float64, 200)
	fake := &fakePredictor{framesPerChunk: 4}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative onset", Config{OnsetThreshold: -0.5, FrameThreshold: 0.3}},
		{"onset above one", Config{OnsetThreshold: 1.5, FrameThreshold: 0.3}},
		{"frame above one", Config{OnsetThreshold: 0.5, FrameThreshold: 2.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transcribe(fake, samples, tt.cfg)
			if !errors.Is(err, ErrInvalidThreshold) {
				t.Errorf("Expected ErrInvalidThreshold, got %v", err)
			}
		})
	}
	if len(fake.chunks) != 0 {
		t.Error("Validation must happen before any inference call")
	}
}

func TestTranscribeEmptyBuffer(t *testing.T) {
	_, err := Transcribe(&fakePredictor{framesPerChunk: 4}, nil, DefaultConfig())
	if !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("Expected ErrEmptyBuffer, got %v", err)
	}
}

func TestTranscribeZeroConfigUsesDefaults(t *testing.T) {
	fake := &fakePredictor{framesPerChunk: 10}
	samples := make([]float64, 50) // shorter than the default chunk size

	notes, err := Transcribe(fake, samples, Config{})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if len(fake.chunks) != 1 {
		t.Fatalf("Expected a single padded chunk, got %d", len(fake.chunks))
	}
	if len(fake.chunks[0]) != ChunkSize {
		t.Errorf("Expected default chunk size %d, got %d", ChunkSize, len(fake.chunks[0]))
	}
	if len(notes) != 0 {
		t.Errorf("Silent input should transcribe to an empty collection, got %d notes", len(notes))
	}
}

// activePredictor lights up one pitch bin for every frame of every chunk.
type activePredictor struct {
	framesPerChunk int
	bin            int
}

func (p *activePredictor) Predict(chunk []float64) (*Prediction, error) {
	pred := &Prediction{}
	for i := 0; i < p.framesPerChunk; i++ {
		note := make([]float64, NumPitchBins)
		onset := make([]float64, NumPitchBins)
		note[p.bin] = 0.9
		if i == 0 {
			onset[p.bin] = 0.9
		}
		pred.Note = append(pred.Note, note)
		pred.Onset = append(pred.Onset, onset)
		pred.Contour = append(pred.Contour, make([]float64, NumPitchBins))
	}
	return pred, nil
}

func TestTranscribeEndToEnd(t *testing.T) {
	pred := &activePredictor{framesPerChunk: 20, bin: 48} // C5
	samples := make([]float64, 300)

	notes, err := Transcribe(pred, samples, Config{ChunkSize: 100, HopSize: 50})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected one continuous note, got %d", len(notes))
	}
	if notes[0].Pitch != 48+MinMIDIPitch {
		t.Errorf("Expected pitch %d, got %d", 48+MinMIDIPitch, notes[0].Pitch)
	}
	// 5 chunks of 20 frames each; note held to the end closes at frame 99.
	wantEnd := 99.0 / FrameRate
	if d := notes.Duration(); d != wantEnd {
		t.Errorf("Expected duration %.4fs, got %.4fs", wantEnd, d)
	}
}

func TestNoteCollectionDurationEmpty(t *testing.T) {
	var c NoteCollection
	if c.Duration() != 0 {
		t.Errorf("Empty collection should have zero duration, got %f", c.Duration())
	}
}

func TestNoteCollectionSortByTime(t *testing.T) {
	c := NoteCollection{
		{Pitch: 60, StartTime: 2.0, EndTime: 2.5},
		{Pitch: 64, StartTime: 0.5, EndTime: 1.0},
		{Pitch: 62, StartTime: 0.5, EndTime: 1.2},
	}
	c.SortByTime()
	if c[0].Pitch != 62 || c[1].Pitch != 64 || c[2].Pitch != 60 {
		t.Errorf("Unexpected order after sort: %+v", c)
	}
}
