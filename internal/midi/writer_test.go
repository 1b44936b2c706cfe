package midi

import (
	"path/filepath"
	"testing"

	"github.com/priyankverma/notescribe/internal/transcribe"
)

func TestWriteFileAndReadInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")

	notes := transcribe.NoteCollection{
		{Pitch: 60, StartTime: 0.0, EndTime: 0.5, Velocity: 80},
		{Pitch: 64, StartTime: 0.5, EndTime: 1.0, Velocity: 80},
		{Pitch: 67, StartTime: 0.5, EndTime: 1.5, Velocity: 80},
	}

	if err := WriteFile(path, notes, WriteOptions{Tempo: 120}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if info.NumNotes != 3 {
		t.Errorf("Expected 3 notes, got %d", info.NumNotes)
	}
	if info.PitchMin != 60 || info.PitchMax != 67 {
		t.Errorf("Expected pitch range [60,67], got [%d,%d]", info.PitchMin, info.PitchMax)
	}
}

func TestWriteFileEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mid")

	if err := WriteFile(path, nil, WriteOptions{}); err != nil {
		t.Fatalf("WriteFile failed for empty collection: %v", err)
	}

	info, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if info.NumNotes != 0 {
		t.Errorf("Expected 0 notes, got %d", info.NumNotes)
	}
}

func TestWriteFileRejectsOutOfRangePitch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mid")
	notes := transcribe.NoteCollection{{Pitch: 200, StartTime: 0, EndTime: 1, Velocity: 80}}

	if err := WriteFile(path, notes, WriteOptions{}); err == nil {
		t.Error("Expected error for pitch outside MIDI range")
	}
}

func TestSecondsToTicks(t *testing.T) {
	// At 120 BPM a quarter note lasts 0.5s, so 1s is two quarters.
	if got := secondsToTicks(1.0, 120); got != 2*TicksPerQuarter {
		t.Errorf("Expected %d ticks, got %d", 2*TicksPerQuarter, got)
	}
	if got := secondsToTicks(0, 120); got != 0 {
		t.Errorf("Expected 0 ticks, got %d", got)
	}
}

func TestReadInfoMissingFile(t *testing.T) {
	if _, err := ReadInfo(filepath.Join(t.TempDir(), "nope.mid")); err == nil {
		t.Error("Expected error for missing file")
	}
}
