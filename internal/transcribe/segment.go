package transcribe

// span is a closed note interval in frame indices. End is exclusive except
// when the scan runs off the end of the grid, in which case the note is
// closed at the final frame index.
type span struct {
	start int
	end   int
}

// binScanner is the two-state note machine for a single pitch bin.
// Idle -> InNote when an onset or sustained activation appears;
// InNote -> Idle when the sustained activation drops. Every opened interval
// is eventually closed, either by step or by flush.
type binScanner struct {
	inNote bool
	start  int
}

// step advances the scanner by one frame and reports a closed span when the
// current note ends at this frame.
func (s *binScanner) step(frame int, noteActive, onsetActive bool) (span, bool) {
	if !s.inNote && (onsetActive || noteActive) {
		s.inNote = true
		s.start = frame
		return span{}, false
	}
	if s.inNote && !noteActive {
		s.inNote = false
		return span{start: s.start, end: frame}, true
	}
	return span{}, false
}

// flush closes a note still open at the end of the grid, clamped to the
// final frame index.
func (s *binScanner) flush(numFrames int) (span, bool) {
	if !s.inNote {
		return span{}, false
	}
	s.inNote = false
	return span{start: s.start, end: numFrames - 1}, true
}

// Segmenter turns stitched note/onset activation grids into discrete note
// events. The contour grid is not consulted.
type Segmenter struct {
	OnsetThreshold  float64 // onset activation binarization threshold
	FrameThreshold  float64 // sustained activation binarization threshold
	MinNoteDuration float64 // seconds; shorter segments are dropped
	FrameRate       float64 // frames per second of the grids
}

// Segment scans every pitch bin independently and unions the surviving
// segments. Simultaneous notes on different pitches remain independent
// entries; a bin can never re-trigger while a note is still open on it.
func (s *Segmenter) Segment(grids *Prediction) (NoteCollection, error) {
	if grids == nil || grids.Frames() == 0 {
		return nil, ErrEmptyGrid
	}

	numFrames := grids.Frames()
	notes := make(NoteCollection, 0)

	for bin := 0; bin < NumPitchBins; bin++ {
		var scanner binScanner
		for f := 0; f < numFrames; f++ {
			noteActive := grids.Note[f][bin] > s.FrameThreshold
			onsetActive := grids.Onset[f][bin] > s.OnsetThreshold
			if sp, closed := scanner.step(f, noteActive, onsetActive); closed {
				notes = s.appendSpan(notes, bin, sp)
			}
		}
		if sp, closed := scanner.flush(numFrames); closed {
			notes = s.appendSpan(notes, bin, sp)
		}
	}

	return notes, nil
}

// appendSpan converts a frame span to seconds, applies the minimum-duration
// filter and emits the note event.
func (s *Segmenter) appendSpan(notes NoteCollection, bin int, sp span) NoteCollection {
	start := float64(sp.start) / s.FrameRate
	end := float64(sp.end) / s.FrameRate
	if end-start < s.MinNoteDuration {
		return notes
	}
	return append(notes, NoteEvent{
		Pitch:     bin + MinMIDIPitch,
		StartTime: start,
		EndTime:   end,
		Velocity:  DefaultVelocity,
	})
}
