package transcribe

import "sort"

// NoteEvent is a discrete transcribed note. Times are in seconds; Pitch and
// Velocity use MIDI conventions (0-127). Events are immutable once emitted.
type NoteEvent struct {
	Pitch     int
	StartTime float64
	EndTime   float64
	Velocity  int
}

// NoteCollection is the union of per-pitch-bin note lists, ordered
// pitch-major then time-major by construction.
type NoteCollection []NoteEvent

// Duration returns the largest end time across all events, or 0 for an empty
// collection.
func (c NoteCollection) Duration() float64 {
	var max float64
	for _, n := range c {
		if n.EndTime > max {
			max = n.EndTime
		}
	}
	return max
}

// SortByTime reorders events chronologically, breaking ties by pitch.
func (c NoteCollection) SortByTime() {
	sort.Slice(c, func(i, j int) bool {
		if c[i].StartTime == c[j].StartTime {
			return c[i].Pitch < c[j].Pitch
		}
		return c[i].StartTime < c[j].StartTime
	})
}
