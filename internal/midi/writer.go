// Package midi assembles transcribed note events into a Standard MIDI File.
package midi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/priyankverma/notescribe/internal/transcribe"
)

const (
	TicksPerQuarter = 960
	DefaultTempo    = 120.0 // BPM, used when no estimate is available
	pianoProgram    = 0
)

// WriteOptions tunes the MIDI container assembly.
type WriteOptions struct {
	Tempo float64 // BPM; zero selects DefaultTempo
}

type tickEvent struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// WriteFile renders the note collection as a single-track piano SMF at path.
// An empty collection still produces a valid (silent) file.
func WriteFile(path string, notes transcribe.NoteCollection, opts WriteOptions) error {
	tempo := opts.Tempo
	if tempo <= 0 {
		tempo = DefaultTempo
	}

	events := make([]tickEvent, 0, len(notes)*2)
	for _, n := range notes {
		if n.Pitch < 0 || n.Pitch > 127 {
			return fmt.Errorf("note pitch %d outside MIDI range", n.Pitch)
		}
		key := uint8(n.Pitch)
		vel := uint8(n.Velocity)
		events = append(events,
			tickEvent{tick: secondsToTicks(n.StartTime, tempo), msg: midi.NoteOn(0, key, vel)},
			tickEvent{tick: secondsToTicks(n.EndTime, tempo), off: true, msg: midi.NoteOff(0, key)},
		)
	}
	// Note-offs sort before note-ons at the same tick so back-to-back
	// re-triggers on one pitch do not overlap.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick == events[j].tick {
			return events[i].off && !events[j].off
		}
		return events[i].tick < events[j].tick
	})

	var track smf.Track
	track.Add(0, smf.MetaTempo(tempo))
	track.Add(0, midi.ProgramChange(0, pianoProgram))

	var lastTick uint32
	for _, ev := range events {
		track.Add(ev.tick-lastTick, ev.msg)
		lastTick = ev.tick
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(track); err != nil {
		return fmt.Errorf("adding track: %w", err)
	}

	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("writing midi file: %w", err)
	}
	return nil
}

func secondsToTicks(seconds, tempo float64) uint32 {
	return uint32(math.Round(seconds * tempo / 60.0 * TicksPerQuarter))
}

// Info summarizes a Standard MIDI File.
type Info struct {
	NumTracks int
	NumNotes  int
	PitchMin  int
	PitchMax  int
}

// ReadInfo parses an SMF and reports track and note statistics.
func ReadInfo(path string) (info *Info, err error) {
	// The SMF parser panics on some malformed inputs.
	defer func() {
		if r, ok := recover().(string); ok {
			err = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	s, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("parsing midi file: %w", err)
	}

	info = &Info{NumTracks: len(s.Tracks), PitchMin: 128, PitchMax: -1}
	for _, track := range s.Tracks {
		for _, ev := range track {
			var ch, key, vel uint8
			if ev.Message.GetNoteStart(&ch, &key, &vel) {
				info.NumNotes++
				if int(key) < info.PitchMin {
					info.PitchMin = int(key)
				}
				if int(key) > info.PitchMax {
					info.PitchMax = int(key)
				}
			}
		}
	}
	if info.NumNotes == 0 {
		info.PitchMin, info.PitchMax = 0, 0
	}
	return info, nil
}
