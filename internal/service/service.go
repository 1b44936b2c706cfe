// Package service orchestrates the full transcription pipeline: source
// acquisition, decoding, inference, segmentation, descriptor analysis, MIDI
// assembly and cataloging.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/priyankverma/notescribe/internal/audio"
	"github.com/priyankverma/notescribe/internal/features"
	"github.com/priyankverma/notescribe/internal/midi"
	"github.com/priyankverma/notescribe/internal/storage"
	"github.com/priyankverma/notescribe/internal/transcribe"
	"github.com/priyankverma/notescribe/pkg/logger"
	"github.com/priyankverma/notescribe/pkg/utils"
)

var ErrNoPredictor = errors.New("no predictor configured")

// Result is the outcome of one transcription run.
type Result struct {
	ID       string
	Title    string
	MIDIPath string
	Duration float64
	Notes    transcribe.NoteCollection
	Features *features.Summary
}

type TranscriptionService struct {
	storage   *storage.DBClient
	predictor transcribe.Predictor
	log       *logger.Logger
	config    *Config
}

func NewService(opts ...Option) (*TranscriptionService, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Predictor == nil {
		return nil, ErrNoPredictor
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	stor := cfg.Storage
	if stor == nil {
		var err error
		stor, err = storage.NewDBClientWithPath(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &TranscriptionService{
		storage:   stor,
		predictor: cfg.Predictor,
		log:       cfg.Logger,
		config:    cfg,
	}, nil
}

// Transcribe runs the whole pipeline on a local media file or a YouTube URL
// and registers the outcome in the catalog. The operation is all-or-nothing:
// any stage failure aborts and nothing partial is kept.
func (s *TranscriptionService) Transcribe(ctx context.Context, input, title string) (*Result, error) {
	s.log.Infof("Transcribing: %s", input)

	if utils.IsYouTubeURL(input) {
		downloaded, err := audio.DownloadYouTubeAudio(ctx, input, s.config.TempDir)
		if err != nil {
			return nil, fmt.Errorf("youtube download failed: %w", err)
		}
		input = downloaded
	}

	samples, err := s.loadSamples(ctx, input)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Loaded %d samples (%.2fs at %d Hz)",
		len(samples), float64(len(samples))/float64(s.config.SampleRate), s.config.SampleRate)

	summary, err := features.Summarize(samples, s.config.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("feature analysis failed: %w", err)
	}
	s.log.Infof("Estimated tempo: %.1f BPM", summary.Tempo)

	notes, err := transcribe.Transcribe(s.predictor, samples, s.config.Transcribe)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	s.log.Infof("Detected %d notes", len(notes))

	if title == "" {
		base := filepath.Base(input)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := utils.MakeDir(s.config.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	midiPath := filepath.Join(s.config.OutputDir, title+".mid")
	if err := midi.WriteFile(midiPath, notes, midi.WriteOptions{Tempo: summary.Tempo}); err != nil {
		return nil, fmt.Errorf("midi assembly failed: %w", err)
	}

	id, err := s.storage.RegisterTranscription(storage.Transcription{
		Title:       title,
		SourcePath:  input,
		MIDIPath:    midiPath,
		DurationSec: notes.Duration(),
		NoteCount:   len(notes),
		Tempo:       summary.Tempo,
	})
	if err != nil {
		os.Remove(midiPath) // Rollback
		return nil, fmt.Errorf("failed to register transcription: %w", err)
	}

	s.log.Infof("Transcription %s complete: %s", id, midiPath)
	return &Result{
		ID:       id,
		Title:    title,
		MIDIPath: midiPath,
		Duration: notes.Duration(),
		Notes:    notes,
		Features: summary,
	}, nil
}

// Analyze computes the descriptor summary for a media file without running
// inference.
func (s *TranscriptionService) Analyze(ctx context.Context, input string) (*features.Summary, error) {
	samples, err := s.loadSamples(ctx, input)
	if err != nil {
		return nil, err
	}
	return features.Summarize(samples, s.config.SampleRate)
}

// loadSamples turns any supported media file into mono samples at the
// pipeline sample rate. WAV input already at the target rate skips the
// ffmpeg round-trip.
func (s *TranscriptionService) loadSamples(ctx context.Context, input string) ([]float64, error) {
	if strings.EqualFold(filepath.Ext(input), ".wav") {
		samples, rate, err := audio.ReadWAVAsFloat64(input)
		if err == nil && rate == s.config.SampleRate {
			return samples, nil
		}
	}

	wavPath, err := audio.ConvertToMonoWAV(ctx, input, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}

	samples, _, err := audio.ReadWAVAsFloat64(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}
	return samples, nil
}

// GetTranscriptionByID retrieves one catalog row.
func (s *TranscriptionService) GetTranscriptionByID(id string) (*storage.Transcription, error) {
	return s.storage.GetTranscriptionByID(id)
}

// ListTranscriptions returns all catalog rows.
func (s *TranscriptionService) ListTranscriptions() ([]storage.Transcription, error) {
	return s.storage.ListTranscriptions()
}

// DeleteTranscription removes a catalog row.
func (s *TranscriptionService) DeleteTranscription(id string) error {
	return s.storage.DeleteTranscriptionByID(id)
}

// Close releases the catalog handle.
func (s *TranscriptionService) Close() error {
	return s.storage.Close()
}
