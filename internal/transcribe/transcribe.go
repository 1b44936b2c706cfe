// Package transcribe converts a mono audio buffer into symbolic note events.
// It drives a chunked inference model over the buffer, stitches the per-chunk
// activation grids into one timeline and extracts note segments per pitch bin.
package transcribe

import "fmt"

// Segmentation defaults matching the model's reference configuration.
const (
	DefaultOnsetThreshold  = 0.5
	DefaultFrameThreshold  = 0.3
	DefaultMinNoteDuration = 0.05 // seconds
	DefaultVelocity        = 80
)

// Config is the tuning surface for a transcription run. Zero values select
// the defaults.
type Config struct {
	OnsetThreshold  float64
	FrameThreshold  float64
	MinNoteDuration float64
	ChunkSize       int
	HopSize         int
	FrameRate       float64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		OnsetThreshold:  DefaultOnsetThreshold,
		FrameThreshold:  DefaultFrameThreshold,
		MinNoteDuration: DefaultMinNoteDuration,
		ChunkSize:       ChunkSize,
		HopSize:         ChunkSize / 2,
		FrameRate:       FrameRate,
	}
}

func (c *Config) applyDefaults() {
	if c.OnsetThreshold == 0 {
		c.OnsetThreshold = DefaultOnsetThreshold
	}
	if c.FrameThreshold == 0 {
		c.FrameThreshold = DefaultFrameThreshold
	}
	if c.MinNoteDuration == 0 {
		c.MinNoteDuration = DefaultMinNoteDuration
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = ChunkSize
	}
	if c.HopSize == 0 {
		c.HopSize = c.ChunkSize / 2
	}
	if c.FrameRate == 0 {
		c.FrameRate = FrameRate
	}
}

func (c *Config) validate() error {
	for name, t := range map[string]float64{
		"onset threshold": c.OnsetThreshold,
		"frame threshold": c.FrameThreshold,
	} {
		if t <= 0 || t > 1 {
			return fmt.Errorf("%w: %s %.3f", ErrInvalidThreshold, name, t)
		}
	}
	return nil
}

// Transcribe runs the full pipeline on samples: chunked inference, stitching
// and note segmentation. The operation is all-or-nothing; any inference
// failure aborts with no partial results. An empty result is valid output,
// not an error.
func Transcribe(p Predictor, samples []float64, cfg Config) (NoteCollection, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}

	grids, err := NewChunker(p, cfg.ChunkSize, cfg.HopSize).Run(samples)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	seg := Segmenter{
		OnsetThreshold:  cfg.OnsetThreshold,
		FrameThreshold:  cfg.FrameThreshold,
		MinNoteDuration: cfg.MinNoteDuration,
		FrameRate:       cfg.FrameRate,
	}
	notes, err := seg.Segment(grids)
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}
	return notes, nil
}
