package transcribe

import "errors"

// Sentinel errors for expected failure modes.
var (
	ErrEmptyBuffer      = errors.New("audio buffer is empty")
	ErrInvalidThreshold = errors.New("threshold must be within (0, 1]")
	ErrMalformedGrids   = errors.New("inference returned malformed grids")
	ErrEmptyGrid        = errors.New("activation grid has no frames")
)
