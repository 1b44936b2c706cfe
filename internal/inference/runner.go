// Package inference provides the out-of-process prediction capability. The
// neural model runs behind an external runner executable; this package only
// moves chunks in and activation grids out.
package inference

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"time"

	"github.com/priyankverma/notescribe/internal/transcribe"
)

// DefaultTimeout bounds a single chunk prediction.
const DefaultTimeout = 30 * time.Second

// Runner invokes an external model-runner process per chunk. The chunk is
// written to stdin as little-endian float32 samples; the runner answers with
// a JSON object carrying the note/onset/contour grids on stdout.
type Runner struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewRunner builds a Runner for the given executable.
func NewRunner(command string, args ...string) *Runner {
	return &Runner{
		Command: command,
		Args:    args,
		Timeout: DefaultTimeout,
	}
}

type gridPayload struct {
	Note    [][]float64 `json:"note"`
	Onset   [][]float64 `json:"onset"`
	Contour [][]float64 `json:"contour"`
}

// Predict implements transcribe.Predictor.
func (r *Runner) Predict(chunk []float64) (*transcribe.Prediction, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdin := make([]byte, 0, len(chunk)*4)
	var scratch [4]byte
	for _, s := range chunk {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(float32(s)))
		stdin = append(stdin, scratch[:]...)
	}

	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("model runner timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("model runner failed: %v (stderr: %s)", err, stderr.String())
	}

	var payload gridPayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("decoding model runner output: %w", err)
	}

	return &transcribe.Prediction{
		Note:    payload.Note,
		Onset:   payload.Onset,
		Contour: payload.Contour,
	}, nil
}
