package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

var (
	// ErrNoDevice marks a capture backend that could not produce any audio.
	ErrNoDevice = errors.New("no audio input device available")
	// ErrEmptyCapture marks a capture that finished without audio data.
	ErrEmptyCapture = errors.New("capture produced no audio")
)

// Capture abstracts audio input backends. Record returns interleaved
// little-endian 16-bit PCM. A zero duration records until ctx is canceled;
// whatever was captured by then is returned rather than discarded.
type Capture interface {
	Record(ctx context.Context, duration time.Duration) ([]byte, error)
}

// NewCapture builds the capture backend selected by config.
func NewCapture(cfg config.RecordConfig) (Capture, error) {
	switch cfg.Mode {
	case "exec":
		return newExecCapture(cfg)
	case "mock":
		return NewMockCapture(cfg.SampleRate, cfg.Channels), nil
	default:
		return nil, fmt.Errorf("unknown record mode %q", cfg.Mode)
	}
}
