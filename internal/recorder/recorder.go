package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

// ErrExists marks a refusal to overwrite an existing recording.
var ErrExists = errors.New("recording file already exists")

// Result describes a finished capture.
type Result struct {
	Path      string
	Bytes     int
	DurationS float64
}

// Recorder turns one capture into one WAV file on disk.
type Recorder struct {
	cfg     config.RecordConfig
	capture Capture
	log     *slog.Logger
}

func New(cfg config.RecordConfig, capture Capture, log *slog.Logger) *Recorder {
	return &Recorder{cfg: cfg, capture: capture, log: log}
}

// CaptureToFile records for duration (zero means until ctx is canceled)
// and writes the result to path. An existing file is never overwritten
// unless force is set. Cancellation mid-capture still flushes whatever
// was captured.
func (r *Recorder) CaptureToFile(ctx context.Context, path string, duration time.Duration, force bool) (Result, error) {
	tracer := otel.Tracer("lao-asr-tools/recorder")
	ctx, span := tracer.Start(ctx, "capture")
	defer span.End()
	span.SetAttributes(
		attribute.String("output.path", path),
		attribute.Float64("duration_s", duration.Seconds()),
	)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	pcm, err := r.capture.Record(ctx, duration)
	if err != nil {
		return Result{}, err
	}
	if len(pcm) == 0 {
		return Result{}, ErrEmptyCapture
	}

	if err := WriteWAV(path, pcm, r.cfg.SampleRate, r.cfg.Channels); err != nil {
		return Result{}, err
	}

	result := Result{
		Path:      path,
		Bytes:     len(pcm),
		DurationS: Seconds(pcm, r.cfg.SampleRate, r.cfg.Channels),
	}
	r.log.Info("recording saved",
		slog.String("path", result.Path),
		slog.Float64("duration_s", result.DurationS))
	return result, nil
}
