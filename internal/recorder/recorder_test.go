package recorder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func mockRecorder() *Recorder {
	cfg := config.Default().Record
	cfg.Mode = "mock"
	return New(cfg, NewMockCapture(cfg.SampleRate, cfg.Channels), newLogger())
}

func TestCaptureToFile(t *testing.T) {
	rec := mockRecorder()
	path := filepath.Join(t.TempDir(), "sample.wav")

	result, err := rec.CaptureToFile(context.Background(), path, time.Second, false)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if result.DurationS < 0.9 || result.DurationS > 1.1 {
		t.Fatalf("expected ~1s, got %v", result.DurationS)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("output file must be non-empty")
	}
}

func TestCaptureToFileOverwriteGuard(t *testing.T) {
	rec := mockRecorder()
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := rec.CaptureToFile(context.Background(), path, time.Second, false)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old" {
		t.Fatal("existing file must not be touched without force")
	}

	if _, err := rec.CaptureToFile(context.Background(), path, time.Second, true); err != nil {
		t.Fatalf("forced capture: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() <= 3 {
		t.Fatal("forced capture must have replaced the file")
	}
}

func TestCaptureToFileNoDevice(t *testing.T) {
	cfg := config.Default().Record
	cfg.Command = "definitely-not-a-recorder"
	capture, err := newExecCapture(cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := New(cfg, capture, newLogger())
	path := filepath.Join(t.TempDir(), "sample.wav")

	_, err = rec.CaptureToFile(context.Background(), path, time.Second, false)
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file may be written when the device is unavailable")
	}
}
