package catalog

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenDisabled(t *testing.T) {
	cfg := config.CatalogConfig{Enabled: false}
	st, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if err := st.Append(context.Background(), Recording{SpeakerID: "spk"}); err != nil {
		t.Fatalf("disabled append must be a no-op: %v", err)
	}
	n, err := st.CountBySpeaker(context.Background(), "spk")
	if err != nil || n != 0 {
		t.Fatalf("disabled count: n=%d err=%v", n, err)
	}
}

func TestAppendAndQuery(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.CatalogConfig{Enabled: true, Path: filepath.Join(tmp, "catalog.db")}
	st, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	rec := Recording{
		SessionID:  "sess-1",
		SpeakerID:  "C_SPK01",
		Accent:     "central",
		SentenceID: "17",
		Path:       "recordings/central/C_SPK01/C_SPK01_17.wav",
		DurationS:  2.4,
	}
	if err := st.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	recs, err := st.ListBySpeaker(context.Background(), "C_SPK01", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recording, got %d", len(recs))
	}
	if recs[0].SentenceID != "17" || recs[0].Accent != "central" {
		t.Fatalf("unexpected recording: %+v", recs[0])
	}

	n, err := st.CountBySpeaker(context.Background(), "C_SPK01")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}
}

func TestPruneByDaysAndRows(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.CatalogConfig{Enabled: true, Path: filepath.Join(tmp, "catalog.db"), RetentionDays: 1, MaxRecordings: 1}
	st, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	st.clock = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := st.Append(context.Background(), Recording{SpeakerID: "spk", SentenceID: "1", Path: "a.wav"}); err != nil {
		t.Fatalf("append old: %v", err)
	}

	st.clock = func() time.Time { return time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC) }
	if err := st.Append(context.Background(), Recording{SpeakerID: "spk", SentenceID: "2", Path: "b.wav"}); err != nil {
		t.Fatalf("append new: %v", err)
	}
	if err := st.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	recs, err := st.ListBySpeaker(context.Background(), "spk", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].SentenceID != "2" {
		t.Fatalf("expected only the recent recording, got %+v", recs)
	}
}
