package recorder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laospeech/lao-asr-tools/internal/bus"
	"github.com/laospeech/lao-asr-tools/internal/catalog"
	"github.com/laospeech/lao-asr-tools/internal/config"
	"github.com/laospeech/lao-asr-tools/internal/protocol"
	"github.com/laospeech/lao-asr-tools/internal/transcript"
)

// SessionSummary reports what a recording session did.
type SessionSummary struct {
	Total      int
	Recorded   int
	Skipped    int
	Cumulative int // recordings on disk for this speaker, all sessions
}

// Session walks a speaker through the sentence table, one recording per
// sentence. The operator drives it: Enter starts a take, Enter stops it,
// "q" ends the session early. Sentences that already have a file are
// skipped so a session can resume where the last one stopped.
type Session struct {
	cfg       config.Config
	rec       *Recorder
	cat       *catalog.Store
	announcer *bus.Client
	log       *slog.Logger
	in        *bufio.Scanner
	out       io.Writer
}

func NewSession(cfg config.Config, rec *Recorder, cat *catalog.Store, announcer *bus.Client, log *slog.Logger, in io.Reader, out io.Writer) *Session {
	return &Session{
		cfg:       cfg,
		rec:       rec,
		cat:       cat,
		announcer: announcer,
		log:       log,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run records the given sentences for one speaker. Sentences are visited
// in numeric-aware id order so "2" comes before "10" regardless of row
// order in the table.
func (s *Session) Run(ctx context.Context, speakerID, accent string, records []transcript.Record) (SessionSummary, error) {
	if speakerID == "" {
		return SessionSummary{}, errors.New("speaker id must not be empty")
	}
	if len(records) == 0 {
		return SessionSummary{}, errors.New("no sentences to record")
	}

	sessionID := uuid.NewString()
	dir := filepath.Join(s.cfg.Record.BaseDir, accent, speakerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SessionSummary{}, fmt.Errorf("create recording dir: %w", err)
	}

	sorted := append([]transcript.Record(nil), records...)
	transcript.SortByID(sorted)

	maxDur := time.Duration(s.cfg.Record.MaxDurationS) * time.Second
	summary := SessionSummary{Total: len(sorted)}

	fmt.Fprintf(s.out, "Recording session for speaker %s (accent %s), %d sentences.\n", speakerID, accent, len(sorted))
	fmt.Fprintf(s.out, "Files go to %s\n", dir)

loop:
	for i, rec := range sorted {
		path := filepath.Join(dir, rec.WAVFilename(speakerID))

		fmt.Fprintf(s.out, "\n[%d/%d] Sentence %s\n  %s\n", i+1, len(sorted), rec.ID, rec.Text)

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(s.out, "  already recorded, skipping\n")
			summary.Skipped++
			continue
		}

		fmt.Fprint(s.out, "Press ENTER to record, q to quit: ")
		line, ok := s.readLine()
		if !ok || strings.EqualFold(strings.TrimSpace(line), "q") {
			break
		}

		result, err := s.take(ctx, path, maxDur)
		if err != nil {
			if errors.Is(err, ErrEmptyCapture) {
				s.log.Warn("no audio captured, not saving", slog.String("sentence_id", rec.ID))
				continue
			}
			return summary, err
		}
		summary.Recorded++
		fmt.Fprintf(s.out, "saved %s (%.2fs)\n", filepath.Base(result.Path), result.DurationS)

		if err := s.cat.Append(ctx, catalog.Recording{
			SessionID:  sessionID,
			SpeakerID:  speakerID,
			Accent:     accent,
			SentenceID: rec.ID,
			Path:       result.Path,
			DurationS:  result.DurationS,
		}); err != nil {
			s.log.Warn("failed to catalog recording", slog.String("error", err.Error()))
		}

		if s.announcer != nil {
			evt := protocol.RecordingSaved{
				SessionID:  sessionID,
				SpeakerID:  speakerID,
				Accent:     accent,
				SentenceID: rec.ID,
				Path:       result.Path,
				DurationS:  result.DurationS,
				SampleRate: s.cfg.Record.SampleRate,
				Channels:   s.cfg.Record.Channels,
				Timestamp:  time.Now().UTC(),
			}
			if err := s.announcer.Publish(protocol.SubjectRecordingSaved, evt); err != nil {
				s.log.Warn("failed to announce recording", slog.String("error", err.Error()))
			}
		}

		select {
		case <-ctx.Done():
			break loop
		default:
		}
	}

	summary.Cumulative = s.countOnDisk(dir, speakerID)
	s.printSummary(speakerID, accent, summary)
	return summary, nil
}

// take runs one capture, stopped by operator Enter, the configured max
// duration, or ctx cancellation, whichever comes first.
func (s *Session) take(ctx context.Context, path string, maxDur time.Duration) (Result, error) {
	recCtx, stop := context.WithCancel(ctx)
	defer stop()

	type capResult struct {
		res Result
		err error
	}
	done := make(chan capResult, 1)
	go func() {
		res, err := s.rec.CaptureToFile(recCtx, path, maxDur, false)
		done <- capResult{res: res, err: err}
	}()

	fmt.Fprintln(s.out, "--- RECORDING --- press ENTER to stop")
	stopped := make(chan struct{})
	go func() {
		s.readLine()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
	}
	stop()

	out := <-done
	return out.res, out.err
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) countOnDisk(dir, speakerID string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, speakerID+"_") && strings.HasSuffix(name, ".wav") {
			n++
		}
	}
	return n
}

func (s *Session) printSummary(speakerID, accent string, sum SessionSummary) {
	fmt.Fprintf(s.out, "\nSession summary for %s (%s)\n", speakerID, accent)
	fmt.Fprintf(s.out, "  sentences in table: %d\n", sum.Total)
	fmt.Fprintf(s.out, "  recorded this session: %d\n", sum.Recorded)
	fmt.Fprintf(s.out, "  skipped (already recorded): %d\n", sum.Skipped)
	fmt.Fprintf(s.out, "  total on disk for speaker: %d\n", sum.Cumulative)
	fmt.Fprintf(s.out, "  remaining: %d\n", sum.Total-sum.Cumulative)
}
