package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/laospeech/lao-asr-tools/internal/config"
	_ "modernc.org/sqlite"
)

// Recording is one saved capture.
type Recording struct {
	ID         int64
	SessionID  string
	SpeakerID  string
	Accent     string
	SentenceID string
	Path       string
	DurationS  float64
	CreatedAt  time.Time
}

// Store keeps a SQLite log of recordings so session progress survives
// across runs and machines sharing the data directory. When disabled in
// config every method is a no-op.
type Store struct {
	db    *sql.DB
	cfg   config.CatalogConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the catalog according to config.
func Open(ctx context.Context, cfg config.CatalogConfig, log *slog.Logger) (*Store, error) {
	if !cfg.Enabled {
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("catalog prune on open failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS recordings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT,
    speaker_id TEXT NOT NULL,
    accent TEXT,
    sentence_id TEXT,
    path TEXT NOT NULL,
    duration_s REAL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recordings_speaker_created ON recordings(speaker_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append writes one recording row.
func (s *Store) Append(ctx context.Context, rec Recording) error {
	if s.db == nil {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recordings(session_id, speaker_id, accent, sentence_id, path, duration_s, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.SpeakerID, rec.Accent, rec.SentenceID, rec.Path, rec.DurationS, rec.CreatedAt)
	return err
}

// ListBySpeaker retrieves up to limit recordings for a speaker ordered
// ascending by time.
func (s *Store) ListBySpeaker(ctx context.Context, speakerID string, limit int) ([]Recording, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, speaker_id, accent, sentence_id, path, duration_s, created_at
		 FROM recordings WHERE speaker_id = ? ORDER BY created_at ASC LIMIT ?`, speakerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Recording
	for rows.Next() {
		var r Recording
		var created string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.SpeakerID, &r.Accent, &r.SentenceID, &r.Path, &r.DurationS, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = ts
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// CountBySpeaker reports how many recordings exist for a speaker.
func (s *Store) CountBySpeaker(ctx context.Context, speakerID string) (int, error) {
	if s.db == nil {
		return 0, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recordings WHERE speaker_id = ?`, speakerID).Scan(&n)
	return n, err
}

// Prune applies configured retention.
func (s *Store) Prune(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if s.cfg.RetentionDays > 0 {
		cutoff := s.clock().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
		if _, err = tx.ExecContext(ctx, `DELETE FROM recordings WHERE created_at < ?`, cutoff.UTC()); err != nil {
			return err
		}
	}
	if s.cfg.MaxRecordings > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM recordings WHERE id IN (
			SELECT id FROM recordings ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`, s.cfg.MaxRecordings)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
