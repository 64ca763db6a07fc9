package transcript

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

var (
	// ErrNoHeader marks a source table with no header row at all.
	ErrNoHeader = errors.New("source table has no header row")
	// ErrMissingColumns marks a header that lacks a required column.
	ErrMissingColumns = errors.New("source table header is missing required columns")
)

// SkipWarning describes a data row that was excluded from the result.
// Row is the 1-based line number in the source file (header is row 1).
type SkipWarning struct {
	Row    int
	Reason string
}

// ReadTable parses the sentence table at path into Records. Rows with a
// missing id or text are skipped and reported as warnings rather than
// failing the whole run; completely blank rows are skipped silently.
// Duplicate ids keep the first occurrence. Text encoding passes through
// untouched, including a leading UTF-8 BOM which is stripped before the
// header is read (spreadsheet exports commonly add one).
func ReadTable(path string, cfg config.SourceConfig) ([]Record, []SkipWarning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open source table: %w", err)
	}
	defer f.Close()
	return readTable(f, cfg)
}

func readTable(r io.Reader, cfg config.SourceConfig) ([]Record, []SkipWarning, error) {
	br := bufio.NewReader(r)
	if err := stripBOM(br); err != nil {
		return nil, nil, fmt.Errorf("read source table: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = ','
	if cfg.Delimiter != "" {
		cr.Comma = rune(cfg.Delimiter[0])
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse header row: %w", err)
	}

	idIdx := columnIndex(header, cfg.IDColumn)
	textIdx := columnIndex(header, cfg.TextColumn)
	if idIdx < 0 || textIdx < 0 {
		return nil, nil, fmt.Errorf("%w: need %q and %q, found %v",
			ErrMissingColumns, cfg.IDColumn, cfg.TextColumn, header)
	}
	speakerIdx := columnIndex(header, cfg.SpeakerColumn)
	durationIdx := columnIndex(header, cfg.DurationColumn)

	var (
		records  []Record
		warnings []SkipWarning
		seen     = make(map[string]bool)
	)
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Corrupt row: exclude it, keep going.
			warnings = append(warnings, SkipWarning{Row: row, Reason: err.Error()})
			continue
		}

		id := strings.TrimSpace(field(fields, idIdx))
		text := strings.TrimSpace(field(fields, textIdx))
		if id == "" && text == "" && blank(fields) {
			continue
		}
		if id == "" || text == "" {
			warnings = append(warnings, SkipWarning{Row: row, Reason: "missing sentence id or transcription"})
			continue
		}
		if seen[id] {
			warnings = append(warnings, SkipWarning{Row: row, Reason: fmt.Sprintf("duplicate sentence id %q, keeping first occurrence", id)})
			continue
		}
		seen[id] = true

		rec := Record{
			ID:      id,
			Text:    text,
			Speaker: strings.TrimSpace(field(fields, speakerIdx)),
		}
		// An unparseable duration is left at zero; it never excludes the row.
		if raw := strings.TrimSpace(field(fields, durationIdx)); raw != "" {
			if d, err := strconv.ParseFloat(raw, 64); err == nil && d >= 0 {
				rec.Duration = d
			}
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

func stripBOM(br *bufio.Reader) error {
	r, _, err := br.ReadRune()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if r != '\uFEFF' {
		return br.UnreadRune()
	}
	return nil
}

func columnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
