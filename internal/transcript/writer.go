package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type document struct {
	Sentences []sentenceJSON `json:"sentences"`
}

type sentenceJSON struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Speaker  string  `json:"speaker,omitempty"`
	Duration float64 `json:"duration_s,omitempty"`
}

// WriteDocument writes records to path as a JSON document in source order.
// The destination is overwritten; identical input produces byte-identical
// output. HTML escaping is disabled so Lao text stays literal in the file.
func WriteDocument(path string, records []Record, indent int) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	doc := document{Sentences: make([]sentenceJSON, 0, len(records))}
	for _, r := range records {
		doc.Sentences = append(doc.Sentences, sentenceJSON{
			ID:       r.ID,
			Text:     r.Text,
			Speaker:  r.Speaker,
			Duration: r.Duration,
		})
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("encode output document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
