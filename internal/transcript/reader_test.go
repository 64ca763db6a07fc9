package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

func sourceCfg() config.SourceConfig {
	return config.SourceConfig{
		Delimiter:  ",",
		IDColumn:   "sentence_id",
		TextColumn: "transcription",
	}
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datatext.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTableLaoFixture(t *testing.T) {
	path := writeFixture(t, "sentence_id,transcription\n1,ສະບາຍດີ\n2,ຂອບໃຈ\n3,\n")

	records, warnings, err := ReadTable(path, sourceCfg())
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[0].Text != "ສະບາຍດີ" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].ID != "2" || records[1].Text != "ຂອບໃຈ" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
	if len(warnings) != 1 || warnings[0].Row != 4 {
		t.Fatalf("expected one warning for row 4, got %+v", warnings)
	}
}

func TestReadTableStripsBOM(t *testing.T) {
	path := writeFixture(t, "\uFEFFsentence_id,transcription\n1,ສະບາຍດີ\n")

	records, _, err := ReadTable(path, sourceCfg())
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(records) != 1 || records[0].ID != "1" {
		t.Fatalf("BOM not stripped, got %+v", records)
	}
}

func TestReadTableHeaderOnly(t *testing.T) {
	path := writeFixture(t, "sentence_id,transcription\n")

	records, warnings, err := ReadTable(path, sourceCfg())
	if err != nil {
		t.Fatalf("header-only table must not error: %v", err)
	}
	if len(records) != 0 || len(warnings) != 0 {
		t.Fatalf("expected empty result, got %d records, %d warnings", len(records), len(warnings))
	}
}

func TestReadTableEmptyFile(t *testing.T) {
	path := writeFixture(t, "")

	_, _, err := ReadTable(path, sourceCfg())
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
}

func TestReadTableMissingColumns(t *testing.T) {
	path := writeFixture(t, "id,words\n1,ສະບາຍດີ\n")

	_, _, err := ReadTable(path, sourceCfg())
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}

func TestReadTableMissingFile(t *testing.T) {
	_, _, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"), sourceCfg())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadTableDuplicateIDKeepsFirst(t *testing.T) {
	path := writeFixture(t, "sentence_id,transcription\n1,ສະບາຍດີ\n1,ຂອບໃຈ\n")

	records, warnings, err := ReadTable(path, sourceCfg())
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(records) != 1 || records[0].Text != "ສະບາຍດີ" {
		t.Fatalf("expected first occurrence kept, got %+v", records)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected duplicate warning, got %+v", warnings)
	}
}

func TestReadTableOptionalColumns(t *testing.T) {
	cfg := sourceCfg()
	cfg.SpeakerColumn = "speaker_id"
	cfg.DurationColumn = "duration_s"
	path := writeFixture(t, "sentence_id,transcription,speaker_id,duration_s\n1,ສະບາຍດີ,C_SPK01,2.5\n2,ຂອບໃຈ,C_SPK01,bogus\n")

	records, warnings, err := ReadTable(path, cfg)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Speaker != "C_SPK01" || records[0].Duration != 2.5 {
		t.Fatalf("metadata not mapped: %+v", records[0])
	}
	if records[1].Duration != 0 {
		t.Fatalf("bogus duration must be dropped, got %+v", records[1])
	}
	if len(warnings) != 0 {
		t.Fatalf("bad metadata must not exclude rows, got %+v", warnings)
	}
}

func TestReadTableBlankRowsSilent(t *testing.T) {
	path := writeFixture(t, "sentence_id,transcription\n1,ສະບາຍດີ\n,\n\n2,ຂອບໃຈ\n")

	records, warnings, err := ReadTable(path, sourceCfg())
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(warnings) != 0 {
		t.Fatalf("blank rows must be silent, got %+v", warnings)
	}
}

func TestSortByIDNumericAware(t *testing.T) {
	records := []Record{{ID: "10"}, {ID: "2"}, {ID: "x1"}, {ID: "1"}}
	SortByID(records)
	want := []string{"1", "2", "10", "x1"}
	for i, w := range want {
		if records[i].ID != w {
			t.Fatalf("position %d: want %q, got %q", i, w, records[i].ID)
		}
	}
}
