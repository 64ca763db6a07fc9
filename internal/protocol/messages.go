package protocol

import "time"

// RecordingSaved announces a recording written to disk.
type RecordingSaved struct {
	SessionID  string    `json:"session_id"`
	SpeakerID  string    `json:"speaker_id"`
	Accent     string    `json:"accent,omitempty"`
	SentenceID string    `json:"sentence_id,omitempty"`
	Path       string    `json:"path"`
	DurationS  float64   `json:"duration_s"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
	Timestamp  time.Time `json:"timestamp"`
}

// ConversionCompleted announces a finished sentence-table conversion.
type ConversionCompleted struct {
	SourcePath string    `json:"source_path"`
	OutputPath string    `json:"output_path"`
	Records    int       `json:"records"`
	Skipped    int       `json:"skipped"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	SubjectRecordingSaved      = "record.saved"
	SubjectConversionCompleted = "convert.completed"
)
