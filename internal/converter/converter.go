package converter

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/laospeech/lao-asr-tools/internal/bus"
	"github.com/laospeech/lao-asr-tools/internal/config"
	"github.com/laospeech/lao-asr-tools/internal/protocol"
	"github.com/laospeech/lao-asr-tools/internal/transcript"
)

// Summary reports what a conversion run did.
type Summary struct {
	Read    int
	Written int
	Skipped int
}

// Run converts the configured sentence table into the JSON document.
// Malformed rows are logged and skipped; anything else aborts the run.
// The bus client may be nil.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, announcer *bus.Client) (Summary, error) {
	tracer := otel.Tracer("lao-asr-tools/converter")
	ctx, span := tracer.Start(ctx, "convert")
	defer span.End()
	span.SetAttributes(
		attribute.String("source.path", cfg.Source.Path),
		attribute.String("output.path", cfg.Convert.OutputPath),
	)

	records, warnings, err := transcript.ReadTable(cfg.Source.Path, cfg.Source)
	if err != nil {
		return Summary{}, err
	}
	for _, w := range warnings {
		logger.Warn("skipping source row",
			slog.Int("row", w.Row),
			slog.String("reason", w.Reason))
	}

	if err := transcript.WriteDocument(cfg.Convert.OutputPath, records, cfg.Convert.Indent); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Read:    len(records) + len(warnings),
		Written: len(records),
		Skipped: len(warnings),
	}
	span.SetAttributes(
		attribute.Int("records.written", summary.Written),
		attribute.Int("records.skipped", summary.Skipped),
	)

	logger.Info("conversion complete",
		slog.String("source", cfg.Source.Path),
		slog.String("output", cfg.Convert.OutputPath),
		slog.Int("written", summary.Written),
		slog.Int("skipped", summary.Skipped))

	if announcer != nil {
		evt := protocol.ConversionCompleted{
			SourcePath: cfg.Source.Path,
			OutputPath: cfg.Convert.OutputPath,
			Records:    summary.Written,
			Skipped:    summary.Skipped,
			Timestamp:  time.Now().UTC(),
		}
		if err := announcer.Publish(protocol.SubjectConversionCompleted, evt); err != nil {
			logger.Warn("failed to announce conversion", slog.String("error", err.Error()))
		}
	}

	return summary, nil
}
