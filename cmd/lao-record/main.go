package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/laospeech/lao-asr-tools/internal/bus"
	"github.com/laospeech/lao-asr-tools/internal/catalog"
	"github.com/laospeech/lao-asr-tools/internal/config"
	"github.com/laospeech/lao-asr-tools/internal/recorder"
	"github.com/laospeech/lao-asr-tools/internal/telemetry"
	"github.com/laospeech/lao-asr-tools/internal/transcript"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath    string
		outPath       string
		durationS     int
		speakerID     string
		accent        string
		sentencesPath string
		device        string
		force         bool
		listDevices   bool
		showVersion   bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file (optional)")
	flag.StringVar(&outPath, "out", "", "Output WAV path (single capture mode)")
	flag.IntVar(&durationS, "duration", 0, "Capture duration in seconds, 0 records until interrupted")
	flag.StringVar(&speakerID, "speaker", "", "Speaker id; selects session mode together with -sentences")
	flag.StringVar(&accent, "accent", "", "Accent category for session recordings (e.g. central)")
	flag.StringVar(&sentencesPath, "sentences", "", "Sentence table CSV for session mode (overrides config)")
	flag.StringVar(&device, "device", "", "Capture device passed to the record command (overrides config)")
	flag.BoolVar(&force, "force", false, "Overwrite an existing output file")
	flag.BoolVar(&listDevices, "list-devices", false, "List available capture devices and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if sentencesPath != "" {
		cfg.Source.Path = sentencesPath
	}
	if device != "" {
		cfg.Record.Device = device
	}
	if durationS < 0 {
		fmt.Fprintln(os.Stderr, "duration must not be negative")
		os.Exit(1)
	}
	// In session mode the flag bounds each take.
	if durationS > 0 {
		cfg.Record.MaxDurationS = durationS
	}

	if listDevices {
		if err := recorder.ListDevices(context.Background(), cfg.Record, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "failed to list devices: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Telemetry.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(cfg, logger)
	if err != nil {
		logger.Error("failed to setup telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}()

	capture, err := recorder.NewCapture(cfg.Record)
	if err != nil {
		logger.Error("failed to setup capture", slog.String("error", err.Error()))
		os.Exit(1)
	}
	rec := recorder.New(cfg.Record, capture, logger)

	if speakerID != "" {
		if err := runSession(ctx, cfg, rec, speakerID, accent, logger); err != nil {
			logger.Error("session failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "either -out or -speaker is required")
		os.Exit(1)
	}
	result, err := rec.CaptureToFile(ctx, outPath, time.Duration(durationS)*time.Second, force)
	if err != nil {
		logger.Error("capture failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Printf("recorded %s (%.2fs)\n", result.Path, result.DurationS)
}

func runSession(ctx context.Context, cfg config.Config, rec *recorder.Recorder, speakerID, accent string, logger *slog.Logger) error {
	records, warnings, err := transcript.ReadTable(cfg.Source.Path, cfg.Source)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn("skipping source row", slog.Int("row", w.Row), slog.String("reason", w.Reason))
	}

	store, err := catalog.Open(ctx, cfg.Catalog, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var announcer *bus.Client
	if cfg.Bus.Enabled {
		announcer, err = bus.Connect(cfg.Bus, logger)
		if err != nil {
			logger.Warn("bus unavailable, continuing without announcements", slog.String("error", err.Error()))
		} else {
			defer announcer.Close()
		}
	}

	sess := recorder.NewSession(cfg, rec, store, announcer, logger, os.Stdin, os.Stdout)
	_, err = sess.Run(ctx, speakerID, accent, records)
	return err
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
