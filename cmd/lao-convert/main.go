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
	"github.com/laospeech/lao-asr-tools/internal/config"
	"github.com/laospeech/lao-asr-tools/internal/converter"
	"github.com/laospeech/lao-asr-tools/internal/telemetry"
)

var version = "0.1.0-dev"

func main() {
	var (
		configPath  string
		sourcePath  string
		outPath     string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file (optional)")
	flag.StringVar(&sourcePath, "source", "", "Source sentence table (overrides config)")
	flag.StringVar(&outPath, "out", "", "Output JSON document (overrides config)")
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
	if sourcePath != "" {
		cfg.Source.Path = sourcePath
	}
	if outPath != "" {
		cfg.Convert.OutputPath = outPath
	}

	// Warnings share stderr with span output; stdout carries the summary.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Telemetry.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(cfg, logger)
	if err != nil {
		logger.Error("failed to setup telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var announcer *bus.Client
	if cfg.Bus.Enabled {
		announcer, err = bus.Connect(cfg.Bus, logger)
		if err != nil {
			logger.Warn("bus unavailable, continuing without announcements", slog.String("error", err.Error()))
		}
	}

	summary, runErr := converter.Run(ctx, cfg, logger, announcer)

	announcer.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown error", slog.String("error", err.Error()))
	}

	if runErr != nil {
		logger.Error("conversion failed", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
	fmt.Printf("converted %d sentences to %s (%d skipped)\n", summary.Written, cfg.Convert.OutputPath, summary.Skipped)
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
