package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

// SourceConfig names the sentence-table file and its columns. Column names
// are configuration because source spreadsheets vary between collection
// sites; only the id and text columns are required.
type SourceConfig struct {
	Path           string `yaml:"path"`
	Delimiter      string `yaml:"delimiter"`
	IDColumn       string `yaml:"id_column"`
	TextColumn     string `yaml:"text_column"`
	SpeakerColumn  string `yaml:"speaker_column"`
	DurationColumn string `yaml:"duration_column"`
}

type ConvertConfig struct {
	OutputPath string `yaml:"output_path"`
	Indent     int    `yaml:"indent"`
}

type RecordConfig struct {
	BaseDir      string `yaml:"base_dir"`
	SampleRate   int    `yaml:"sample_rate"`
	Channels     int    `yaml:"channels"`
	Mode         string `yaml:"mode"` // exec, mock
	Command      string `yaml:"command"`
	ListCommand  string `yaml:"list_command"`
	Device       string `yaml:"device"`
	MaxDurationS int    `yaml:"max_duration_s"`
}

type CatalogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
	MaxRecordings int    `yaml:"max_recordings"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type Config struct {
	ToolName    string          `yaml:"tool_name"`
	Environment string          `yaml:"environment"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Source      SourceConfig    `yaml:"source"`
	Convert     ConvertConfig   `yaml:"convert"`
	Record      RecordConfig    `yaml:"record"`
	Catalog     CatalogConfig   `yaml:"catalog"`
	Bus         BusConfig       `yaml:"bus"`
}

func Default() Config {
	return Config{
		ToolName:    "lao-asr-tools",
		Environment: "development",
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Source: SourceConfig{
			Path:       "data_source/datatext.csv",
			Delimiter:  ",",
			IDColumn:   "sentence_id",
			TextColumn: "transcription",
		},
		Convert: ConvertConfig{
			OutputPath: "data/sentences.json",
			Indent:     2,
		},
		Record: RecordConfig{
			BaseDir:     "recordings",
			SampleRate:  16000,
			Channels:    1,
			Mode:        "exec",
			Command:     "arecord -q -t raw -f S16_LE",
			ListCommand: "arecord -L",
		},
		Catalog: CatalogConfig{
			Enabled: true,
			Path:    "data/catalog.db",
		},
		Bus: BusConfig{
			Enabled:        false,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.ToolName, "LAO_TOOL_NAME")
	overrideString(&cfg.Environment, "LAO_ENVIRONMENT")
	overrideString(&cfg.Telemetry.LogLevel, "LAO_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "LAO_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "LAO_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Source.Path, "LAO_SOURCE_PATH")
	overrideString(&cfg.Source.Delimiter, "LAO_SOURCE_DELIMITER")
	overrideString(&cfg.Source.IDColumn, "LAO_SOURCE_ID_COLUMN")
	overrideString(&cfg.Source.TextColumn, "LAO_SOURCE_TEXT_COLUMN")
	overrideString(&cfg.Source.SpeakerColumn, "LAO_SOURCE_SPEAKER_COLUMN")
	overrideString(&cfg.Source.DurationColumn, "LAO_SOURCE_DURATION_COLUMN")
	overrideString(&cfg.Convert.OutputPath, "LAO_CONVERT_OUTPUT_PATH")
	overrideInt(&cfg.Convert.Indent, "LAO_CONVERT_INDENT")
	overrideString(&cfg.Record.BaseDir, "LAO_RECORD_BASE_DIR")
	overrideInt(&cfg.Record.SampleRate, "LAO_RECORD_SAMPLE_RATE")
	overrideInt(&cfg.Record.Channels, "LAO_RECORD_CHANNELS")
	overrideString(&cfg.Record.Mode, "LAO_RECORD_MODE")
	overrideString(&cfg.Record.Command, "LAO_RECORD_COMMAND")
	overrideString(&cfg.Record.ListCommand, "LAO_RECORD_LIST_COMMAND")
	overrideString(&cfg.Record.Device, "LAO_RECORD_DEVICE")
	overrideInt(&cfg.Record.MaxDurationS, "LAO_RECORD_MAX_DURATION_S")
	overrideBool(&cfg.Catalog.Enabled, "LAO_CATALOG_ENABLED")
	overrideString(&cfg.Catalog.Path, "LAO_CATALOG_PATH")
	overrideInt(&cfg.Catalog.RetentionDays, "LAO_CATALOG_RETENTION_DAYS")
	overrideInt(&cfg.Catalog.MaxRecordings, "LAO_CATALOG_MAX_RECORDINGS")
	overrideBool(&cfg.Bus.Enabled, "LAO_BUS_ENABLED")
	overrideStringSlice(&cfg.Bus.Servers, "LAO_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "LAO_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "LAO_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "LAO_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "LAO_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "LAO_BUS_CONNECT_TIMEOUT_MS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.ToolName == "" {
		return errors.New("tool_name must not be empty")
	}
	if len(cfg.Source.Delimiter) != 1 {
		return errors.New("source.delimiter must be a single character")
	}
	if cfg.Source.IDColumn == "" {
		return errors.New("source.id_column must not be empty")
	}
	if cfg.Source.TextColumn == "" {
		return errors.New("source.text_column must not be empty")
	}
	if cfg.Source.IDColumn == cfg.Source.TextColumn {
		return errors.New("source.id_column and source.text_column must differ")
	}
	if cfg.Convert.Indent < 0 {
		return errors.New("convert.indent must be >= 0")
	}
	if cfg.Record.SampleRate <= 0 {
		return errors.New("record.sample_rate must be positive")
	}
	if cfg.Record.Channels <= 0 {
		return errors.New("record.channels must be positive")
	}
	switch cfg.Record.Mode {
	case "exec", "mock":
	default:
		return errors.New("record.mode must be one of exec|mock")
	}
	if cfg.Record.Mode == "exec" && cfg.Record.Command == "" {
		return errors.New("record.command must be set when mode=exec")
	}
	if cfg.Record.MaxDurationS < 0 {
		return errors.New("record.max_duration_s must be >= 0")
	}
	if cfg.Catalog.Enabled && cfg.Catalog.Path == "" {
		return errors.New("catalog.path must not be empty when the catalog is enabled")
	}
	if cfg.Catalog.RetentionDays < 0 {
		return errors.New("catalog.retention_days must be >= 0")
	}
	if cfg.Catalog.MaxRecordings < 0 {
		return errors.New("catalog.max_recordings must be >= 0")
	}
	if cfg.Bus.Enabled {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when the bus is enabled")
		}
		if cfg.Bus.ConnectTimeout <= 0 {
			return errors.New("bus.connect_timeout_ms must be positive")
		}
	}
	return nil
}
