package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds skillcheck configuration.
type Config struct {
	LogLevel          string `yaml:"log_level"`
	LogFormat         string `yaml:"log_format"` // "text" | "json"
	Workers           int    `yaml:"workers"`
	SharedIDNamespace bool   `yaml:"shared_id_namespace"`
	HistoryDB         string `yaml:"history_db"` // sqlite path; empty disables history
	OTLPEndpoint      string `yaml:"otlp_endpoint"`
	OTLPInsecure      bool   `yaml:"otlp_insecure"`
}

// Load loads configuration from environment variables.
func Load() *Config {
	logLevel := os.Getenv("SKILLCHECK_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	logFormat := os.Getenv("SKILLCHECK_LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	workers := 4
	if v, err := strconv.Atoi(os.Getenv("SKILLCHECK_WORKERS")); err == nil && v > 0 {
		workers = v
	}

	return &Config{
		LogLevel:          logLevel,
		LogFormat:         logFormat,
		Workers:           workers,
		SharedIDNamespace: os.Getenv("SKILLCHECK_SHARED_ID_NAMESPACE") == "true",
		HistoryDB:         os.Getenv("SKILLCHECK_HISTORY_DB"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:      os.Getenv("SKILLCHECK_OTEL_INSECURE") == "true",
	}
}

// LoadFile overlays a YAML file on top of the environment configuration.
// Keys absent from the file keep their environment value.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level; unknown values mean INFO.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger builds the process logger described by the configuration.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
