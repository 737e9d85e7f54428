// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables (optionally backed by a YAML
// file) with sensible defaults and validates all settings up front so a bad
// setting fails before any file is read.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Data     DataConfig
	Stock    StockConfig
	Ingest   IngestConfig
	Report   ReportConfig
	Logging  LoggingConfig
	Schedule ScheduleConfig
}

// DataConfig describes where the inventory files live.
type DataConfig struct {
	// Dir is the directory scanned (non-recursively) for inventory files (default: ./data)
	Dir string `env:"DATA_DIR" envAlt:"INVENTORY_DATA_DIR" default:"./data"`

	// Extension is the tabular file extension to pick up (default: .csv)
	Extension string `env:"DATA_EXTENSION" default:".csv"`
}

// StockConfig holds low-stock alerting settings.
type StockConfig struct {
	// Threshold is the inclusive low-stock alert threshold (default: 10)
	Threshold int `env:"STOCK_THRESHOLD" default:"10"`
}

// IngestConfig holds file ingestion settings.
type IngestConfig struct {
	// Workers is the number of files parsed in parallel (default: 4)
	Workers int `env:"INGEST_WORKERS" default:"4"`

	// MaxFileSize is the largest file accepted, in bytes (default: 100MB)
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"104857600"`

	// ValidateRows runs every ingested row through the full record validation.
	// When false only type coercion is applied (default: true)
	ValidateRows bool `env:"INGEST_VALIDATE_ROWS" default:"true"`
}

// ReportConfig holds summary report settings.
type ReportConfig struct {
	// Output is the report file path (default: report.csv)
	Output string `env:"REPORT_OUTPUT" default:"report.csv"`

	// Format is csv or console (default: csv)
	Format string `env:"REPORT_FORMAT" default:"csv"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the console log format: text or json; empty picks by terminal
	Format string `env:"LOG_FORMAT"`

	// File is the append-only log file; "-" disables it (default: inventory.log)
	File string `env:"LOG_FILE" default:"inventory.log"`
}

// ScheduleConfig holds settings for the watch command.
type ScheduleConfig struct {
	// Cron is the re-consolidation schedule (default: @every 1h)
	Cron string `env:"SCHEDULE_CRON" default:"@every 1h"`

	// Watch re-runs consolidation when files in the data directory change (default: false)
	Watch bool `env:"SCHEDULE_WATCH" default:"false"`

	// Debounce is how long file events are batched before a run (default: 500ms)
	Debounce time.Duration `env:"SCHEDULE_DEBOUNCE" default:"500ms"`
}

// LogFile returns the log file path, or "" when the file sink is disabled.
func (c *LoggingConfig) LogFile() string {
	if c.File == "-" {
		return ""
	}
	return c.File
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Data: {Dir: %q, Extension: %q}, ", c.Data.Dir, c.Data.Extension))
	b.WriteString(fmt.Sprintf("Stock: {Threshold: %d}, ", c.Stock.Threshold))
	b.WriteString(fmt.Sprintf("Ingest: {Workers: %d, MaxFileSize: %d, ValidateRows: %v}, ",
		c.Ingest.Workers, c.Ingest.MaxFileSize, c.Ingest.ValidateRows))
	b.WriteString(fmt.Sprintf("Report: {Output: %q, Format: %q}, ", c.Report.Output, c.Report.Format))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, File: %q}, ",
		c.Logging.Level, c.Logging.Format, c.Logging.File))
	b.WriteString(fmt.Sprintf("Schedule: {Cron: %q, Watch: %v}", c.Schedule.Cron, c.Schedule.Watch))
	b.WriteString("}")
	return b.String()
}
