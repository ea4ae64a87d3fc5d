package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	DataDir          string        `mapstructure:"data_dir" yaml:"data_dir"`
	StoreBackend     string        `mapstructure:"store_backend" yaml:"store_backend"`
	DatabasePath     string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile          string        `mapstructure:"log_file" yaml:"log_file"`
	AnnounceInterval time.Duration `mapstructure:"announce_interval" yaml:"announce_interval"`
	ReportInterval   time.Duration `mapstructure:"report_interval" yaml:"report_interval"`
	HistoryLines     int           `mapstructure:"history_lines" yaml:"history_lines"`
}

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:             ":7000",
		DataDir:          "db",
		StoreBackend:     StoreFile,
		DatabasePath:     "db/crisischat.db",
		LogLevel:         "info",
		LogFile:          "",
		AnnounceInterval: 10 * time.Second,
		ReportInterval:   60 * time.Second,
		HistoryLines:     5,
	}
}
