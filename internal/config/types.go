// internal/config/types.go

// Package config provides the configuration of a harvest: where the catalogue
// lives, where raw pages are cached, and where records and logs are written.
package config

import (
	"time"
)

// Config represents the main configuration structure for both harvest runs.
type Config struct {
	// SiteRoot is the catalogue site searched for datasets
	SiteRoot string `yaml:"site_root" json:"site_root"`

	UserAgent string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`

	// Headers are sent with every request
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// RequestTimeout of zero leaves the transport default in place
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty"`

	// PageSize is the number of search results requested per page
	PageSize int `yaml:"page_size" json:"page_size"`

	// MetricsFile receives a Prometheus text dump at the end of a run
	MetricsFile string `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`

	Log LogConfig `yaml:"log" json:"log"`

	Datasets DatasetsConfig `yaml:"datasets" json:"datasets"`

	Indicators IndicatorsConfig `yaml:"indicators" json:"indicators"`
}

// LogConfig defines logging settings shared by both runs.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`

	// Console mirrors the log to stderr
	Console bool `yaml:"console" json:"console"`
}

// DatasetsConfig defines the dataset run.
type DatasetsConfig struct {
	CacheDir string       `yaml:"cache_dir" json:"cache_dir"`
	Output   OutputConfig `yaml:"output" json:"output"`
	LogFile  string       `yaml:"log_file" json:"log_file"`
}

// IndicatorsConfig defines the indicator run.
type IndicatorsConfig struct {
	// SiteRoot prefixes links found in indicator metadata
	SiteRoot string `yaml:"site_root" json:"site_root"`

	// URLTemplate addresses one indicator page; {id} is replaced by the
	// zero-padded indicator number
	URLTemplate string `yaml:"url_template" json:"url_template"`

	FirstID int `yaml:"first_id" json:"first_id"`
	LastID  int `yaml:"last_id" json:"last_id"`

	CacheDir string       `yaml:"cache_dir" json:"cache_dir"`
	Output   OutputConfig `yaml:"output" json:"output"`
	LogFile  string       `yaml:"log_file" json:"log_file"`
}

// OutputConfig defines where records are written.
type OutputConfig struct {
	// File receives the JSON array of records
	File string `yaml:"file" json:"file"`

	// Exports are optional extra copies in other formats
	Exports []ExportConfig `yaml:"exports,omitempty" json:"exports,omitempty"`
}

// ExportConfig defines one extra export.
type ExportConfig struct {
	// Format is yaml or sqlite
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`

	// Table is the SQLite table name
	Table string `yaml:"table,omitempty" json:"table,omitempty"`
}
