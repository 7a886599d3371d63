// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultSiteRoot           = "http://www.hscic.gov.uk"
	DefaultIndicatorsSiteRoot = "https://indicators.ic.nhs.uk"
	DefaultIndicatorsTemplate = "https://indicators.ic.nhs.uk/webview/velocity?v=2&mode=documentation&submode=ddi&study=http%3A%2F%2F172.16.9.26%3A80%2Fobj%2FfStudy%2FP{id}"
	DefaultPageSize           = 100
	DefaultLastIndicatorID    = 1698
	DefaultLogLevel           = "info"
	DefaultSQLiteTable        = "records"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	config := &Config{
		Log: LogConfig{Console: true},
	}
	applyDefaults(config)
	return config
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Unset fields keep their
// default values; ${VAR} references are expanded from the environment.
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expandedData := expandEnvironmentVariables(string(data))

	config := &Config{
		Log: LogConfig{Console: true},
	}
	if err := yaml.Unmarshal([]byte(expandedData), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveToWriter saves configuration to an io.Writer
func SaveToWriter(config *Config, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	return nil
}

// expandEnvironmentVariables substitutes environment variables in the configuration
func expandEnvironmentVariables(content string) string {
	return os.ExpandEnv(content)
}

// applyDefaults applies default values to the configuration
func applyDefaults(config *Config) {
	if config.SiteRoot == "" {
		config.SiteRoot = DefaultSiteRoot
	}

	if config.PageSize == 0 {
		config.PageSize = DefaultPageSize
	}

	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}

	d := &config.Datasets
	if d.CacheDir == "" {
		d.CacheDir = "datasets_raw"
	}
	if d.Output.File == "" {
		d.Output.File = "datasets.json"
	}
	if d.LogFile == "" {
		d.LogFile = "datasets.log"
	}

	i := &config.Indicators
	if i.SiteRoot == "" {
		i.SiteRoot = DefaultIndicatorsSiteRoot
	}
	if i.URLTemplate == "" {
		i.URLTemplate = DefaultIndicatorsTemplate
	}
	if i.FirstID == 0 {
		i.FirstID = 1
	}
	if i.LastID == 0 {
		i.LastID = DefaultLastIndicatorID
	}
	if i.CacheDir == "" {
		i.CacheDir = "indicators_raw"
	}
	if i.Output.File == "" {
		i.Output.File = "indicators.json"
	}
	if i.LogFile == "" {
		i.LogFile = "indicators.log"
	}

	for _, output := range []*OutputConfig{&d.Output, &i.Output} {
		for n := range output.Exports {
			if output.Exports[n].Format == "sqlite" && output.Exports[n].Table == "" {
				output.Exports[n].Table = DefaultSQLiteTable
			}
		}
	}
}
