// internal/config/validation.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/hscicharvest/internal/utils"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationResult holds validation results
type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

func (r *ValidationResult) add(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	result := c.ValidateWithDetails()
	if len(result.Errors) > 0 {
		return formatValidationError(result)
	}
	return nil
}

// ValidateWithDetails provides detailed validation results
func (c *Config) ValidateWithDetails() *ValidationResult {
	result := &ValidationResult{Errors: make([]ValidationError, 0)}

	if !utils.IsValidURL(c.SiteRoot) {
		result.add("site_root", c.SiteRoot, "site root must be an absolute URL")
	}
	if c.PageSize < 1 {
		result.add("page_size", fmt.Sprint(c.PageSize), "page size must be positive")
	}
	if c.RequestTimeout < 0 {
		result.add("request_timeout", c.RequestTimeout.String(), "request timeout cannot be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result.add("log.level", c.Log.Level, "log level must be debug, info, warn or error")
	}

	c.validateDatasets(result)
	c.validateIndicators(result)

	return result
}

func (c *Config) validateDatasets(result *ValidationResult) {
	d := c.Datasets
	if strings.TrimSpace(d.CacheDir) == "" {
		result.add("datasets.cache_dir", d.CacheDir, "cache directory is required")
	}
	validateOutput("datasets.output", d.Output, result)
}

func (c *Config) validateIndicators(result *ValidationResult) {
	i := c.Indicators
	if !utils.IsValidURL(i.SiteRoot) {
		result.add("indicators.site_root", i.SiteRoot, "indicator site root must be an absolute URL")
	}
	if !strings.Contains(i.URLTemplate, "{id}") {
		result.add("indicators.url_template", i.URLTemplate, "URL template must contain {id}")
	}
	if i.FirstID < 1 {
		result.add("indicators.first_id", fmt.Sprint(i.FirstID), "first indicator id must be at least 1")
	}
	if i.LastID < i.FirstID {
		result.add("indicators.last_id", fmt.Sprint(i.LastID), "last indicator id cannot precede the first")
	}
	if strings.TrimSpace(i.CacheDir) == "" {
		result.add("indicators.cache_dir", i.CacheDir, "cache directory is required")
	}
	validateOutput("indicators.output", i.Output, result)
}

func validateOutput(prefix string, output OutputConfig, result *ValidationResult) {
	if strings.TrimSpace(output.File) == "" {
		result.add(prefix+".file", output.File, "output file is required")
	}
	for n, export := range output.Exports {
		field := fmt.Sprintf("%s.exports[%d]", prefix, n)
		switch export.Format {
		case "yaml", "sqlite":
		default:
			result.add(field+".format", export.Format, "export format must be yaml or sqlite")
		}
		if strings.TrimSpace(export.File) == "" {
			result.add(field+".file", export.File, "export file is required")
		}
		if export.File != "" && export.File == output.File {
			result.add(field+".file", export.File, "export file would overwrite the JSON output")
		}
	}
}

// formatValidationError creates a comprehensive error message
func formatValidationError(result *ValidationResult) error {
	var errorMsg strings.Builder

	errorMsg.WriteString("configuration validation failed:\n")
	for i, err := range result.Errors {
		errorMsg.WriteString(fmt.Sprintf("  %d. %s", i+1, err.Message))
		if err.Field != "" {
			errorMsg.WriteString(fmt.Sprintf(" (field: %s)", err.Field))
		}
		if err.Value != "" {
			errorMsg.WriteString(fmt.Sprintf(" (value: %s)", err.Value))
		}
		errorMsg.WriteString("\n")
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.TrimRight(errorMsg.String(), "\n"))
}
