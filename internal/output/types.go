// internal/output/types.go

// Package output writes harvested records: a mandatory JSON array plus any
// configured extra exports.
package output

import (
	"fmt"
)

// OutputFormat names an export format.
type OutputFormat string

const (
	FormatJSON   OutputFormat = "json"
	FormatYAML   OutputFormat = "yaml"
	FormatSQLite OutputFormat = "sqlite"
)

// Writer defines the interface for export writers. Records arrive as the
// generic form of the JSON document.
type Writer interface {
	Write(data []map[string]interface{}) error
	Close() error
}

// Result represents the outcome of one write.
type Result struct {
	Format       OutputFormat `json:"format"`
	FilePath     string       `json:"file_path"`
	RecordsCount int          `json:"records_count"`
	Error        string       `json:"error,omitempty"`
}

// Success reports whether the write completed.
func (r Result) Success() bool {
	return r.Error == ""
}

// ParseFormat validates an export format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case FormatJSON, FormatYAML, FormatSQLite:
		return OutputFormat(name), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}
