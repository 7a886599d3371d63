// internal/output/yaml.go
package output

import (
	"bytes"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/valpere/hscicharvest/internal/utils"
)

// YAMLWriter implements the Writer interface for YAML output
type YAMLWriter struct {
	filename string
	indent   int
}

// NewYAMLWriter creates a new YAML writer
func NewYAMLWriter(filename string) (*YAMLWriter, error) {
	if filename == "" {
		return nil, fmt.Errorf("YAML file path is required")
	}
	return &YAMLWriter{filename: filename, indent: 2}, nil
}

// Write writes all records as a single YAML document holding a sequence.
func (w *YAMLWriter) Write(data []map[string]interface{}) error {
	if data == nil {
		data = []map[string]interface{}{}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(w.indent)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finish YAML document: %w", err)
	}

	if dir := filepath.Dir(w.filename); dir != "." {
		if _, err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	if err := utils.WriteFileAtomic(w.filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.filename, err)
	}
	return nil
}

// Close is a no-op; every write is complete on return.
func (w *YAMLWriter) Close() error {
	return nil
}
