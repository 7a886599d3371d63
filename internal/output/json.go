// internal/output/json.go
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/valpere/hscicharvest/internal/utils"
)

// ErrWrite is matched by failures to write the JSON output file.
var ErrWrite = errors.New("failed to write output")

// JSONWriter writes records as one indented JSON array. The file is replaced
// atomically so an interrupted run never leaves a truncated document.
type JSONWriter struct {
	filename string
}

// NewJSONWriter creates a new JSON writer
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if filename == "" {
		return nil, fmt.Errorf("JSON file path is required")
	}
	return &JSONWriter{filename: filename}, nil
}

// Encode renders records in the output layout without writing them.
func Encode(records interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

// WriteValue encodes records, which must marshal to a JSON array, and
// replaces the output file.
func (w *JSONWriter) WriteValue(records interface{}) ([]byte, error) {
	data, err := Encode(records)
	if err != nil {
		return nil, err
	}
	if err := w.writeBytes(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Write writes generic records to the JSON file
func (w *JSONWriter) Write(data []map[string]interface{}) error {
	if data == nil {
		data = []map[string]interface{}{}
	}
	_, err := w.WriteValue(data)
	return err
}

// Close is a no-op; every write is complete on return.
func (w *JSONWriter) Close() error {
	return nil
}

func (w *JSONWriter) writeBytes(data []byte) error {
	if dir := filepath.Dir(w.filename); dir != "." {
		if _, err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("%w %s: %w", ErrWrite, w.filename, err)
		}
	}
	if err := utils.WriteFileAtomic(w.filename, data, 0644); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, w.filename, err)
	}
	return nil
}
