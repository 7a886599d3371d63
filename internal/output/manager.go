// internal/output/manager.go
package output

import (
	"encoding/json"
	"fmt"

	"github.com/valpere/hscicharvest/internal/config"
	"github.com/valpere/hscicharvest/internal/utils"
)

// Manager writes the JSON output and then every configured export.
type Manager struct {
	json    *JSONWriter
	exports []config.ExportConfig
	logger  utils.Logger
}

// NewManager creates a new output manager
func NewManager(cfg *config.OutputConfig, logger utils.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("output configuration is required")
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	jsonWriter, err := NewJSONWriter(cfg.File)
	if err != nil {
		return nil, err
	}
	for _, export := range cfg.Exports {
		if _, err := ParseFormat(export.Format); err != nil {
			return nil, err
		}
	}

	return &Manager{
		json:    jsonWriter,
		exports: cfg.Exports,
		logger:  logger,
	}, nil
}

// Write writes records, a slice of typed records, to the JSON output and
// then to each export. Only a JSON failure is returned; export failures are
// logged and reported in the results.
func (m *Manager) Write(records interface{}) ([]Result, error) {
	data, err := m.json.WriteValue(records)
	if err != nil {
		return nil, err
	}

	var generic []map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("records must encode as a JSON array of objects: %w", err)
	}

	results := []Result{{Format: FormatJSON, FilePath: m.json.filename, RecordsCount: len(generic)}}
	m.logger.Infof("Written results to %s", m.json.filename)

	for _, export := range m.exports {
		result := Result{Format: OutputFormat(export.Format), FilePath: export.File, RecordsCount: len(generic)}
		if err := m.export(export, generic); err != nil {
			result.Error = err.Error()
			m.logger.WithFields(map[string]interface{}{
				"format": export.Format,
				"file":   export.File,
			}).Errorf("export failed: %v", err)
		} else {
			m.logger.Infof("Exported %d records to %s", len(generic), export.File)
		}
		results = append(results, result)
	}
	return results, nil
}

// GetWriter returns the writer for an export
func (m *Manager) GetWriter(export config.ExportConfig) (Writer, error) {
	format, err := ParseFormat(export.Format)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return NewJSONWriter(export.File)
	case FormatYAML:
		return NewYAMLWriter(export.File)
	case FormatSQLite:
		return NewSQLiteWriter(SQLiteOptions{DatabasePath: export.File, Table: export.Table})
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func (m *Manager) export(export config.ExportConfig, data []map[string]interface{}) error {
	writer, err := m.GetWriter(export)
	if err != nil {
		return fmt.Errorf("failed to get writer: %w", err)
	}
	defer writer.Close()

	return writer.Write(data)
}
