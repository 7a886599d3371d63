// internal/output/manager_test.go
package output

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/valpere/hscicharvest/internal/config"
	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

func sampleRecords() []types.ItemRecord {
	return []types.ItemRecord{
		{
			ItemStub:        types.ItemStub{Keywords: []string{"A"}},
			Source:          "http://catalogue.test/searchcatalogue?productid=1",
			Title:           "First",
			ID:              1,
			PublicationDate: "1 May 2014",
			Sources:         []types.SourceFile{},
		},
		{
			ItemStub:        types.ItemStub{Topics: []string{"X"}},
			Source:          "http://catalogue.test/searchcatalogue?productid=2",
			Title:           "Second",
			ID:              2,
			PublicationDate: "2 May 2014",
			Sources:         []types.SourceFile{{URL: "http://catalogue.test/f.csv", Description: "F", Filetype: "csv"}},
		},
	}
}

func TestManager_WritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "datasets.json")
	m, err := NewManager(&config.OutputConfig{File: path}, nil)
	require.NoError(t, err)

	results, err := m.Write(sampleRecords()[:1])
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success())
	assert.Equal(t, 1, results[0].RecordsCount)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "keywords": [
      "A"
    ],
    "source": "http://catalogue.test/searchcatalogue?productid=1",
    "title": "First",
    "id": 1,
    "publication_date": "1 May 2014",
    "sources": []
  }
]`, string(data))
}

func TestManager_EmptyRunWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.json")
	m, err := NewManager(&config.OutputConfig{File: path}, nil)
	require.NoError(t, err)

	_, err = m.Write([]*types.Indicator{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestManager_YAMLExport(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(&config.OutputConfig{
		File:    filepath.Join(dir, "datasets.json"),
		Exports: []config.ExportConfig{{Format: "yaml", File: filepath.Join(dir, "datasets.yaml")}},
	}, nil)
	require.NoError(t, err)

	results, err := m.Write(sampleRecords())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[1].Success())

	data, err := os.ReadFile(filepath.Join(dir, "datasets.yaml"))
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Second", decoded[1]["title"])
	assert.Equal(t, []interface{}{"X"}, decoded[1]["topics"])
}

func TestManager_ExportFailureIsLoggedNotReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	core, logs := observer.New(zap.InfoLevel)
	m, err := NewManager(&config.OutputConfig{
		File:    filepath.Join(dir, "datasets.json"),
		Exports: []config.ExportConfig{{Format: "yaml", File: filepath.Join(blocker, "datasets.yaml")}},
	}, utils.NewLoggerFromZap(zap.New(core)))
	require.NoError(t, err)

	results, err := m.Write(sampleRecords())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[1].Success())

	_, statErr := os.Stat(filepath.Join(dir, "datasets.json"))
	assert.NoError(t, statErr)
	assert.Equal(t, 1, logs.FilterMessageSnippet("export failed").Len())
}

func TestManager_RejectsUnknownFormat(t *testing.T) {
	_, err := NewManager(&config.OutputConfig{
		File:    "x.json",
		Exports: []config.ExportConfig{{Format: "csv", File: "x.csv"}},
	}, nil)
	assert.Error(t, err)

	_, err = NewManager(nil, nil)
	assert.Error(t, err)
}

func TestSQLiteWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	w, err := NewSQLiteWriter(SQLiteOptions{DatabasePath: path, Table: "datasets"})
	if err != nil && strings.Contains(err.Error(), "CGO_ENABLED=0") {
		t.Skip("sqlite3 driver needs cgo")
	}
	require.NoError(t, err)

	rows := []map[string]interface{}{
		{"id": float64(1), "title": "First", "source": "http://x.test/1"},
		{"id": float64(2), "title": "Second", "source": "http://x.test/2"},
	}
	require.NoError(t, w.Write(rows))
	// a later run without record 1 leaves only record 2
	require.NoError(t, w.Write(rows[1:]))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM datasets WHERE id = 1").Scan(&count))
	assert.Zero(t, count)

	var title, payload string
	require.NoError(t, db.QueryRow("SELECT title, payload FROM datasets WHERE id = 2").Scan(&title, &payload))
	assert.Equal(t, "Second", title)
	assert.JSONEq(t, `{"id":2,"title":"Second","source":"http://x.test/2"}`, payload)
}

func TestSQLiteWriter_EmptyWriteClearsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	w, err := NewSQLiteWriter(SQLiteOptions{DatabasePath: path, Table: "indicators"})
	if err != nil && strings.Contains(err.Error(), "CGO_ENABLED=0") {
		t.Skip("sqlite3 driver needs cgo")
	}
	require.NoError(t, err)

	require.NoError(t, w.Write([]map[string]interface{}{{"id": float64(7), "title": "Seven"}}))
	require.NoError(t, w.Write(nil))
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM indicators").Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteWriter_RejectsBadTable(t *testing.T) {
	_, err := NewSQLiteWriter(SQLiteOptions{DatabasePath: filepath.Join(t.TempDir(), "x.db"), Table: "x; DROP"})
	assert.Error(t, err)
}
