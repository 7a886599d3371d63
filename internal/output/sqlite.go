// internal/output/sqlite.go
package output

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteOptions configures the SQLite export.
type SQLiteOptions struct {
	DatabasePath string
	Table        string
}

// SQLiteWriter writes one row per record: id, title, source and the full
// record as a JSON payload. Each Write replaces the table contents.
type SQLiteWriter struct {
	db     *sql.DB
	table  string
	closed bool
}

// NewSQLiteWriter creates a new SQLite writer
func NewSQLiteWriter(options SQLiteOptions) (*SQLiteWriter, error) {
	if options.DatabasePath == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}
	if !tableNamePattern.MatchString(options.Table) {
		return nil, fmt.Errorf("invalid SQLite table name %q", options.Table)
	}

	if dir := filepath.Dir(options.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", options.DatabasePath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	w := &SQLiteWriter{db: db, table: options.Table}
	if err := w.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) createTable() error {
	query := `CREATE TABLE IF NOT EXISTS [` + w.table + `] (
		id INTEGER PRIMARY KEY,
		title TEXT,
		source TEXT,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table '%s': %w", w.table, err)
	}
	return nil
}

// Write replaces the table contents with data inside one transaction.
func (w *SQLiteWriter) Write(data []map[string]interface{}) error {
	if w.closed {
		return fmt.Errorf("SQLite writer is closed")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM [` + w.table + `]`); err != nil {
		return fmt.Errorf("failed to clear table '%s': %w", w.table, err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO [` + w.table + `] (id, title, source, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range data {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		if _, err := stmt.Exec(recordID(record), stringField(record, "title"), stringField(record, "source"), string(payload)); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database
func (w *SQLiteWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.db.Close()
}

// recordID returns the numeric id of a decoded record, or nil to let SQLite assign one.
func recordID(record map[string]interface{}) interface{} {
	switch v := record["id"].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return nil
	}
}

func stringField(record map[string]interface{}, key string) sql.NullString {
	if s, ok := record[key].(string); ok {
		return sql.NullString{String: s, Valid: true}
	}
	return sql.NullString{}
}
