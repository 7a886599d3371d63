// internal/cache/store.go

// Package cache keeps fetched pages and completed label indexes on disk so a
// harvest can be re-run or resumed without repeating network requests.
// Presence of an entry is the only validity check: there is no expiry.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/valpere/hscicharvest/internal/utils"
	"github.com/valpere/hscicharvest/pkg/types"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("cache entry not found")

// ErrInvalidKey is returned for keys that are not a single file name.
var ErrInvalidKey = errors.New("invalid cache key")

// Store maps keys to files inside one directory.
type Store struct {
	dir    string
	logger utils.Logger
}

// NewStore creates a store rooted at dir. The directory is created on first write.
func NewStore(dir string, logger utils.Logger) *Store {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Store{
		dir:    dir,
		logger: logger.WithField("cache_dir", dir),
	}
}

// PageKey is the key of an item's raw detail page.
func PageKey(id types.ItemID) string {
	return strconv.Itoa(int(id)) + ".html"
}

// IndexKey is the key of a serialized label index.
func IndexKey(name string) string {
	return name + ".json"
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir creates the backing directory if it is absent.
func (s *Store) EnsureDir() error {
	created, err := utils.EnsureDir(s.dir)
	if err != nil {
		return err
	}
	if created {
		s.logger.Infof("Creating directory %s", s.dir)
	}
	return nil
}

// Has reports whether an entry exists for key.
func (s *Store) Has(key string) bool {
	path, err := s.path(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the stored bytes for key, or ErrNotFound.
func (s *Store) Read(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	return data, nil
}

// Write stores data under key, replacing any previous entry.
func (s *Store) Write(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.EnsureDir(); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// ReadJSON decodes the entry for key into v.
func (s *Store) ReadJSON(key string, v interface{}) error {
	data, err := s.Read(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return nil
}

// WriteJSON stores v as indented JSON under key.
func (s *Store) WriteJSON(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return s.Write(key, data)
}

func (s *Store) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key), nil
}
