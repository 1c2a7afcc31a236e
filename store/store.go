// Package store persists catalog records into a single JSON file keyed
// by canonical entry name.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/aluiziolira/go-scrape-pokedex/models"
)

// PersistenceError reports a failed store write. The pipeline treats it
// as fatal: durability cannot be guaranteed once writes fail.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store holds the full record set in memory and rewrites the backing
// file on every Save. Owned by a single goroutine; not safe for
// concurrent use.
type Store struct {
	path    string
	records map[string]*models.Record
}

// Open loads the store at path. A missing file yields an empty store;
// so does malformed content, which is logged and then overwritten by
// the next Save.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]*models.Record),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		slog.Warn("store file malformed, starting empty",
			slog.String("path", path),
			slog.Any("error", err),
		)
		s.records = make(map[string]*models.Record)
	}
	return s, nil
}

// Has reports whether a record exists under name.
func (s *Store) Has(name string) bool {
	_, ok := s.records[name]
	return ok
}

// Get returns the record stored under name.
func (s *Store) Get(name string) (*models.Record, bool) {
	r, ok := s.records[name]
	return r, ok
}

// Upsert stores record under name, replacing any existing record.
func (s *Store) Upsert(name string, record *models.Record) {
	s.records[name] = record
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Names returns the stored entry names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save rewrites the whole store: marshal, write a temp file next to the
// target, then rename. The rename keeps a crash from leaving a
// half-written store behind.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	data = append(data, '\n')

	if err := ensureDir(s.path); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
