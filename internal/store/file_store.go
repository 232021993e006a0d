package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"concerto/internal/links"
)

// FileStore persists the whole record map as one JSON document keyed by the
// cache version name. The natural choice for single-node deployments; the
// file is rewritten in full on every Put.
type FileStore struct {
	path    string
	records map[string]*links.Record
	mu      sync.RWMutex
}

// NewFileStore loads (or initializes) a file-backed store. A missing or
// corrupt file yields an empty cache, never an error: losing a cache is
// routine, losing the process over it is not.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	s := &FileStore{
		path:    path,
		records: make(map[string]*links.Record),
	}
	s.load()
	return s, nil
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read cache file, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var envelope map[string]map[string]*links.Record
	if err := json.Unmarshal(data, &envelope); err != nil {
		slog.Warn("Cache file is corrupt, starting empty", "path", s.path, "error", err)
		return
	}

	// A JSON null under the version key decodes to a nil map; treat it
	// like any other corrupt payload and keep the empty cache writable.
	if records, ok := envelope[links.CacheVersion]; ok && records != nil {
		s.records = records
	}
	// A file written under an older version key simply yields an empty
	// cache; records re-resolve on demand.
}

// Get retrieves a record from the in-memory map.
func (s *FileStore) Get(key string) (*links.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	return record, ok
}

// Put stores a record and rewrites the whole file before returning.
func (s *FileStore) Put(ctx context.Context, key string, record *links.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = record

	envelope := map[string]map[string]*links.Record{
		links.CacheVersion: s.records,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return &StoreError{Operation: "put", Key: key, Err: err}
	}

	// Write to a sibling temp file and rename so a crash mid-write cannot
	// corrupt the existing cache.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StoreError{Operation: "put", Key: key, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &StoreError{Operation: "put", Key: key, Err: err}
	}

	return nil
}

// Len returns the number of cached records.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Backend names the persistence medium.
func (s *FileStore) Backend() string {
	return "file"
}

// Close is a no-op; the file is written synchronously on every Put.
func (s *FileStore) Close() error {
	return nil
}
