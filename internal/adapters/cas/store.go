// Package cas persists compiled style units between builds.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

var (
	_ ports.UnitStore        = (*Store)(nil)
	_ ports.UnitStoreFactory = (*Factory)(nil)
)

// Store implements ports.UnitStore using a flat JSON file.
// Records are kept in memory and written on Flush.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.UnitRecord
	dirty bool
}

// NewStore creates a new Store backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.UnitRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read unit store"), "path", s.path)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal unit store"), "path", s.path)
	}
	return nil
}

// Get retrieves the record of a unit. It returns nil, nil when absent.
func (s *Store) Get(id string) (*domain.UnitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.cache[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Put stores the record in memory.
func (s *Store) Put(rec domain.UnitRecord) error {
	if rec.ID == "" {
		return zerr.New("unit record has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[rec.ID] = rec
	s.dirty = true
	return nil
}

// Flush writes the records to disk if anything changed since the last flush.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal unit store")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for unit store")
	}
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write unit store"), "path", s.path)
	}
	s.dirty = false
	return nil
}

// Factory opens file backed stores.
type Factory struct{}

// NewFactory creates a new Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Open opens the store at path.
func (f *Factory) Open(path string) (ports.UnitStore, error) {
	return NewStore(path)
}
