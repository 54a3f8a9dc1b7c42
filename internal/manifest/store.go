package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store is the ledger of tracked resources. The gateway only lists and
// removes; creation happens wherever resources are provisioned.
type Store interface {
	// List returns records, optionally filtered by type ("" means all).
	List(typeFilter Type) []Record
	// Remove deletes the record matching type and id, reporting whether a
	// matching record existed.
	Remove(t Type, id string) bool
	// Add appends a record, stamping CreatedAt when unset.
	Add(rec Record) error
}

// FileStore persists the manifest as a JSON document on disk. Every mutation
// rewrites the file; the record counts involved make that cheap.
type FileStore struct {
	mu      sync.Mutex
	path    string
	records []Record
}

type manifestDoc struct {
	Resources []Record `json:"resources"`
}

// NewFileStore loads (or initialises) the manifest at path.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	store.records = doc.Resources
	return store, nil
}

// List returns a copy of the tracked records, optionally filtered by type.
func (s *FileStore) List(typeFilter Type) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if typeFilter != "" && rec.Type != typeFilter {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Remove drops the record with the given type and id, reporting whether it
// was present. The file is rewritten only when something changed.
func (s *FileStore) Remove(t Type, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	found := false
	for _, rec := range s.records {
		if rec.Type == t && rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return false
	}
	s.records = kept
	// The in-memory view is authoritative; a failed flush is repaired by
	// the next successful one.
	_ = s.flush()
	return true
}

// Add appends a record and persists the manifest.
func (s *FileStore) Add(rec Record) error {
	if rec.Type == "" || rec.ID == "" {
		return errors.New("manifest: record requires type and id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.flush()
}

func (s *FileStore) flush() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("manifest: create dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(manifestDoc{Resources: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", s.path, err)
	}
	return nil
}
