// Package cache persists generated summaries keyed by document path.
//
// An entry is reused only while its stored hash matches the document's
// current fingerprint. The store is loaded once per run, mutated in
// memory, and written back in full at the end.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Entry is a cached summary. JSON field names match existing cache files.
type Entry struct {
	Hash      string `json:"hash"`
	Summary   string `json:"summary"`
	Title     string `json:"title"`
	Generator string `json:"generator,omitempty"` // Backend that wrote Summary
}

// Store maps a document path to its cached entry.
type Store map[string]Entry

// Get returns the entry for id.
func (s Store) Get(id string) (Entry, bool) {
	e, ok := s[id]
	return e, ok
}

// Put inserts or overwrites the entry for id.
func (s Store) Put(id string, e Entry) {
	s[id] = e
}

// Lookup returns the entry for id if it was generated from content with
// the given fingerprint.
func (s Store) Lookup(id, fingerprint string) (Entry, bool) {
	e, ok := s[id]
	if !ok || e.Hash != fingerprint {
		return Entry{}, false
	}
	return e, true
}

// Prune removes entries whose id is not in keep and returns how many were
// removed.
func (s Store) Prune(keep map[string]struct{}) int {
	removed := 0
	for id := range s {
		if _, ok := keep[id]; !ok {
			delete(s, id)
			removed++
		}
	}
	return removed
}

// File reads and writes a Store as a JSON file.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile creates a File for path on fs.
func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load returns the persisted store. A missing, unreadable or corrupt file
// yields an empty store.
func (f *File) Load() Store {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache unreadable, starting empty", "path", f.path, "error", err)
		}
		return Store{}
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		slog.Warn("cache corrupt, starting empty", "path", f.path, "error", err)
		return Store{}
	}
	if store == nil {
		// "null" decodes to a nil map.
		return Store{}
	}

	slog.Debug("cache loaded", "path", f.path, "entries", len(store))
	return store
}

// Save replaces the file with store. The data is written to a temporary
// file in the same directory and renamed into place, so an interrupted
// save leaves the previous file intact.
func (f *File) Save(store Store) error {
	data, err := Marshal(store)
	if err != nil {
		return err
	}

	if err := WriteAtomic(f.fs, f.path, data); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}

	slog.Debug("cache saved", "path", f.path, "entries", len(store))
	return nil
}

// Marshal encodes store as indented JSON with sorted keys and no HTML
// escaping.
func Marshal(store Store) ([]byte, error) {
	if store == nil {
		store = Store{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(store); err != nil {
		return nil, fmt.Errorf("failed to marshal cache: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteAtomic writes data to a temp file next to path and renames it over
// path.
func WriteAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := fs.Chmod(tmpName, 0o644); err != nil {
		slog.Debug("chmod temp file failed", "path", tmpName, "error", err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
