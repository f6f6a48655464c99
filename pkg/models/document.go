package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Document is a source page discovered under the docs root.
type Document struct {
	Path    string   // Identity and cache key, e.g. "docs/apps/overview.md"
	RelPath string   // Path relative to the docs root, slash separated
	Content string   // Raw file content, header included
	Meta    Metadata // Parsed header, empty when absent or malformed
	Body    string   // Content with the header stripped
}

// Name returns the document's filename.
func (d Document) Name() string {
	if i := strings.LastIndex(d.RelPath, "/"); i >= 0 {
		return d.RelPath[i+1:]
	}
	return d.RelPath
}

// Dir returns the slash separated directory of the document relative to
// the docs root, or "" for root-level documents.
func (d Document) Dir() string {
	if i := strings.LastIndex(d.RelPath, "/"); i >= 0 {
		return d.RelPath[:i]
	}
	return ""
}

// Entry is one record of the generated reference file.
type Entry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Metadata holds header key/values. Values are string, bool or int.
type Metadata map[string]any

// String returns the value for key formatted as a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Bool returns the value for key if it was parsed as a boolean.
func (m Metadata) Bool(key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// Int returns the value for key if it was parsed as an integer.
func (m Metadata) Int(key string) (int, bool) {
	i, ok := m[key].(int)
	return i, ok
}

// Fingerprint returns a short digest of the full raw content, used to
// detect changes between runs.
func Fingerprint(content string) string {
	return shortHash(content)
}

// GenerateDocumentID creates a deterministic ID from a document path.
// The ID is a SHA-256 hash (first 16 chars) of the path.
func GenerateDocumentID(path string) string {
	return shortHash(path)
}

func shortHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])[:16]
}
