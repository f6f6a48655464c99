// Package resolver maps document paths to their public URLs.
package resolver

import (
	"path"
	"path/filepath"
	"strings"
)

// Config holds URL resolution settings.
type Config struct {
	Root    string // Docs root, e.g. "docs"
	BaseURL string // Site URL, e.g. "https://docs.example.com"
	Index   string // Stem that collapses to its directory, e.g. "index"
	Landing string // Root-level stem served at the site root, e.g. "intro"
}

// Resolver converts filesystem paths to URLs.
type Resolver struct {
	root    string
	baseURL string
	index   string
	landing string
}

// New creates a Resolver.
func New(config Config) *Resolver {
	return &Resolver{
		root:    filepath.ToSlash(filepath.Clean(config.Root)),
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		index:   config.Index,
		landing: config.Landing,
	}
}

// Resolve returns the public URL of the document at p. p may include the
// docs root ("docs/apps/overview.md") or be relative to it.
func (r *Resolver) Resolve(p string) string {
	rel := r.relative(p)
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	switch {
	case r.index != "" && rel == r.index:
		rel = ""
	case r.index != "" && strings.HasSuffix(rel, "/"+r.index):
		rel = strings.TrimSuffix(rel, "/"+r.index)
	case r.landing != "" && rel == r.landing:
		rel = ""
	}

	if rel == "" {
		return r.baseURL
	}
	return r.baseURL + "/" + rel
}

func (r *Resolver) relative(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	if r.root != "." && r.root != "" {
		if p == r.root {
			return ""
		}
		p = strings.TrimPrefix(p, r.root+"/")
	}
	return strings.TrimPrefix(p, "./")
}
