// Package ordering sorts documents the way a docs sidebar lists them.
package ordering

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mfenderov/llmsref/internal/markdown"
	"github.com/mfenderov/llmsref/pkg/models"
)

// Config controls how documents are ranked.
type Config struct {
	Landing         string // Stem of the root-level document pinned first, e.g. "intro"
	DefaultPosition int    // Position for documents without sidebar_position
}

// DefaultPosition sorts unpositioned documents after positioned siblings.
const DefaultPosition = 999

// Key is the sort key of one document.
type Key struct {
	Pinned   bool
	Depth    int
	Dir      string
	Position int
	Name     string
}

// KeyFor computes the sort key of doc.
func (c Config) KeyFor(doc models.Document) Key {
	dir := doc.Dir()
	name := doc.Name()

	if dir == "" && c.Landing != "" && markdown.Stem(name) == c.Landing {
		return Key{Pinned: true, Name: name}
	}

	depth := 0
	if dir != "" {
		depth = strings.Count(dir, "/") + 1
	}

	position := c.DefaultPosition
	if p, ok := doc.Meta.Int("sidebar_position"); ok {
		position = p
	}

	return Key{
		Depth:    depth,
		Dir:      dir,
		Position: position,
		Name:     name,
	}
}

// Compare orders two keys: pinned first, then depth, directory, position
// and filename.
func Compare(a, b Key) int {
	if a.Pinned != b.Pinned {
		if a.Pinned {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
		return c
	}
	if c := strings.Compare(a.Dir, b.Dir); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// Sort orders docs in place. The result does not depend on the input order.
func (c Config) Sort(docs []models.Document) {
	keys := make(map[string]Key, len(docs))
	for _, d := range docs {
		keys[d.RelPath] = c.KeyFor(d)
	}

	slices.SortStableFunc(docs, func(a, b models.Document) int {
		if r := Compare(keys[a.RelPath], keys[b.RelPath]); r != 0 {
			return r
		}
		// Only reachable for duplicate relative paths.
		return strings.Compare(a.Path, b.Path)
	})
}
