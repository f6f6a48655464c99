package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfenderov/llmsref/pkg/models"
)

// Separator starts every entry record.
const Separator = "---"

// Header is the preamble of the artifact.
type Header struct {
	Title     string
	Generated time.Time
	Source    string
}

// Render builds the artifact: the header block, then one separator
// delimited record per entry, lines joined by "\n".
func Render(h Header, entries []models.Entry) string {
	lines := []string{
		"# " + h.Title,
		"# Generated: " + h.Generated.Format("2006-01-02 15:04"),
		"# Source: " + h.Source,
		fmt.Sprintf("# Entries: %d", len(entries)),
		"",
	}

	for _, e := range entries {
		lines = append(lines,
			Separator,
			"## "+e.Title,
			"path: "+e.Path,
			"url: "+e.URL,
			"",
			e.Summary,
			"",
		)
	}

	return strings.Join(lines, "\n")
}
