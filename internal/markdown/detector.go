package markdown

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultExtensions are the document extensions picked up by discovery.
var DefaultExtensions = []string{".md", ".mdx"}

// IsDocumentFile checks if a filename has one of the given extensions.
func IsDocumentFile(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsPartial reports whether the filename marks a partial that is only
// included by other pages.
func IsPartial(name, prefix string) bool {
	return prefix != "" && strings.HasPrefix(name, prefix)
}

// Stem returns the filename without directory and extension.
func Stem(name string) string {
	base := filepath.Base(filepath.FromSlash(name))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TitleFromFilename derives a display title from a filename:
// "getting-started.md" becomes "Getting Started".
func TitleFromFilename(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(Stem(name), "-", " "))
}

// LooksLikeHTML reports whether a block of text starts with an HTML
// element. JSX components (capitalised tags) and comments are not HTML.
func LooksLikeHTML(block string) bool {
	trimmed := strings.TrimSpace(block)
	if !strings.HasPrefix(trimmed, "<") {
		return false
	}

	z := html.NewTokenizer(strings.NewReader(trimmed))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return false
	}

	// The tokenizer lowercases tag names, so inspect the raw bytes.
	raw := string(z.Raw())
	if len(raw) < 2 {
		return false
	}
	first := raw[1]
	return first >= 'a' && first <= 'z'
}
