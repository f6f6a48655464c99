// Package frontmatter reads the flat key/value header at the top of a
// markdown document.
//
// The dialect is intentionally small: a "---" line, one "key: value" per
// line, and a closing "---" line. Values are scalars only. Anything the
// scanner does not understand degrades to "no metadata" instead of failing.
package frontmatter

import (
	"strconv"
	"strings"

	"github.com/mfenderov/llmsref/pkg/models"
)

// Delimiter opens and closes the header block.
const Delimiter = "---"

// Parse splits content into its header metadata and body. Content without
// a well-formed header is returned unchanged with empty metadata.
func Parse(content string) (models.Metadata, string) {
	first, rest, ok := cutLine(content)
	if !ok || first != Delimiter {
		return models.Metadata{}, content
	}

	var header []string
	for {
		line, next, more := cutLine(rest)
		if line == Delimiter {
			meta := parseHeader(header)
			return meta, next
		}
		if !more {
			// Unterminated header.
			return models.Metadata{}, content
		}
		header = append(header, line)
		rest = next
	}
}

// cutLine returns the first line of s (without its newline or a trailing
// carriage return), the remainder after the newline, and whether a newline
// was found.
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, found
}

func parseHeader(lines []string) models.Metadata {
	meta := models.Metadata{}
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		meta[key] = coerce(strings.TrimSpace(value))
	}
	return meta
}

// coerce applies the first matching rule: boolean, integer, quoted string,
// raw string.
func coerce(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}

	if isDigits(value) {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}

	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}

	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
