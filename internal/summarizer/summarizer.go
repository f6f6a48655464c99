// Package summarizer turns a document into dense reference text by
// calling an external tool.
//
// Failures are classified so the caller can decide whether to skip one
// document (ErrFailed, ErrTimeout, ErrEmptyResponse) or abort the whole
// run (ErrUnavailable).
package summarizer

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the tool cannot be reached at all.
	ErrUnavailable = errors.New("summarizer unavailable")
	// ErrFailed means the tool ran and reported an error.
	ErrFailed = errors.New("summarizer failed")
	// ErrTimeout means the call exceeded its deadline.
	ErrTimeout = errors.New("summarizer timed out")
	// ErrEmptyResponse means the tool succeeded but produced no text.
	ErrEmptyResponse = errors.New("summarizer returned empty response")
)

// Summarizer produces a summary for a titled document body.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (string, error)
	Name() string
}

// IsFatal reports whether err must stop the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.Canceled)
}

// DefaultMaxInputChars bounds the document text sent to the tool.
const DefaultMaxInputChars = 15000

const promptTemplate = `You are compressing documentation into LLM-optimized reference text.

INPUT DOCUMENT:
%s

TASK:
Produce a summary that maximizes semantic density, factual completeness, and retrievability.

RULES:
- Extract ALL concrete facts: names, URLs, IPs, ports, statuses, connections, specs
- Preserve technical identifiers exactly (hostnames, addresses, versions)
- Remove prose, explanations, context-setting, transitions
- Remove formatting artifacts (headers, bullets, tables) - output plain text
- Use terse notation: "Phone (app-phone, phone.example.com, Live): voicemail processing via Placetel"
- Compress related items: "Servers: Hornbill (apps, 10.0.0.25), Toucan (control, 10.0.0.98)"
- No introductions, conclusions, or meta-commentary
- Output raw facts only, optimized for retrieval

OUTPUT: Dense reference text, one paragraph, no line breaks unless separating major sections.`

// BuildPrompt wraps "# title\n\nbody" in the summarization instructions.
// The wrapped document is cut to maxInput runes; maxInput <= 0 uses
// DefaultMaxInputChars.
func BuildPrompt(title, body string, maxInput int) string {
	if maxInput <= 0 {
		maxInput = DefaultMaxInputChars
	}
	content := Truncate(fmt.Sprintf("# %s\n\n%s", title, body), maxInput)
	return fmt.Sprintf(promptTemplate, content)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
