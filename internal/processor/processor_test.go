package processor

import (
	"strings"
	"testing"
)

func TestProcessor_ConvertHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string // Expected substrings in output
	}{
		{
			name: "converts strong text",
			html: `<p>Hello <strong>world</strong></p>`,
			contains: []string{
				"Hello **world**",
			},
		},
		{
			name: "converts links",
			html: `<p>Check <a href="https://example.com">this link</a>.</p>`,
			contains: []string{
				"[this link](https://example.com)",
			},
		},
		{
			name: "converts lists",
			html: `<ul><li>Item 1</li><li>Item 2</li></ul>`,
			contains: []string{
				"Item 1",
				"Item 2",
			},
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("Convert() result should contain %q\nGot:\n%s", expected, result)
				}
			}
		})
	}
}

func TestProcessor_ConvertEmpty(t *testing.T) {
	result, err := New().Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result != "" {
		t.Errorf("Convert(\"\") = %q, want empty", result)
	}
}

func TestProcessor_NormalizeKeepsPlainMarkdown(t *testing.T) {
	body := "# Phone\n\nVoicemail via *Placetel*.\n\n- a\n- b\n\n<Tabs>\n<TabItem>x</TabItem>\n</Tabs>\n"

	if got := New().Normalize(body); got != body {
		t.Errorf("Normalize() changed plain markdown:\n%q\nwant\n%q", got, body)
	}
}

func TestProcessor_NormalizeConvertsHTMLBlocks(t *testing.T) {
	body := "# Phone\n\n<p>Runs on <strong>hornbill</strong></p>\n\nAfter."

	got := New().Normalize(body)

	if !strings.Contains(got, "Runs on **hornbill**") {
		t.Errorf("HTML block should be converted, got:\n%s", got)
	}
	if strings.Contains(got, "<strong>") {
		t.Errorf("HTML tags should be gone, got:\n%s", got)
	}
	if !strings.HasPrefix(got, "# Phone\n\n") || !strings.HasSuffix(got, "\n\nAfter.") {
		t.Errorf("surrounding markdown should be untouched, got:\n%q", got)
	}
}

func TestProcessor_NormalizeSkipsFencedCode(t *testing.T) {
	body := "Example:\n\n```html\n<p>keep <strong>me</strong></p>\n```\n"

	if got := New().Normalize(body); got != body {
		t.Errorf("fenced code should be verbatim:\n%q\nwant\n%q", got, body)
	}
}
