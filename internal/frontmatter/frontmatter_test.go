package frontmatter

import (
	"reflect"
	"testing"

	"github.com/mfenderov/llmsref/pkg/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMeta models.Metadata
		wantBody string
	}{
		{
			name:     "no header",
			content:  "# Title\n\nBody text.",
			wantMeta: models.Metadata{},
			wantBody: "# Title\n\nBody text.",
		},
		{
			name:     "simple header",
			content:  "---\ntitle: Phone\nsidebar_position: 2\n---\n# Phone\n",
			wantMeta: models.Metadata{"title": "Phone", "sidebar_position": 2},
			wantBody: "# Phone\n",
		},
		{
			name:     "unterminated header",
			content:  "---\ntitle: Phone\n# Phone\n",
			wantMeta: models.Metadata{},
			wantBody: "---\ntitle: Phone\n# Phone\n",
		},
		{
			name:     "delimiter without newline",
			content:  "---",
			wantMeta: models.Metadata{},
			wantBody: "---",
		},
		{
			name:     "dashes not on their own line",
			content:  "----\ntitle: Phone\n----\nbody",
			wantMeta: models.Metadata{},
			wantBody: "----\ntitle: Phone\n----\nbody",
		},
		{
			name:     "closing delimiter at end of file",
			content:  "---\ntitle: Empty\n---",
			wantMeta: models.Metadata{"title": "Empty"},
			wantBody: "",
		},
		{
			name:     "empty header",
			content:  "---\n---\nbody",
			wantMeta: models.Metadata{},
			wantBody: "body",
		},
		{
			name:     "lines without colon are ignored",
			content:  "---\njust a line\ntitle: Mail\n: no key\n---\nbody",
			wantMeta: models.Metadata{"title": "Mail"},
			wantBody: "body",
		},
		{
			name:     "value keeps later colons",
			content:  "---\ndescription: see: https://example.com\n---\n",
			wantMeta: models.Metadata{"description": "see: https://example.com"},
			wantBody: "",
		},
		{
			name:     "keys are trimmed and case sensitive",
			content:  "---\n  Title  :  Upper  \ntitle: lower\n---\n",
			wantMeta: models.Metadata{"Title": "Upper", "title": "lower"},
			wantBody: "",
		},
		{
			name:     "crlf line endings",
			content:  "---\r\ntitle: Windows\r\n---\r\nbody\r\n",
			wantMeta: models.Metadata{"title": "Windows"},
			wantBody: "body\r\n",
		},
		{
			name:     "closing delimiter is the first match",
			content:  "---\ntitle: A\n---\nbody\n---\nmore",
			wantMeta: models.Metadata{"title": "A"},
			wantBody: "body\n---\nmore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := Parse(tt.content)
			if !reflect.DeepEqual(meta, tt.wantMeta) {
				t.Errorf("Parse() meta = %#v, want %#v", meta, tt.wantMeta)
			}
			if body != tt.wantBody {
				t.Errorf("Parse() body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		value string
		want  any
	}{
		{"true", true},
		{"false", false},
		{"True", "True"},
		{"FALSE", "FALSE"},
		{"42", 42},
		{"007", 7},
		{"-3", "-3"},
		{"1.5", "1.5"},
		{"99999999999999999999999", "99999999999999999999999"},
		{`"quoted"`, "quoted"},
		{`"123"`, "123"},
		{`"true"`, "true"},
		{`""`, ""},
		{`"`, `"`},
		{`""nested""`, `"nested"`},
		{"plain text", "plain text"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := coerce(tt.value); got != tt.want {
				t.Errorf("coerce(%q) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}
