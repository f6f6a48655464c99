package resolver

import "testing"

func TestResolve(t *testing.T) {
	r := New(Config{
		Root:    "docs",
		BaseURL: "https://docs.example.com",
		Index:   "index",
		Landing: "intro",
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"regular page", "docs/apps/overview.md", "https://docs.example.com/apps/overview"},
		{"mdx page", "docs/apps/overview.mdx", "https://docs.example.com/apps/overview"},
		{"index collapses to directory", "docs/apps/index.md", "https://docs.example.com/apps"},
		{"nested index", "docs/apps/phone/index.mdx", "https://docs.example.com/apps/phone"},
		{"root index", "docs/index.md", "https://docs.example.com"},
		{"landing document", "docs/intro.md", "https://docs.example.com"},
		{"nested intro keeps its path", "docs/apps/intro.md", "https://docs.example.com/apps/intro"},
		{"path relative to root", "apps/overview.md", "https://docs.example.com/apps/overview"},
		{"index as part of a name", "docs/apps/reindex.md", "https://docs.example.com/apps/reindex"},
		{"dotted name", "docs/release-1.2.md", "https://docs.example.com/release-1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolve_BaseURLTrailingSlash(t *testing.T) {
	r := New(Config{Root: "./docs/", BaseURL: "https://docs.example.com/", Index: "index", Landing: "intro"})

	if got := r.Resolve("docs/intro.md"); got != "https://docs.example.com" {
		t.Errorf("landing = %q, want bare base URL", got)
	}
	if got := r.Resolve("docs/apps/overview.md"); got != "https://docs.example.com/apps/overview" {
		t.Errorf("page = %q", got)
	}
}
