package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mfenderov/llmsref/pkg/models"
)

func TestChecker_Check(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/", "/apps/phone":
			w.Write([]byte("<html><body>ok</body></html>"))
		case "/moved":
			http.Redirect(w, r, "/apps/phone", http.StatusMovedPermanently)
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	entries := []models.Entry{
		{Path: "docs/intro.md", URL: server.URL + "/"},
		{Path: "docs/apps/phone.md", URL: server.URL + "/apps/phone"},
		{Path: "docs/apps/index.md", URL: server.URL + "/apps/phone"},
		{Path: "docs/old.md", URL: server.URL + "/moved"},
		{Path: "docs/gone.md", URL: server.URL + "/gone"},
		{Path: "docs/broken.md", URL: server.URL + "/broken"},
	}

	c := New(Config{Delay: time.Millisecond, Parallelism: 2, UserAgent: "test-agent"})
	results, err := c.Check(context.Background(), entries)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	tests := []struct {
		path   string
		ok     bool
		status int
	}{
		{"docs/intro.md", true, 200},
		{"docs/apps/phone.md", true, 200},
		{"docs/apps/index.md", true, 200},
		{"docs/old.md", true, 200},
		{"docs/gone.md", false, 404},
		{"docs/broken.md", false, 500},
	}

	if len(results) != len(tests) {
		t.Fatalf("got %d results, want %d", len(results), len(tests))
	}
	for i, tt := range tests {
		r := results[i]
		if r.Path != tt.path {
			t.Errorf("results[%d].Path = %q, want %q", i, r.Path, tt.path)
		}
		if r.OK() != tt.ok || r.Status != tt.status {
			t.Errorf("%s: ok = %v status = %d, want ok = %v status = %d (err %v)", tt.path, r.OK(), r.Status, tt.ok, tt.status, r.Err)
		}
	}

	if failed := Failed(results); len(failed) != 2 {
		t.Errorf("Failed() = %d results, want 2", len(failed))
	}
}

func TestChecker_SetsUserAgent(t *testing.T) {
	var receivedUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA.Store(r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	c := New(Config{UserAgent: "llmsref-test/1.0"})
	if _, err := c.Check(context.Background(), []models.Entry{{Path: "a.md", URL: server.URL}}); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got, _ := receivedUA.Load().(string); got != "llmsref-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", got, "llmsref-test/1.0")
	}
}

func TestChecker_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(Config{Timeout: time.Second})
	results, err := c.Check(context.Background(), []models.Entry{{Path: "a.md", URL: url}})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if results[0].OK() || results[0].Status != 0 || results[0].Err == nil {
		t.Errorf("result = %+v, want a connection error", results[0])
	}
}

func TestChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{})
	if _, err := c.Check(ctx, []models.Entry{{Path: "a.md", URL: "http://127.0.0.1:1"}}); err == nil {
		t.Error("Check() with a cancelled context should fail")
	}
}
