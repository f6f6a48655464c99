// Package linkcheck verifies that the public URLs of reference entries
// answer with a success status.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mfenderov/llmsref/pkg/models"
)

// Config holds link checker configuration.
type Config struct {
	Delay       time.Duration
	Parallelism int
	UserAgent   string
	Timeout     time.Duration
}

// Result is the outcome for one entry.
type Result struct {
	Path   string
	URL    string
	Status int   // 0 when no response was received
	Err    error // nil on a 2xx response
}

// OK reports whether the URL answered with a success status.
func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Checker fetches entry URLs.
type Checker struct {
	config Config
}

// New creates a new Checker with the given configuration.
func New(config Config) *Checker {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 4
	}
	if config.UserAgent == "" {
		config.UserAgent = "llmsref/1.0"
	}
	return &Checker{config: config}
}

// Check GETs every distinct entry URL once and returns one result per
// entry, in entry order. Redirects are followed.
func (c *Checker) Check(ctx context.Context, entries []models.Entry) ([]Result, error) {
	var mu sync.Mutex
	outcomes := make(map[string]Result, len(entries))

	collector := colly.NewCollector(
		colly.UserAgent(c.config.UserAgent),
		colly.Async(true),
		colly.AllowURLRevisit(), // several entries may redirect to the same page
	)
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       c.config.Delay,
		Parallelism: c.config.Parallelism,
	})
	collector.SetRequestTimeout(c.config.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		target := r.Ctx.Get("target")
		slog.Debug("link ok", "url", target, "status", r.StatusCode)
		mu.Lock()
		outcomes[target] = Result{URL: target, Status: r.StatusCode}
		mu.Unlock()
	})

	collector.OnError(func(r *colly.Response, err error) {
		target := r.Ctx.Get("target")
		if r.StatusCode != 0 {
			err = fmt.Errorf("status %d", r.StatusCode)
		}
		slog.Debug("link failed", "url", target, "status", r.StatusCode, "error", err)
		mu.Lock()
		outcomes[target] = Result{URL: target, Status: r.StatusCode, Err: err}
		mu.Unlock()
	})

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.URL] {
			continue
		}
		seen[e.URL] = true

		reqCtx := colly.NewContext()
		reqCtx.Put("target", e.URL)
		if err := collector.Request("GET", e.URL, nil, reqCtx, nil); err != nil {
			mu.Lock()
			outcomes[e.URL] = Result{URL: e.URL, Err: err}
			mu.Unlock()
		}
	}

	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, len(entries))
	for i, e := range entries {
		r, ok := outcomes[e.URL]
		if !ok {
			r = Result{URL: e.URL, Err: fmt.Errorf("no response")}
		}
		r.Path = e.Path
		results[i] = r
	}
	return results, nil
}

// Failed returns the results that are not OK.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
