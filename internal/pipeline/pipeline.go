package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mfenderov/llmsref/internal/cache"
	"github.com/mfenderov/llmsref/internal/markdown"
	"github.com/mfenderov/llmsref/internal/ordering"
	"github.com/mfenderov/llmsref/internal/processor"
	"github.com/mfenderov/llmsref/internal/resolver"
	"github.com/mfenderov/llmsref/internal/summarizer"
	"github.com/mfenderov/llmsref/pkg/models"
	"github.com/spf13/afero"
)

// Config holds pipeline configuration.
type Config struct {
	DocsDir    string // Root of the documents, e.g. "docs"
	CacheFile  string // Summary cache, e.g. ".llms-cache.json"
	OutputFile string // Generated artifact, e.g. "llms.txt"
	StaticLink string // Mirror location, e.g. "docs/static/llms.txt"; empty disables
	BaseURL    string // Public site URL
	Title      string // First header line of the artifact

	Landing       string   // Root-level stem pinned first and served at "/"
	IndexName     string   // Stem that collapses to its directory
	PartialPrefix string   // Filenames starting with this are skipped
	Extensions    []string // Document extensions

	MinBodyChars    int // Bodies shorter than this (trimmed, in runes) are skipped
	DefaultPosition int // sidebar_position for documents without one

	Prune             bool // Drop cache entries for documents no longer present
	RequireProvenance bool // Treat cache entries without a generator as misses
}

// Stats counts what happened to each discovered document.
type Stats struct {
	Discovered       int
	Cached           int
	Generated        int
	SkippedHumanOnly int
	SkippedTooShort  int
	Stale            int // Cache misses left out in cache-only mode
	Failed           int
	Pruned           int
}

// Skipped returns the number of deliberately excluded documents.
func (s Stats) Skipped() int {
	return s.SkippedHumanOnly + s.SkippedTooShort
}

// String formats the completion line.
func (s Stats) String() string {
	return fmt.Sprintf("Cached: %d, Generated: %d, Skipped: %d (human_only: %d, too short: %d), Failed: %d",
		s.Cached, s.Generated, s.Skipped(), s.SkippedHumanOnly, s.SkippedTooShort, s.Failed)
}

// Failure records a document left out because of an error.
type Failure struct {
	Path string
	Err  error
}

// Result holds pipeline execution results.
type Result struct {
	Entries    []models.Entry
	Stats      Stats
	Failures   []Failure
	Discovered []string  // Identities of all discovered documents
	Output     string    // Rendered artifact, set by Run
	Generated  time.Time // Header timestamp, set by Run
	Duration   time.Duration
}

// Pipeline turns a docs tree into the reference artifact.
type Pipeline struct {
	config     Config
	fs         afero.Fs
	summarizer summarizer.Summarizer // nil in cache-only mode
	cache      *cache.File
	ordering   ordering.Config
	resolver   *resolver.Resolver
	processor  *processor.Processor
	now        func() time.Time
	progress   io.Writer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// WithClock sets the time source used for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithProgress sets where per-document progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.progress = w }
}

// New creates a Pipeline. A nil summarizer runs it in cache-only mode:
// cache misses are left out instead of generated.
func New(config Config, s summarizer.Summarizer, opts ...Option) (*Pipeline, error) {
	if config.DocsDir == "" {
		return nil, fmt.Errorf("docs dir is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if len(config.Extensions) == 0 {
		config.Extensions = markdown.DefaultExtensions
	}
	if config.DefaultPosition == 0 {
		config.DefaultPosition = ordering.DefaultPosition
	}

	p := &Pipeline{
		config:     config,
		fs:         afero.NewOsFs(),
		summarizer: s,
		ordering: ordering.Config{
			Landing:         config.Landing,
			DefaultPosition: config.DefaultPosition,
		},
		resolver: resolver.New(resolver.Config{
			Root:    config.DocsDir,
			BaseURL: config.BaseURL,
			Index:   config.IndexName,
			Landing: config.Landing,
		}),
		processor: processor.New(),
		now:       time.Now,
		progress:  io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cache = cache.NewFile(p.fs, config.CacheFile)

	return p, nil
}

// Run executes one full generation: collect entries, save the cache,
// write the artifact and publish the mirror link. A fatal summarizer
// error aborts the run before anything is written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if p.summarizer == nil {
		return nil, fmt.Errorf("summarizer is required to generate")
	}
	if p.config.CacheFile == "" || p.config.OutputFile == "" {
		return nil, fmt.Errorf("cache file and output file are required")
	}

	store := p.cache.Load()

	result, err := p.Collect(ctx, store)
	if err != nil {
		return nil, err
	}

	if p.config.Prune {
		keep := make(map[string]struct{}, len(result.Discovered)+len(result.Failures))
		for _, id := range result.Discovered {
			keep[id] = struct{}{}
		}
		// Unreadable documents still exist and keep their previous entry.
		for _, f := range result.Failures {
			keep[f.Path] = struct{}{}
		}
		result.Stats.Pruned = store.Prune(keep)
		if result.Stats.Pruned > 0 {
			slog.Info("pruned cache entries", "count", result.Stats.Pruned)
		}
	}

	if err := p.cache.Save(store); err != nil {
		return nil, err
	}

	result.Generated = p.now()
	result.Output = Render(Header{
		Title:     p.config.Title,
		Generated: result.Generated,
		Source:    p.config.BaseURL,
	}, result.Entries)

	if err := cache.WriteAtomic(p.fs, p.config.OutputFile, []byte(result.Output)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", p.config.OutputFile, err)
	}

	if p.config.StaticLink != "" {
		status, err := PublishLink(p.fs, p.config.OutputFile, p.config.StaticLink)
		if err != nil {
			return nil, fmt.Errorf("failed to publish %s: %w", p.config.StaticLink, err)
		}
		slog.Debug("mirror link", "path", p.config.StaticLink, "status", status)
	}

	result.Duration = time.Since(start)
	slog.Info("generation complete",
		"entries", len(result.Entries),
		"cached", result.Stats.Cached,
		"generated", result.Stats.Generated,
		"skipped", result.Stats.Skipped(),
		"failed", result.Stats.Failed,
		"duration", result.Duration)

	return result, nil
}

// Collect discovers, orders and summarizes the documents, mutating store
// with newly generated summaries. Nothing is persisted.
func (p *Pipeline) Collect(ctx context.Context, store cache.Store) (*Result, error) {
	start := time.Now()
	result := &Result{}

	docs, failures, err := Discover(p.fs, p.config.DocsDir, p.config.Extensions, p.config.PartialPrefix)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		p.reportf("FAILED", f.Path)
		result.Failures = append(result.Failures, f)
		result.Stats.Failed++
	}

	p.ordering.Sort(docs)

	result.Stats.Discovered = len(docs)
	result.Discovered = make([]string, 0, len(docs))
	for _, doc := range docs {
		result.Discovered = append(result.Discovered, doc.Path)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if isHumanOnly(doc.Meta) {
			p.reportf("SKIP (human_only)", doc.Path)
			result.Stats.SkippedHumanOnly++
			continue
		}

		if utf8.RuneCountInString(strings.TrimSpace(doc.Body)) < p.config.MinBodyChars {
			p.reportf("SKIP (too short)", doc.Path)
			result.Stats.SkippedTooShort++
			continue
		}

		title := p.titleFor(doc)
		summary, ok, err := p.summaryFor(ctx, store, doc, title, result)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		result.Entries = append(result.Entries, models.Entry{
			ID:      models.GenerateDocumentID(doc.Path),
			Title:   title,
			Path:    doc.Path,
			URL:     p.resolver.Resolve(doc.Path),
			Summary: summary,
		})
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CachedEntries returns the entries that can be built from the cache
// alone, in artifact order. Documents without a valid cache entry are left
// out. Nothing is written.
func (p *Pipeline) CachedEntries(ctx context.Context) ([]models.Entry, error) {
	cacheOnly := *p
	cacheOnly.summarizer = nil
	cacheOnly.progress = io.Discard

	result, err := cacheOnly.Collect(ctx, p.cache.Load())
	if err != nil {
		return nil, err
	}
	if result.Stats.Stale > 0 {
		slog.Warn("documents without a cached summary were left out", "count", result.Stats.Stale)
	}
	return result.Entries, nil
}

// summaryFor returns the cached summary on a hit and generates one on a
// miss. ok is false when the document must be left out of this run.
func (p *Pipeline) summaryFor(ctx context.Context, store cache.Store, doc models.Document, title string, result *Result) (string, bool, error) {
	fingerprint := models.Fingerprint(doc.Content)

	if entry, hit := store.Lookup(doc.Path, fingerprint); hit && p.trusted(entry) {
		p.reportf("CACHED", doc.Path)
		result.Stats.Cached++
		return entry.Summary, true, nil
	}

	if p.summarizer == nil {
		slog.Debug("no cached summary", "path", doc.Path)
		result.Stats.Stale++
		return "", false, nil
	}

	p.reportf("GENERATING", doc.Path)
	summary, err := p.summarizer.Summarize(ctx, title, p.processor.Normalize(doc.Body))
	if err != nil {
		if summarizer.IsFatal(err) {
			return "", false, fmt.Errorf("summarizing %s: %w", doc.Path, err)
		}
		slog.Warn("summarization failed", "path", doc.Path, "error", err)
		p.reportf("FAILED", doc.Path)
		result.Failures = append(result.Failures, Failure{Path: doc.Path, Err: err})
		result.Stats.Failed++
		return "", false, nil
	}

	store.Put(doc.Path, cache.Entry{
		Hash:      fingerprint,
		Summary:   summary,
		Title:     title,
		Generator: p.summarizer.Name(),
	})
	result.Stats.Generated++
	return summary, true, nil
}

func (p *Pipeline) trusted(entry cache.Entry) bool {
	return !p.config.RequireProvenance || entry.Generator != ""
}

func (p *Pipeline) titleFor(doc models.Document) string {
	if title, ok := doc.Meta.String("title"); ok && strings.TrimSpace(title) != "" {
		return title
	}
	return markdown.TitleFromFilename(doc.Name())
}

func (p *Pipeline) reportf(status, path string) {
	fmt.Fprintf(p.progress, "  %s: %s\n", status, path)
}

// isHumanOnly reports whether the header excludes the document from the
// machine reference. Any truthy value counts: true, a non-zero integer, or
// a non-empty string other than "false".
func isHumanOnly(meta models.Metadata) bool {
	switch v := meta["human_only"].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		v = strings.TrimSpace(v)
		return v != "" && !strings.EqualFold(v, "false")
	default:
		return false
	}
}
