package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mfenderov/llmsref/internal/config"
	"github.com/mfenderov/llmsref/internal/elasticsearch"
	"github.com/mfenderov/llmsref/internal/llm"
	"github.com/mfenderov/llmsref/internal/pipeline"
	"github.com/mfenderov/llmsref/internal/storage"
	"github.com/mfenderov/llmsref/internal/summarizer"
	"github.com/spf13/cobra"
)

// Flags shared by generate and watch.
var (
	flagBaseURL string
	flagDocsDir string
	flagPrune   bool
	flagBackend string
)

func addGenerationFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagBaseURL, "base-url", "", "Public site URL (overrides base_url)")
	c.Flags().StringVar(&flagDocsDir, "docs-dir", "", "Documentation root (overrides docs_dir)")
	c.Flags().BoolVar(&flagPrune, "prune", false, "Drop cache entries for documents that no longer exist")
	c.Flags().StringVar(&flagBackend, "backend", "", "Summarizer backend: cli or dmr")
}

// applyGenerationFlags copies explicitly set flags over the loaded config.
func applyGenerationFlags(c *cobra.Command, cfg *config.Config) {
	if c.Flags().Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if c.Flags().Changed("docs-dir") {
		cfg.DocsDir = flagDocsDir
	}
	if c.Flags().Changed("prune") {
		cfg.Cache.Prune = flagPrune
	}
	if c.Flags().Changed("backend") {
		cfg.Summarizer.Backend = flagBackend
	}
}

// newSummarizer builds the configured summarizer backend.
func newSummarizer(cfg config.Summarizer) (summarizer.Summarizer, error) {
	switch cfg.Backend {
	case "", "cli":
		return summarizer.NewCLI(summarizer.CLIConfig{
			Command:       cfg.CLI.Command,
			Args:          cfg.CLI.Args,
			Timeout:       cfg.Timeout,
			MaxInputChars: cfg.MaxInputChars,
		})
	case "dmr":
		return llm.New(llm.Config{
			SocketPath:    cfg.DMR.SocketPath,
			Model:         cfg.DMR.Model,
			Timeout:       cfg.Timeout,
			MaxInputChars: cfg.MaxInputChars,
			MaxTokens:     cfg.DMR.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Backend)
	}
}

func pipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		DocsDir:           cfg.DocsDir,
		CacheFile:         cfg.CacheFile,
		OutputFile:        cfg.OutputFile,
		StaticLink:        cfg.StaticLink,
		BaseURL:           cfg.BaseURL,
		Title:             cfg.Title,
		Landing:           cfg.Landing,
		IndexName:         cfg.IndexName,
		PartialPrefix:     cfg.PartialPrefix,
		Extensions:        cfg.Extensions,
		MinBodyChars:      cfg.MinBodyChars,
		DefaultPosition:   cfg.DefaultPosition,
		Prune:             cfg.Cache.Prune,
		RequireProvenance: cfg.Cache.RequireProvenance,
	}
}

// newGenerator builds a pipeline with the configured summarizer that
// reports progress to out.
func newGenerator(cfg config.Config, out io.Writer) (*pipeline.Pipeline, error) {
	s, err := newSummarizer(cfg.Summarizer)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}
	slog.Debug("summarizer ready", "backend", s.Name())

	return pipeline.New(pipelineConfig(cfg), s, pipeline.WithProgress(out))
}

// generate runs one generation, prints the completion line and feeds the
// enabled sinks.
func generate(ctx context.Context, out io.Writer, cfg config.Config, p *pipeline.Pipeline) error {
	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nDone! Generated %s\n", cfg.OutputFile)
	fmt.Fprintf(out, "  %s\n", result.Stats)
	if result.Stats.Pruned > 0 {
		fmt.Fprintf(out, "  Pruned: %d\n", result.Stats.Pruned)
	}
	for _, f := range result.Failures {
		fmt.Fprintf(out, "    - %s: %v\n", f.Path, f.Err)
	}

	publishSinks(ctx, out, cfg, result)
	return nil
}

// publishSinks mirrors the artifact and indexes the entries when enabled.
// Sink failures are reported but do not fail the run; the artifact is
// already on disk.
func publishSinks(ctx context.Context, out io.Writer, cfg config.Config, result *pipeline.Result) {
	if cfg.Storage.Enabled {
		if err := mirrorArtifact(ctx, cfg, result); err != nil {
			slog.Warn("artifact mirror failed", "error", err)
		} else {
			fmt.Fprintf(out, "  Mirrored: s3://%s/%s\n", cfg.Storage.Bucket, cfg.Storage.Key)
		}
	}

	if cfg.Elasticsearch.Enabled {
		if err := indexEntries(ctx, cfg, result); err != nil {
			slog.Warn("entry indexing failed", "error", err)
		} else {
			fmt.Fprintf(out, "  Indexed: %d entries into %s\n", len(result.Entries), cfg.Elasticsearch.Index)
		}
	}
}

func mirrorArtifact(ctx context.Context, cfg config.Config, result *pipeline.Result) error {
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return err
	}

	return client.Mirror(ctx, cfg.Storage.Key, result.Output, storage.Manifest{
		Source:    cfg.BaseURL,
		Generated: result.Generated,
		Entries:   result.Entries,
	})
}

func newESClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	return client, nil
}

func indexEntries(ctx context.Context, cfg config.Config, result *pipeline.Result) error {
	client, err := newESClient(cfg)
	if err != nil {
		return err
	}
	return client.Sync(ctx, result.Entries)
}
