package cmd

import (
	"testing"
	"time"

	"github.com/mfenderov/llmsref/internal/config"
	"github.com/spf13/cobra"
)

func TestNewSummarizer(t *testing.T) {
	base := config.Defaults().Summarizer
	base.DMR.SocketPath = "/tmp/dmr.sock"

	tests := []struct {
		name     string
		backend  string
		wantName string
		wantErr  bool
	}{
		{"default is cli", "", "cli:claude", false},
		{"cli", "cli", "cli:claude", false},
		{"dmr", "dmr", "dmr:ai/gemma3", false},
		{"unknown", "openai", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Backend = tt.backend
			s, err := newSummarizer(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSummarizer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.wantName)
			}
		})
	}
}

func TestApplyGenerationFlags(t *testing.T) {
	c := &cobra.Command{Use: "test"}
	addGenerationFlags(c)
	if err := c.ParseFlags([]string{"--base-url", "https://docs.example.com", "--prune"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg := config.Defaults()
	applyGenerationFlags(c, &cfg)

	if cfg.BaseURL != "https://docs.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if !cfg.Cache.Prune {
		t.Error("Prune should be set by --prune")
	}
	if cfg.DocsDir != "docs" || cfg.Summarizer.Backend != "cli" {
		t.Errorf("unset flags should keep config values, got docs_dir=%q backend=%q", cfg.DocsDir, cfg.Summarizer.Backend)
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.BaseURL = "https://docs.example.com"
	cfg.Cache.RequireProvenance = true

	pc := pipelineConfig(cfg)
	if pc.DocsDir != "docs" || pc.CacheFile != ".llms-cache.json" || pc.OutputFile != "llms.txt" || pc.StaticLink != "docs/static/llms.txt" {
		t.Errorf("paths = %+v", pc)
	}
	if pc.MinBodyChars != 100 || pc.DefaultPosition != 999 || pc.Landing != "intro" || !pc.RequireProvenance {
		t.Errorf("settings = %+v", pc)
	}
	if cfg.Summarizer.Timeout != 120*time.Second {
		t.Errorf("default timeout = %v", cfg.Summarizer.Timeout)
	}
}
