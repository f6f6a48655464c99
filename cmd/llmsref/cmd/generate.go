package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate llms.txt from the docs tree",
	Long: `Walk the docs tree, summarize every changed page and write llms.txt.

Unchanged pages reuse their cached summary. Pages marked human_only and
pages with almost no body are skipped. A page whose summary fails is left
out of this run and retried on the next one.

Examples:
  # Generate with the configured base URL
  llmsref generate

  # Override the site URL and docs root
  llmsref generate --base-url https://docs.example.com --docs-dir website/docs

  # Use Docker Model Runner and drop cache entries of deleted pages
  llmsref generate --backend dmr --prune`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerationFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	applyGenerationFlags(cmd, &cfg)
	slog.Debug("generate command starting", "docs_dir", cfg.DocsDir, "backend", cfg.Summarizer.Backend)

	p, err := newGenerator(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return generate(ctx, cmd.OutOrStdout(), cfg, p)
}
