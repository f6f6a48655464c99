package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mfenderov/llmsref/internal/summarizer"
	"github.com/mfenderov/llmsref/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate llms.txt whenever a document changes",
	Long: `Generate llms.txt once, then watch the docs tree and regenerate after
every burst of changes to .md or .mdx files.

Regenerations run one at a time. Only changed pages are re-summarized.
The watch stops if the summarizer becomes unavailable.

Example:
  llmsref watch --base-url https://docs.example.com`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addGenerationFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	applyGenerationFlags(cmd, &cfg)
	out := cmd.OutOrStdout()

	p, err := newGenerator(cfg, out)
	if err != nil {
		return err
	}

	if err := generate(ctx, out, cfg, p); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		Root:       cfg.DocsDir,
		Extensions: cfg.Extensions,
		Debounce:   cfg.Watch.Debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(out, "\nChanged: %s\n", strings.Join(changed, ", "))
			err := generate(ctx, out, cfg, p)
			if err == nil || ctx.Err() != nil {
				return nil
			}
			if summarizer.IsFatal(err) {
				return err
			}
			slog.Warn("regeneration failed", "error", err)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes...\n", cfg.DocsDir)
	return w.Run(ctx)
}
