package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/llmsref/internal/linkcheck"
	"github.com/mfenderov/llmsref/internal/pipeline"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every entry URL answers",
	Long: `Resolve the URL of every cached entry and GET it. Any entry whose URL
does not answer with a 2xx status is reported and the command exits
non-zero. Run it against a deployed site after publishing.

Example:
  llmsref verify`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	out := cmd.OutOrStdout()

	p, err := pipeline.New(pipelineConfig(cfg), nil)
	if err != nil {
		return err
	}
	entries, err := p.CachedEntries(ctx)
	if err != nil {
		return err
	}

	checker := linkcheck.New(linkcheck.Config{
		Delay:       cfg.Verify.Delay,
		Parallelism: cfg.Verify.Parallelism,
		UserAgent:   cfg.Verify.UserAgent,
		Timeout:     cfg.Verify.Timeout,
	})

	fmt.Fprintf(out, "Checking %d URLs...\n", len(entries))
	results, err := checker.Check(ctx, entries)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	failed := linkcheck.Failed(results)
	for _, r := range failed {
		fmt.Fprintf(out, "  FAILED: %s -> %s (%v)\n", r.Path, r.URL, r.Err)
	}
	fmt.Fprintf(out, "\nOK: %d, Failed: %d\n", len(results)-len(failed), len(failed))

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d URLs did not answer", len(failed), len(results))
	}
	return nil
}
