package cmd

import (
	"context"
	"fmt"

	"github.com/mfenderov/llmsref/internal/mcp"
	"github.com/mfenderov/llmsref/internal/pipeline"
	"github.com/mfenderov/llmsref/pkg/models"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server over the cached reference entries.

The server communicates via stdio and provides three tools:
  - list_entries: List entries in reading order
  - get_entry: Get a specific entry by ID or source path
  - search_entries: Search entries by query

Entries are read from the summary cache on every call, so a running
generate or watch is picked up without a restart. The summarizer is
never invoked.

Example:
  llmsref serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	p, err := pipeline.New(pipelineConfig(cfg), nil)
	if err != nil {
		return err
	}
	loader := func(ctx context.Context) ([]models.Entry, error) {
		return p.CachedEntries(ctx)
	}

	var searcher mcp.Searcher
	if cfg.Elasticsearch.Enabled {
		client, err := newESClient(cfg)
		if err != nil {
			return err
		}
		searcher = client
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, loader, searcher)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
