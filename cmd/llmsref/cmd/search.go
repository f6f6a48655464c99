package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed reference entries",
	Long: `Search the reference entries indexed in Elasticsearch.

Entries are indexed by generate when elasticsearch.enabled is set.

Examples:
  # Basic search
  llmsref search "phone app port"

  # Limit results
  llmsref search "vlan" --limit 5

  # JSON output for scripting
  llmsref search "backup" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]
	cfg := GetConfig()
	out := cmd.OutOrStdout()

	client, err := newESClient(cfg)
	if err != nil {
		return err
	}

	entries, err := client.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Found %d results:\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(out, "─── Result %d ───\n", i+1)
		fmt.Fprintf(out, "Title:   %s\n", e.Title)
		fmt.Fprintf(out, "Path:    %s\n", e.Path)
		fmt.Fprintf(out, "URL:     %s\n", e.URL)
		fmt.Fprintf(out, "Summary:\n%s\n\n", e.Summary)
	}

	return nil
}
