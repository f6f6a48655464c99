package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/llmsref/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "llmsref",
	Short: "llmsref: an llms.txt generator for documentation trees",
	Long: `llmsref summarizes every page of a markdown documentation tree into a
dense reference entry and assembles them into one ordered llms.txt file.
Summaries are cached by content fingerprint, so only changed pages are
sent to the summarizer.

Commands:
  generate  Build llms.txt from the docs tree
  watch     Rebuild llms.txt whenever a document changes
  serve     Start the MCP server over cached entries
  search    Search entries in Elasticsearch
  verify    Check that every entry URL answers`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// envKeys are bound explicitly so AutomaticEnv sees nested keys that
// have no config file entry.
var envKeys = []string{
	"docs_dir",
	"cache_file",
	"output_file",
	"static_link",
	"base_url",
	"title",
	"min_body_chars",
	"cache.prune",
	"cache.require_provenance",
	"summarizer.backend",
	"summarizer.timeout",
	"summarizer.max_input_chars",
	"summarizer.cli.command",
	"summarizer.dmr.socket_path",
	"summarizer.dmr.model",
	"storage.enabled",
	"storage.endpoint",
	"storage.bucket",
	"storage.key",
	"storage.access_key_id",
	"storage.secret_access_key",
	"elasticsearch.enabled",
	"elasticsearch.index",
	"elasticsearch.username",
	"elasticsearch.password",
	"mcp.name",
	"mcp.version",
	"watch.debounce",
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/llmsref")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// LLMSREF_SUMMARIZER_BACKEND -> summarizer.backend
	viper.SetEnvPrefix("LLMSREF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("LLMSREF_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
