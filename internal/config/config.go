package config

import "time"

// Config holds all application configuration.
type Config struct {
	DocsDir    string `mapstructure:"docs_dir"`
	CacheFile  string `mapstructure:"cache_file"`
	OutputFile string `mapstructure:"output_file"`
	StaticLink string `mapstructure:"static_link"`
	BaseURL    string `mapstructure:"base_url"`
	Title      string `mapstructure:"title"`

	Landing         string   `mapstructure:"landing"`
	IndexName       string   `mapstructure:"index_name"`
	PartialPrefix   string   `mapstructure:"partial_prefix"`
	Extensions      []string `mapstructure:"extensions"`
	MinBodyChars    int      `mapstructure:"min_body_chars"`
	DefaultPosition int      `mapstructure:"default_position"`

	Cache         Cache         `mapstructure:"cache"`
	Summarizer    Summarizer    `mapstructure:"summarizer"`
	Storage       Storage       `mapstructure:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	MCP           MCP           `mapstructure:"mcp"`
	Verify        Verify        `mapstructure:"verify"`
	Watch         Watch         `mapstructure:"watch"`
}

// Cache holds summary cache behaviour.
type Cache struct {
	Prune             bool `mapstructure:"prune"`
	RequireProvenance bool `mapstructure:"require_provenance"`
}

// Summarizer selects and configures the summary backend.
type Summarizer struct {
	Backend       string        `mapstructure:"backend"` // "cli" or "dmr"
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
	CLI           CLI           `mapstructure:"cli"`
	DMR           DMR           `mapstructure:"dmr"`
}

// CLI configures the command-line backend.
type CLI struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// DMR configures the Docker Model Runner backend.
type DMR struct {
	SocketPath string `mapstructure:"socket_path"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
}

// Storage holds S3/MinIO mirror configuration.
type Storage struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	Key             string `mapstructure:"key"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Verify holds link checker configuration.
type Verify struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Delay       time.Duration `mapstructure:"delay"`
	Parallelism int           `mapstructure:"parallelism"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// Watch holds watch mode configuration.
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DocsDir:    "docs",
		CacheFile:  ".llms-cache.json",
		OutputFile: "llms.txt",
		StaticLink: "docs/static/llms.txt",
		Title:      "Documentation - LLM Reference",

		Landing:         "intro",
		IndexName:       "index",
		PartialPrefix:   "_",
		Extensions:      []string{".md", ".mdx"},
		MinBodyChars:    100,
		DefaultPosition: 999,

		Summarizer: Summarizer{
			Backend:       "cli",
			Timeout:       120 * time.Second,
			MaxInputChars: 15000,
			CLI: CLI{
				Command: "claude",
				Args:    []string{"-p", "{prompt}", "--output-format", "text"},
			},
			DMR: DMR{
				SocketPath: "", // User must provide their Docker socket path
				Model:      "ai/gemma3",
				MaxTokens:  1024,
			},
		},
		Storage: Storage{
			Enabled:         false, // Mirror is opt-in
			Endpoint:        "localhost:9002",
			Bucket:          "llmsref",
			Key:             "llms.txt",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Elasticsearch: Elasticsearch{
			Enabled:   false,
			Addresses: []string{"http://localhost:9200"},
			Index:     "llmsref-entries",
		},
		MCP: MCP{
			Name:    "llmsref",
			Version: "1.0.0",
		},
		Verify: Verify{
			Timeout:     15 * time.Second,
			Delay:       100 * time.Millisecond,
			Parallelism: 4,
			UserAgent:   "llmsref/1.0",
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
	}
}
