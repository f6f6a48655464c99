package summarizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// PromptPlaceholder in CLI arguments is replaced with the prompt. Without
// it the prompt is written to the command's stdin.
const PromptPlaceholder = "{prompt}"

// CLIConfig holds settings for a command-line summarizer.
type CLIConfig struct {
	Command       string        // Executable name or path, e.g. "claude"
	Args          []string      // Arguments, e.g. ["-p", "{prompt}", "--output-format", "text"]
	Timeout       time.Duration // Per-call deadline
	MaxInputChars int           // Document text limit
}

// CLI runs an external command once per document.
type CLI struct {
	command  string
	args     []string
	timeout  time.Duration
	maxInput int
}

// NewCLI creates a CLI summarizer.
func NewCLI(config CLIConfig) (*CLI, error) {
	if config.Command == "" {
		return nil, fmt.Errorf("command is required")
	}
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}

	return &CLI{
		command:  config.Command,
		args:     config.Args,
		timeout:  config.Timeout,
		maxInput: config.MaxInputChars,
	}, nil
}

// Name identifies the backend in cache entries.
func (c *CLI) Name() string {
	return "cli:" + filepath.Base(c.command)
}

// Summarize runs the command with the built prompt and returns its
// trimmed stdout.
func (c *CLI) Summarize(ctx context.Context, title, body string) (string, error) {
	prompt := BuildPrompt(title, body, c.maxInput)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args, viaArgs := c.buildArgs(prompt)
	cmd := exec.CommandContext(callCtx, c.command, args...)
	cmd.WaitDelay = time.Second
	if !viaArgs {
		cmd.Stdin = strings.NewReader(prompt)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running summarizer", "command", c.command, "title", title, "prompt_len", len(prompt))
	start := time.Now()

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, c.command, err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if callCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %v", ErrTimeout, c.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: exit status %d: %s", ErrFailed, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %v", ErrFailed, err)
	}

	summary := strings.TrimSpace(stdout.String())
	if summary == "" {
		return "", ErrEmptyResponse
	}

	slog.Debug("summarizer finished", "title", title, "duration", time.Since(start), "summary_len", len(summary))
	return summary, nil
}

func (c *CLI) buildArgs(prompt string) ([]string, bool) {
	args := make([]string, len(c.args))
	found := false
	for i, a := range c.args {
		if strings.Contains(a, PromptPlaceholder) {
			a = strings.ReplaceAll(a, PromptPlaceholder, prompt)
			found = true
		}
		args[i] = a
	}
	return args, found
}
