package summarizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript creates an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "summarize.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestNewCLI_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  CLIConfig
		wantErr bool
	}{
		{
			name:    "empty command",
			config:  CLIConfig{Command: "", Timeout: time.Second},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			config:  CLIConfig{Command: "claude"},
			wantErr: true,
		},
		{
			name:    "valid config",
			config:  CLIConfig{Command: "claude", Args: []string{"-p", PromptPlaceholder}, Timeout: time.Second},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCLI(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCLI() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCLI_Name(t *testing.T) {
	c, _ := NewCLI(CLIConfig{Command: "/usr/local/bin/claude", Timeout: time.Second})
	if got := c.Name(); got != "cli:claude" {
		t.Errorf("Name() = %q, want %q", got, "cli:claude")
	}
}

func TestCLI_SummarizePromptAsArgument(t *testing.T) {
	script := writeScript(t, `case "$2" in
  *"# Phone"*"voicemail"*) echo "  Phone: voicemail via Placetel  " ;;
  *) echo "unexpected prompt" ;;
esac`)

	c, err := NewCLI(CLIConfig{
		Command: script,
		Args:    []string{"-p", PromptPlaceholder, "--output-format", "text"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewCLI() error = %v", err)
	}

	got, err := c.Summarize(context.Background(), "Phone", "Handles voicemail.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Phone: voicemail via Placetel" {
		t.Errorf("Summarize() = %q", got)
	}
}

func TestCLI_SummarizePromptOnStdin(t *testing.T) {
	script := writeScript(t, `if grep -q "INPUT DOCUMENT"; then echo from-stdin; fi`)

	c, _ := NewCLI(CLIConfig{Command: script, Timeout: 5 * time.Second})

	got, err := c.Summarize(context.Background(), "Mail", "Body")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "from-stdin" {
		t.Errorf("Summarize() = %q, want %q", got, "from-stdin")
	}
}

func TestCLI_SummarizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		wantErr error
	}{
		{
			name:    "non-zero exit",
			script:  `echo "rate limited" >&2; exit 2`,
			timeout: 5 * time.Second,
			wantErr: ErrFailed,
		},
		{
			name:    "empty output",
			script:  `echo "   "`,
			timeout: 5 * time.Second,
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "timeout",
			script:  `exec sleep 5`,
			timeout: 100 * time.Millisecond,
			wantErr: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewCLI(CLIConfig{Command: writeScript(t, tt.script), Timeout: tt.timeout})

			_, err := c.Summarize(context.Background(), "Title", "Body")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Summarize() error = %v, want %v", err, tt.wantErr)
			}
			if IsFatal(err) {
				t.Errorf("%v should not be fatal", err)
			}
		})
	}
}

func TestCLI_FailureIncludesStderr(t *testing.T) {
	c, _ := NewCLI(CLIConfig{Command: writeScript(t, `echo "quota exceeded" >&2; exit 1`), Timeout: 5 * time.Second})

	_, err := c.Summarize(context.Background(), "Title", "Body")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error should carry stderr, got %v", err)
	}
}

func TestCLI_CommandNotFound(t *testing.T) {
	tests := []struct {
		name    string
		command string
	}{
		{"not on PATH", "llmsref-no-such-summarizer"},
		{"missing absolute path", filepath.Join(t.TempDir(), "missing")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewCLI(CLIConfig{Command: tt.command, Timeout: time.Second})

			_, err := c.Summarize(context.Background(), "Title", "Body")
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Summarize() error = %v, want ErrUnavailable", err)
			}
			if !IsFatal(err) {
				t.Error("ErrUnavailable should be fatal")
			}
		})
	}
}

func TestCLI_ParentCancellationIsFatal(t *testing.T) {
	c, _ := NewCLI(CLIConfig{Command: writeScript(t, `exec sleep 5`), Timeout: 10 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := c.Summarize(ctx, "Title", "Body")
	if !IsFatal(err) {
		t.Errorf("Summarize() error = %v, want a fatal error", err)
	}
}
