package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mfenderov/llmsref/internal/summarizer"
)

// completionsPath is the Docker Model Runner chat completions endpoint.
const completionsPath = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1/chat/completions"

// Config holds LLM client configuration.
type Config struct {
	SocketPath    string        // Unix socket path for Docker Model Runner
	Model         string        // Model name (e.g., "ai/gemma3")
	Timeout       time.Duration // Per-call deadline
	MaxInputChars int           // Document text limit
	MaxTokens     int           // Response token limit, 0 for none
}

// Client summarizes documents with the Docker Model Runner chat API.
type Client struct {
	httpClient *http.Client
	model      string
	timeout    time.Duration
	maxInput   int
	maxTokens  int
}

// New creates a new LLM client.
func New(config Config) (*Client, error) {
	if config.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", config.SocketPath)
		},
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		model:      config.Model,
		timeout:    config.Timeout,
		maxInput:   config.MaxInputChars,
		maxTokens:  config.MaxTokens,
	}, nil
}

// chatRequest is the request payload for the chat completions API.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"` // Limit response length
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from the chat completions API.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Name identifies the backend in cache entries.
func (c *Client) Name() string {
	return "dmr:" + c.model
}

// Summarize asks the model for a dense summary of the document.
// Note: Runs sequentially because DMR can only handle one LLM request at a time.
func (c *Client) Summarize(ctx context.Context, title, body string) (string, error) {
	prompt := summarizer.BuildPrompt(title, body, c.maxInput)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.Debug("generating summary", "model", c.model, "title", title)
	summary, err := c.complete(callCtx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %v", summarizer.ErrTimeout, c.timeout)
		}
		return "", err
	}

	if summary == "" {
		return "", summarizer.ErrEmptyResponse
	}
	return summary, nil
}

// complete sends one prompt and returns the trimmed reply.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.maxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return "", fmt.Errorf("%w: %v", summarizer.ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: request failed: %v", summarizer.ErrFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", summarizer.ErrFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error (status %d): %s", summarizer.ErrFailed, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %v", summarizer.ErrFailed, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", summarizer.ErrFailed, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", summarizer.ErrEmptyResponse
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
