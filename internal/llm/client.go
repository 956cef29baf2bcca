// Package llm provides a minimal OpenAI-compatible chat-completions client
// used by the generation and translation primitives. One request, one
// synchronous response; no streaming, no retries.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	dwerrors "git.home.luguber.info/inful/docweaver/internal/errors"
)

// Options carries the minimal endpoint configuration.
type Options struct {
	BaseURL        string   // e.g. https://api.openai.com/v1
	Model          string   // chat model name
	APIKeyEnv      string   // environment variable holding the API key
	APIKey         string   // explicit key; takes precedence over APIKeyEnv
	TimeoutSeconds int      // client-level timeout, default 120s
	Temperature    *float64 // optional sampling temperature
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.openai.com/v1"
	}
	if o.Model == "" {
		o.Model = "gpt-4.1-mini"
	}
	if o.APIKeyEnv == "" {
		o.APIKeyEnv = "OPENAI_API_KEY"
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 120
	}
}

// Client calls a chat-completions endpoint.
type Client struct {
	hc     *http.Client
	url    string
	apiKey string
	model  string
	temp   *float64

	// do is overridable in tests.
	do func(*http.Request) (*http.Response, error)
}

// ErrEmptyResponse is returned when the endpoint answers 2xx with no usable
// message content. Callers must treat it as a failed call, never as output.
var ErrEmptyResponse = errors.New("llm: empty response content")

// New constructs a client from options, resolving the API key from the
// environment when not given explicitly.
func New(opts Options) (*Client, error) {
	opts.defaults()
	key := opts.APIKey
	if key == "" {
		key = os.Getenv(opts.APIKeyEnv)
	}
	if key == "" {
		return nil, dwerrors.New(dwerrors.CategoryConfig, dwerrors.SeverityFatal,
			fmt.Sprintf("missing API key (set %s)", opts.APIKeyEnv))
	}
	hc := &http.Client{Timeout: time.Duration(opts.TimeoutSeconds) * time.Second}
	return &Client{
		hc:     hc,
		url:    strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		apiKey: key,
		model:  opts.Model,
		temp:   opts.Temperature,
		do:     hc.Do,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends one system+user exchange and returns the trimmed completion
// text. Errors are raised rather than partial output being returned.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(&chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temp,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", ctx.Err()
		}
		return "", dwerrors.WrapRetryable(err, dwerrors.CategoryNetwork, dwerrors.SeverityError, "chat completion request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// Read a bounded slice of the body to aid diagnosis.
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(slurp))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5 {
			return "", dwerrors.WrapRetryable(
				fmt.Errorf("upstream %d: %s", resp.StatusCode, msg),
				dwerrors.CategoryNetwork, dwerrors.SeverityError, "chat completion upstream error")
		}
		return "", dwerrors.New(dwerrors.CategoryValidation, dwerrors.SeverityError,
			fmt.Sprintf("chat completion rejected: upstream %d: %s", resp.StatusCode, msg))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Model returns the configured model name, for logging.
func (c *Client) Model() string { return c.model }
