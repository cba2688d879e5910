// Package anthropic provides a tool-calling adapter using the Anthropic API.
package anthropic

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

	"golang.org/x/time/rate"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// Ensure ToolCaller implements the interface.
var _ driven.ToolCaller = (*ToolCaller)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 90 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens bounds the response size.
	defaultMaxTokens = 4096

	// defaultRequestsPerMinute keeps burst traffic under API limits.
	defaultRequestsPerMinute = 30
)

// Config holds configuration for the Anthropic tool caller.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the per-request timeout (default: 90s).
	Timeout time.Duration

	// RequestsPerMinute caps the request rate (default: 30).
	RequestsPerMinute int
}

// ToolCaller performs single-tool invocations against the Anthropic
// messages API. Each invocation forces the model to call exactly the named
// tool and returns the tool's arguments.
type ToolCaller struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *rate.Limiter
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model      string            `json:"model"`
	Messages   []messagesMessage `json:"messages"`
	MaxTokens  int               `json:"max_tokens"`
	Tools      []toolDefinition  `json:"tools,omitempty"`
	ToolChoice *toolChoice       `json:"tool_choice,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text,omitempty"`
		Name  string          `json:"name,omitempty"`
		Input json.RawMessage `json:"input,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a new Anthropic tool caller.
func New(cfg Config) (*ToolCaller, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}

	return &ToolCaller{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute),
	}, nil
}

// CallTool performs one tool invocation. Timeouts are retried once; every
// other failure surfaces unretried.
func (t *ToolCaller) CallTool(ctx context.Context, call driven.ToolCall) (json.RawMessage, error) {
	args, err := t.callOnce(ctx, call)
	if err != nil && isTimeout(err) && ctx.Err() == nil {
		logger.Warn("Tool call %s timed out, retrying once", call.Name)
		args, err = t.callOnce(ctx, call)
	}
	return args, err
}

func (t *ToolCaller) callOnce(ctx context.Context, call driven.ToolCall) (json.RawMessage, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := messagesRequest{
		Model:     t.model,
		MaxTokens: defaultMaxTokens,
		Messages: []messagesMessage{
			{Role: "user", Content: call.Payload},
		},
		Tools: []toolDefinition{
			{
				Name:        call.Name,
				Description: call.Description,
				InputSchema: call.Schema,
			},
		},
		ToolChoice: &toolChoice{Type: "tool", Name: call.Name},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", t.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if msgResp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}

	return extractToolArguments(msgResp, call.Name)
}

// extractToolArguments pulls the named tool's arguments out of a response.
// When the model answered with plain text instead of a tool call, the
// outermost JSON object embedded in that text is recovered.
func extractToolArguments(resp messagesResponse, name string) (json.RawMessage, error) {
	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "tool_use":
			if block.Name == name && len(block.Input) > 0 {
				return block.Input, nil
			}
		case "text":
			text.WriteString(block.Text)
		}
	}

	if obj, ok := extractJSONObject(text.String()); ok {
		logger.Debug("Recovered tool arguments from text content for %s", name)
		return obj, nil
	}

	return nil, fmt.Errorf("%w: response carried no %s call", domain.ErrToolMalformed, name)
}

// extractJSONObject returns the outermost balanced {...} span in s, if one
// exists and parses as a JSON object. Brace counting ignores braces inside
// string literals.
func extractJSONObject(s string) (json.RawMessage, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return json.RawMessage(candidate), true
				}
				return nil, false
			}
		}
	}
	return nil, false
}

// isTimeout reports whether err is a deadline or transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return false
}

// ModelName returns the name of the model being used.
func (t *ToolCaller) ModelName() string {
	return t.model
}

// Ping validates the service is reachable by checking the /v1/models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (t *ToolCaller) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", t.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("anthropic: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (t *ToolCaller) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
