package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Defaults for the OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
	DefaultTimeout = 30 * time.Second
)

// ErrInvalidConfig indicates an unusable completion configuration.
var ErrInvalidConfig = errors.New("invalid completion configuration")

// Config holds settings for an OpenAI-compatible chat completion API.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// OpenAICompleter calls an OpenAI-compatible API (Groq by default) through langchaingo.
type OpenAICompleter struct {
	model llms.Model
	name  string
}

// NewOpenAICompleter creates a completer for cfg.
// PRE: cfg.APIKey is non-empty
func NewOpenAICompleter(cfg Config) (*OpenAICompleter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, ErrCompleterNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return &OpenAICompleter{model: client, name: cfg.Model}, nil
}

// New returns an OpenAICompleter when an API key is configured and Unconfigured otherwise.
func New(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		slog.Warn("completion_event", "event", "not_configured")
		return Unconfigured{}, nil
	}
	return NewOpenAICompleter(cfg)
}

// Complete sends prompt as a single user message and returns the reply text verbatim.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		slog.Warn("completion_event", "event", "failed", "model", c.name, "error", err)
		return "", fmt.Errorf("completion request: %w", err)
	}
	slog.Info("completion_event", "event", "completed", "model", c.name,
		"duration_ms", time.Since(start).Milliseconds(), "chars", len(text))
	return text, nil
}
