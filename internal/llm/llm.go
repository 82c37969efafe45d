// Package llm provides the model-call capability the proofreading agents are
// built on: a single-shot prompt in, free text out, optionally backed by the
// provider's web-search tool.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultTimeout = 60 * time.Second
)

// Request is a single completion request.
type Request struct {
	// Instructions is the system-level framing; may be empty.
	Instructions string
	// Prompt is the user content.
	Prompt string
	// WebSearch enables the provider's web-search tool for this call.
	WebSearch bool
}

// Client executes one completion request and returns the raw output text.
// Implementations do not parse or validate the text; agents extract their
// payloads from it.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider client.
type Config struct {
	Provider  string        `json:"provider"            mapstructure:"provider"`
	Model     string        `json:"model"               mapstructure:"model"`
	APIKey    string        `json:"api_key,omitempty"   mapstructure:"api_key"`
	APIKeyEnv string        `json:"api_key_env"         mapstructure:"api_key_env"`
	BaseURL   string        `json:"base_url,omitempty"  mapstructure:"base_url"`
	Timeout   time.Duration `json:"timeout,omitempty"   mapstructure:"timeout"`
	// RPM caps outbound request rate; 0 disables the limiter.
	RPM int `json:"rpm,omitempty" mapstructure:"rpm"`
}

// New constructs a client for the configured provider, wrapped with a rate
// limiter when cfg.RPM is set.
func New(ctx context.Context, cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		client, err = NewOpenAI(cfg, nil)
	case ProviderGemini:
		client, err = NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.RPM > 0 {
		client = Limited(client, cfg.RPM)
	}
	return client, nil
}

// Static is an offline test double returning canned responses in order. The
// last response repeats once the list is exhausted.
type Static struct {
	Responses []string
	Err       error

	calls int
}

// Generate implements Client.
func (s *Static) Generate(_ context.Context, _ Request) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", fmt.Errorf("static llm: no responses configured")
	}
	i := s.calls
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	s.calls++
	return s.Responses[i], nil
}
