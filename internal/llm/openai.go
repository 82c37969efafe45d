package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/responses"
	"github.com/openai/openai-go/v2/shared"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIAPIKeyEnv = "OPENAI_API_KEY"
)

// OpenAI wraps the OpenAI responses API for oneshot calls.
type OpenAI struct {
	model  string
	client openai.Client
}

// NewOpenAI constructs an OpenAI-backed client.
func NewOpenAI(cfg Config, httpClient *http.Client) (*OpenAI, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("openai model is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envKey := strings.TrimSpace(cfg.APIKeyEnv)
		if envKey == "" {
			envKey = defaultOpenAIAPIKeyEnv
		}
		apiKey = strings.TrimSpace(os.Getenv(envKey))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required (set api_key or api_key_env)")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(timeout),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAI{
		model:  model,
		client: openai.NewClient(opts...),
	}, nil
}

// Generate executes a single responses API request. Web-search requests run
// with medium reasoning effort; the tool rejects anything lower.
func (c *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(req.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Prompt),
		},
		Reasoning: shared.ReasoningParam{
			Effort: shared.ReasoningEffortMinimal,
		},
	}
	if req.WebSearch {
		params.Reasoning.Effort = shared.ReasoningEffortMedium
		params.Tools = []responses.ToolUnionParam{{
			OfWebSearchPreview: &responses.WebSearchPreviewToolParam{
				Type: responses.WebSearchPreviewToolTypeWebSearchPreview,
			},
		}}
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses.create: %w", err)
	}
	if msg := strings.TrimSpace(resp.Error.Message); msg != "" {
		return "", fmt.Errorf("openai response failed: %s", msg)
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return "", fmt.Errorf("openai response did not contain output text")
	}
	return output, nil
}
