package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiAPIKeyEnv = "GEMINI_API_KEY"

// Gemini wraps the Gemini API for oneshot calls. Web search uses the
// GoogleSearch grounding tool.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewGemini constructs a Gemini-backed client.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envKey := strings.TrimSpace(cfg.APIKeyEnv)
		if envKey == "" {
			envKey = defaultGeminiAPIKeyEnv
		}
		apiKey = strings.TrimSpace(os.Getenv(envKey))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required (set api_key or api_key_env)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{model: model, client: client}, nil
}

// Generate implements Client.
func (c *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if req.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	output := strings.TrimSpace(resp.Text())
	if output == "" {
		return "", fmt.Errorf("gemini response did not contain output text")
	}
	return output, nil
}
