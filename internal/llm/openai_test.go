package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func responsesPayload(text string) string {
	return `{
		"error": null,
		"output": [
			{
				"type": "message",
				"role": "assistant",
				"content": [
					{"type": "output_text", "text": ` + mustJSON(text) + `, "annotations": []}
				]
			}
		]
	}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAIGenerate_SendsExpectedPayloadAndParsesOutput(t *testing.T) {
	const envKey = "PROOFPIPE_OPENAI_TEST_KEY"
	t.Setenv(envKey, "test-api-key")

	var gotAuth string
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("unmarshal request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responsesPayload(`{"score": 90}`)))
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAI(Config{
		Model:     "gpt-5.2",
		BaseURL:   srv.URL,
		APIKeyEnv: envKey,
	}, srv.Client())
	if err != nil {
		t.Fatalf("NewOpenAI returned error: %v", err)
	}

	out, err := client.Generate(context.Background(), Request{
		Instructions: "Output only JSON.",
		Prompt:       "Check this article.",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != `{"score": 90}` {
		t.Fatalf("output = %q, want the payload text", out)
	}

	if gotAuth != "Bearer test-api-key" {
		t.Fatalf("authorization header = %q, want bearer auth", gotAuth)
	}
	if gotPath != "/responses" {
		t.Fatalf("path = %q, want %q", gotPath, "/responses")
	}
	if gotBody["model"] != "gpt-5.2" {
		t.Fatalf("model = %v, want %q", gotBody["model"], "gpt-5.2")
	}
	if gotBody["instructions"] != "Output only JSON." {
		t.Fatalf("instructions = %v", gotBody["instructions"])
	}
	if gotBody["input"] != "Check this article." {
		t.Fatalf("input = %v", gotBody["input"])
	}
	if _, hasTools := gotBody["tools"]; hasTools {
		t.Fatalf("tools must be absent without web search")
	}
}

func TestOpenAIGenerate_WebSearchAttachesTool(t *testing.T) {
	const envKey = "PROOFPIPE_OPENAI_TEST_KEY"
	t.Setenv(envKey, "test-api-key")

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responsesPayload("found it")))
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAI(Config{Model: "gpt-5.2", BaseURL: srv.URL, APIKeyEnv: envKey}, srv.Client())
	if err != nil {
		t.Fatalf("NewOpenAI returned error: %v", err)
	}

	if _, err := client.Generate(context.Background(), Request{Prompt: "find a source", WebSearch: true}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	tools, ok := gotBody["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("tools = %v, want one web search tool", gotBody["tools"])
	}
	tool, _ := tools[0].(map[string]any)
	if tool["type"] != "web_search_preview" {
		t.Fatalf("tool type = %v, want web_search_preview", tool["type"])
	}
}

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	const envKey = "PROOFPIPE_OPENAI_MISSING_KEY"
	if err := os.Unsetenv(envKey); err != nil {
		t.Fatalf("unset env: %v", err)
	}

	if _, err := NewOpenAI(Config{Model: "gpt-5.2", APIKeyEnv: envKey}, nil); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestNewOpenAI_RequiresModel(t *testing.T) {
	if _, err := NewOpenAI(Config{APIKey: "k"}, nil); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{Provider: "watson", Model: "x"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestStatic_RepeatsLastResponse(t *testing.T) {
	t.Parallel()

	s := &Static{Responses: []string{"a", "b"}}
	for _, want := range []string{"a", "b", "b"} {
		got, err := s.Generate(context.Background(), Request{})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if got != want {
			t.Fatalf("Generate = %q, want %q", got, want)
		}
	}
}
