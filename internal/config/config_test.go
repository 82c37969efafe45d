package config

import (
	"testing"
	"time"

	"github.com/proofworks/proofpipe/internal/proofread"
)

func TestTimeoutOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Agents: map[string]AgentConfig{
			"source-search": {TimeoutMinutes: 55},
			"legal":         {TimeoutMinutes: 0},
		},
	}

	overrides := cfg.TimeoutOverrides()
	if got := overrides[proofread.TypeSourceSearch]; got != 55*time.Minute {
		t.Fatalf("source-search override = %v, want %v", got, 55*time.Minute)
	}
	if _, ok := overrides[proofread.TypeLegal]; ok {
		t.Fatalf("zero-minute override should be dropped")
	}
}

func TestTimeoutOverrides_EmptyMap(t *testing.T) {
	t.Parallel()

	if overrides := (Config{}).TimeoutOverrides(); overrides != nil {
		t.Fatalf("overrides = %v, want nil", overrides)
	}
}

func TestValidateSettings_Valid(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"llm": map[string]any{
			"provider": "openai",
			"model":    "gpt-5.2",
			"rpm":      30,
		},
		"agents": map[string]any{
			"source-search": map[string]any{"timeout_minutes": 55},
		},
		"review": map[string]any{"include_legal": true},
	}

	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("ValidateSettings returned error: %v", err)
	}
}

func TestValidateSettings_RejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"llm": map[string]any{
			"provider": "watson",
			"model":    "x",
		},
	}

	if err := ValidateSettings(settings); err == nil {
		t.Fatalf("expected schema validation error for unknown provider")
	}
}

func TestValidateSettings_RejectsUnknownAgentKey(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"llm": map[string]any{
			"provider": "openai",
			"model":    "gpt-5.2",
		},
		"agents": map[string]any{
			"spellcheck": map[string]any{"timeout_minutes": 5},
		},
	}

	if err := ValidateSettings(settings); err == nil {
		t.Fatalf("expected schema validation error for unknown agent key")
	}
}
