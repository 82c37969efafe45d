package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

func TestVerificationAgent_ParsesPayload(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{`Here is my review:
{"score": 82, "confidence": 75, "issues": [
  {"type": "factual-error", "severity": "major", "location": "Market Overview",
   "description": "growth figure is outdated", "original": "25%", "suggestion": "18%", "confidence": 80}
], "suggestions": [
  {"type": "clarity", "description": "cite the study", "priority": "high"}
]}`}}

	ag := NewFactsCases(client)
	got, err := ag.Execute(context.Background(), "<p>The market grew 25%.</p>", &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Equal(t, proofread.TypeFactsCases, got.AgentType)
	assert.Equal(t, 82, got.Score)
	assert.Equal(t, 75, got.Confidence)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, proofread.SeverityMajor, got.Issues[0].Severity)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, proofread.PriorityHigh, got.Suggestions[0].Priority)
}

func TestVerificationAgent_FallsBackOnGarbage(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{"I could not produce structured output, sorry."}}

	ag := NewBrand(client)
	got, err := ag.Execute(context.Background(), "<p>x</p>", &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Equal(t, 70, got.Score)
	assert.Equal(t, 30, got.Confidence)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "manual-review", got.Suggestions[0].Type)
}

func TestVerificationAgent_RejectsInvalidSeverity(t *testing.T) {
	t.Parallel()

	// Valid JSON that violates the schema degrades the same way as garbage.
	client := &llm.Static{Responses: []string{`{"score": 90, "issues": [{"type": "factual-error", "severity": "catastrophic", "description": "x"}]}`}}

	ag := NewTechnical(client)
	got, err := ag.Execute(context.Background(), "<p>x</p>", &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, 70, got.Score)
	assert.Equal(t, 30, got.Confidence)
}

func TestVerificationAgent_ClampsScore(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{`{"score": 100, "confidence": 100}`}}

	ag := NewProperNouns(client)
	got, err := ag.Execute(context.Background(), "<p>x</p>", &proofread.Context{})
	require.NoError(t, err)
	assert.Equal(t, 100, got.Score)
}

func TestVerificationAgent_TransportErrorSurfaces(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Err: errors.New("connection refused")}

	ag := NewDatesTimeline(client)
	_, err := ag.Execute(context.Background(), "<p>x</p>", &proofread.Context{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
