package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

const requirementArticle = `
<h2>Results</h2>
<p>The rollout improved throughput by 40% across all regions.</p>
<p>Feedback has been generally positive.</p>
`

func TestRequirementAgent_JudgesCandidates(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{`{"requirements": [
		{"elementIndex": 2, "claim": "throughput improved by 40%",
		 "searchKeywords": ["throughput", "40%"], "sourceType": "statistics", "reason": "specific figure"},
		{"elementIndex": 42, "claim": "out of range, must be dropped"}
	]}`}}

	ag := NewRequirement(client)
	got, err := ag.Execute(context.Background(), requirementArticle, &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, proofread.IssueMissingSource, got.Issues[0].Type)
	assert.Equal(t, "Results", got.Issues[0].Location)

	reqs, elements := ag.SourceRequirements()
	require.Len(t, reqs, 1)
	assert.Equal(t, 2, reqs[0].ElementIndex)
	assert.Len(t, elements, 3)
}

func TestRequirementAgent_NoCandidatesSkipsModel(t *testing.T) {
	t.Parallel()

	// No canned responses: a model call would fail the test.
	client := &llm.Static{}

	ag := NewRequirement(client)
	got, err := ag.Execute(context.Background(), "<h2>Intro</h2><p>A gentle opening paragraph.</p>", &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Equal(t, 100, got.Score)
	assert.Empty(t, got.Issues)

	reqs, elements := ag.SourceRequirements()
	assert.Empty(t, reqs)
	assert.Len(t, elements, 2)
}

func TestRequirementAgent_UnparseableOutputKeepsNothing(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{"no structure here"}}

	ag := NewRequirement(client)
	got, err := ag.Execute(context.Background(), requirementArticle, &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Empty(t, got.Issues)
	reqs, _ := ag.SourceRequirements()
	assert.Empty(t, reqs)
}
