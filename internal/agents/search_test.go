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

func TestSearchAgent_FindsAndFlags(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{
		"===result 1===\nurl: https://example.org/study\ntitle: The Study\nconfidence: 90\n",
		"===no source===\nreason: vendor marketing only\n",
	}}

	pctx := &proofread.Context{SourceRequirements: []proofread.SourceRequirement{
		{ElementIndex: 2, Claim: "throughput improved by 40%"},
		{ElementIndex: 5, Claim: "the most popular tool in its class"},
	}}

	ag := NewSearch(client)
	got, err := ag.Execute(context.Background(), "", pctx)
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Equal(t, 50, got.Score)

	require.Len(t, got.VerifiedURLs, 1)
	assert.Equal(t, "https://example.org/study", got.VerifiedURLs[0].URL)
	assert.Equal(t, 2, got.VerifiedURLs[0].ElementIndex)
	assert.Equal(t, "throughput improved by 40%", got.VerifiedURLs[0].Claim)

	require.Len(t, got.Issues, 1)
	assert.Equal(t, proofread.ActionRephrase, got.Issues[0].Action)
	assert.Equal(t, "vendor marketing only", got.Issues[0].CautionNote)
}

func TestSearchAgent_NoRequirements(t *testing.T) {
	t.Parallel()

	ag := NewSearch(&llm.Static{})
	got, err := ag.Execute(context.Background(), "", &proofread.Context{})
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Equal(t, 100, got.Score)
	assert.Empty(t, got.VerifiedURLs)
}

func TestSearchAgent_TransportFailureDegradesToRephrase(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Err: errors.New("rate limited")}
	pctx := &proofread.Context{SourceRequirements: []proofread.SourceRequirement{
		{ElementIndex: 1, Claim: "claim"},
	}}

	ag := NewSearch(client)
	got, err := ag.Execute(context.Background(), "", pctx)
	require.NoError(t, err)

	assert.Equal(t, proofread.StatusSuccess, got.Status)
	assert.Equal(t, 0, got.Score)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, proofread.ActionRephrase, got.Issues[0].Action)
}

func TestSearchAgent_TracksPartialProgress(t *testing.T) {
	t.Parallel()

	client := &llm.Static{Responses: []string{
		"===result 1===\nurl: https://example.org/a\n",
	}}
	pctx := &proofread.Context{SourceRequirements: []proofread.SourceRequirement{
		{ElementIndex: 1, Claim: "a"},
		{ElementIndex: 2, Claim: "b"},
		{ElementIndex: 3, Claim: "c"},
	}}

	ag := NewSearch(client)
	_, err := ag.Execute(context.Background(), "", pctx)
	require.NoError(t, err)

	partial := ag.PartialResults()
	require.NotNil(t, partial)
	assert.Equal(t, 3, partial.CompletedItems)
	assert.Equal(t, 3, partial.TotalItems)
	assert.Len(t, partial.VerifiedURLs, 3)
}

func TestSearchAgent_CancelledContextStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pctx := &proofread.Context{SourceRequirements: []proofread.SourceRequirement{
		{ElementIndex: 1, Claim: "a"},
	}}

	ag := NewSearch(&llm.Static{Responses: []string{"x"}})
	_, err := ag.Execute(ctx, "", pctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
