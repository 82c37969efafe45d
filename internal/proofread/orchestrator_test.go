package proofread

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoster() ([]Agent, *fakeAgent, *fakeAgent, *fakeAgent) {
	phaseOne := []Agent{
		&fakeAgent{name: "proper-nouns", typ: TypeProperNouns, result: okResult("proper-nouns", TypeProperNouns, 90)},
		&fakeAgent{name: "numbers", typ: TypeNumbersStats, result: okResult("numbers", TypeNumbersStats, 85)},
		&fakeAgent{name: "dates", typ: TypeDatesTimeline, result: okResult("dates", TypeDatesTimeline, 95)},
		&fakeAgent{name: "facts", typ: TypeFactsCases, result: okResult("facts", TypeFactsCases, 88)},
	}
	requirement := &fakeAgent{name: "requirement", typ: TypeSourceRequirement, result: okResult("requirement", TypeSourceRequirement, 100)}
	search := &fakeAgent{name: "search", typ: TypeSourceSearch, result: okResult("search", TypeSourceSearch, 100)}
	citations := &fakeAgent{name: "citations", typ: TypeCitations, result: okResult("citations", TypeCitations, 100)}
	return phaseOne, requirement, search, citations
}

func TestOrchestratorRun_ProducesCompleteReport(t *testing.T) {
	t.Parallel()

	phaseOne, requirement, search, citations := newRoster()
	citations.result.VerifiedURLs = []VerifiedURL{
		{URL: "https://example.org/a", Status: URLOK, Title: "A"},
		{URL: "https://example.org/b", Status: URLOK, Title: "B"},
		{URL: "https://example.org/c", Status: URLOK, Title: "C"},
	}

	orch := NewOrchestrator(phaseOne, requirement, search, citations, NewExecutor(nil))
	report, err := orch.Run(context.Background(), "<p>x</p>", RunOptions{Attempt: 1})
	require.NoError(t, err)

	assert.Len(t, report.AgentResults, 7)
	assert.Equal(t, 7, report.ExecutionSummary.SuccessfulAgents)
	assert.Len(t, report.SourceInsertions, 3)
	assert.NotEmpty(t, report.DetailedReport)
	assert.NotZero(t, report.ExecutionSummary.TotalTime)
}

func TestOrchestratorRun_PhaseTwoStartsAfterPhaseOneSettles(t *testing.T) {
	t.Parallel()

	phaseOne, requirement, search, citations := newRoster()
	slow := &fakeAgent{name: "slow", typ: TypeTechnical, delay: 80 * time.Millisecond, result: okResult("slow", TypeTechnical, 80)}
	phaseOne = append(phaseOne, slow)

	orch := NewOrchestrator(phaseOne, requirement, search, citations, NewExecutor(nil))
	_, err := orch.Run(context.Background(), "<p>x</p>", RunOptions{Attempt: 1})
	require.NoError(t, err)

	slow.mu.Lock()
	slowFinished := slow.finished
	slow.mu.Unlock()
	requirement.mu.Lock()
	reqStarted := requirement.started
	requirement.mu.Unlock()

	require.False(t, slowFinished.IsZero())
	require.False(t, reqStarted.IsZero())
	assert.False(t, reqStarted.Before(slowFinished), "source chain started before phase one settled")
}

func TestOrchestratorRun_OneFailureDoesNotShortCircuit(t *testing.T) {
	t.Parallel()

	phaseOne, requirement, search, citations := newRoster()
	phaseOne[1] = &fakeAgent{name: "numbers", typ: TypeNumbersStats, err: errors.New("boom")}

	orch := NewOrchestrator(phaseOne, requirement, search, citations, NewExecutor(nil))
	report, err := orch.Run(context.Background(), "<p>x</p>", RunOptions{Attempt: 1})
	require.NoError(t, err)

	assert.Len(t, report.AgentResults, 7)
	assert.Equal(t, 1, report.ExecutionSummary.FailedAgents)
	assert.Equal(t, 6, report.ExecutionSummary.SuccessfulAgents)

	perName := map[string]AgentResult{}
	for _, r := range report.AgentResults {
		perName[r.AgentName] = r
	}
	assert.Equal(t, StatusError, perName["numbers"].Status)
	assert.Equal(t, StatusSuccess, perName["proper-nouns"].Status)
	assert.Equal(t, StatusSuccess, perName["facts"].Status)
}

func TestOrchestratorRun_ProgressIsMonotonicAndCompletes(t *testing.T) {
	t.Parallel()

	phaseOne, requirement, search, citations := newRoster()
	orch := NewOrchestrator(phaseOne, requirement, search, citations, NewExecutor(nil))

	var mu sync.Mutex
	var percents []int
	_, err := orch.Run(context.Background(), "<p>x</p>", RunOptions{
		Attempt: 1,
		Progress: func(_ string, pct int) {
			mu.Lock()
			percents = append(percents, pct)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress went backwards at step %d", i)
	}
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestStructureFindings_GroupsByAgentType(t *testing.T) {
	t.Parallel()

	results := []AgentResult{
		{AgentType: TypeProperNouns, Issues: []Issue{{Description: "n1"}}},
		{AgentType: TypeFactsCases, Issues: []Issue{{Description: "f1"}, {Description: "f2"}}},
		{AgentType: TypeLegal, Issues: []Issue{{Description: "l1"}}},
	}

	findings := structureFindings(results)

	assert.Len(t, findings.ProperNouns, 1)
	assert.Len(t, findings.Facts, 2)
	assert.Len(t, findings.Legal, 1)
	assert.Empty(t, findings.Numbers)
}
