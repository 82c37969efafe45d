package proofread

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ProgressFunc receives human-readable status text and a 0-100 percentage as
// the pipeline advances. Percentages never go backwards.
type ProgressFunc func(message string, percent int)

// RunOptions carries per-run state owned by the caller.
type RunOptions struct {
	// Attempt is the 1-based proofread attempt number for this article.
	Attempt int
	// PreviousScore is the overall score of the previous attempt, if any;
	// it enables the relative-improvement pass rule.
	PreviousScore *int
	Progress      ProgressFunc
}

// Orchestrator drives the whole pipeline for one article: the concurrent
// verification fan-out, the sequential source chain, and the final
// aggregation.
type Orchestrator struct {
	phaseOne    []Agent
	requirement Agent
	search      Agent
	citations   Agent
	exec        *Executor
}

// NewOrchestrator wires the agent roster. The three source agents form the
// fixed phase-two chain; phaseOne may hold any number of independent agents.
func NewOrchestrator(phaseOne []Agent, requirement, search, citations Agent, exec *Executor) *Orchestrator {
	if exec == nil {
		exec = NewExecutor(nil)
	}
	return &Orchestrator{
		phaseOne:    phaseOne,
		requirement: requirement,
		search:      search,
		citations:   citations,
		exec:        exec,
	}
}

// Run executes both phases and aggregates every agent result into the final
// report. All expected failure modes are absorbed into typed result statuses;
// Run itself fails only when the surrounding runtime does.
func (o *Orchestrator) Run(ctx context.Context, content string, opts RunOptions) (IntegrationResult, error) {
	start := time.Now()
	progress := newProgressReporter(opts.Progress)

	log.Info().
		Int("attempt", opts.Attempt).
		Int("phase_one_agents", len(o.phaseOne)).
		Int("content_bytes", len(content)).
		Msg("proofread run started")

	progress.report("running verification agents", 5)
	phaseOneResults := o.runPhaseOne(ctx, content)
	progress.report("verification agents settled", 50)

	findings := structureFindings(phaseOneResults)

	phaseTwoResults := o.runPhaseTwo(ctx, content, findings, progress)

	allResults := make([]AgentResult, 0, len(phaseOneResults)+len(phaseTwoResults))
	allResults = append(allResults, phaseOneResults...)
	allResults = append(allResults, phaseTwoResults...)

	progress.report("aggregating results", 95)
	report := Integrate(allResults, opts.PreviousScore)
	report.ExecutionSummary.TotalTime = time.Since(start)

	log.Info().
		Int("overall_score", report.OverallScore).
		Bool("passed", report.Passed).
		Str("recommendation", string(report.Recommendation)).
		Dur("elapsed", report.ExecutionSummary.TotalTime).
		Msg("proofread run finished")

	progress.report("done", 100)
	return report, nil
}

// runPhaseOne fans the independent agents out concurrently and joins with an
// all-settle barrier. Every agent's outcome is kept, failures included; the
// aggregator needs them all.
func (o *Orchestrator) runPhaseOne(ctx context.Context, content string) []AgentResult {
	results := make([]AgentResult, len(o.phaseOne))
	var wg sync.WaitGroup

	for i, ag := range o.phaseOne {
		wg.Add(1)
		go func(i int, ag Agent) {
			defer wg.Done()
			results[i] = o.exec.Run(ctx, ag, content, &Context{})
		}(i, ag)
	}
	wg.Wait()

	return results
}

// runPhaseTwo executes the three-stage source chain in strict order. Each
// stage's structured output feeds the next; a failed stage still hands an
// empty-but-valid context forward so the chain degrades instead of aborting.
func (o *Orchestrator) runPhaseTwo(ctx context.Context, content string, findings *PhaseOneFindings, progress *progressReporter) []AgentResult {
	results := make([]AgentResult, 0, 3)

	progress.report("judging source requirements", 55)
	reqResult := o.exec.Run(ctx, o.requirement, content, &Context{PhaseOneFindings: findings})
	results = append(results, reqResult)

	searchCtx := &Context{PhaseOneFindings: findings}
	if lister, ok := o.requirement.(RequirementLister); ok {
		reqs, parsed := lister.SourceRequirements()
		searchCtx.SourceRequirements = reqs
		searchCtx.ParsedElements = parsed
	}
	log.Debug().Int("requirements", len(searchCtx.SourceRequirements)).Msg("source requirements judged")

	progress.report("searching for sources", 70)
	searchResult := o.exec.Run(ctx, o.search, content, searchCtx)
	results = append(results, searchResult)

	verifyCtx := &Context{
		PhaseOneFindings: findings,
		ParsedElements:   searchCtx.ParsedElements,
		SearchOutcome: &SearchOutcome{
			VerifiedURLs: searchResult.VerifiedURLs,
			Issues:       searchResult.Issues,
		},
	}

	progress.report("verifying citations", 85)
	verifyResult := o.exec.Run(ctx, o.citations, content, verifyCtx)
	results = append(results, verifyResult)

	return results
}

// structureFindings groups phase-one issues by agent category for the source
// chain. Dispatch is by agent type, not result order.
func structureFindings(results []AgentResult) *PhaseOneFindings {
	findings := &PhaseOneFindings{}
	for _, r := range results {
		switch r.AgentType {
		case TypeProperNouns:
			findings.ProperNouns = append(findings.ProperNouns, r.Issues...)
		case TypeNumbersStats:
			findings.Numbers = append(findings.Numbers, r.Issues...)
		case TypeDatesTimeline:
			findings.Dates = append(findings.Dates, r.Issues...)
		case TypeFactsCases:
			findings.Facts = append(findings.Facts, r.Issues...)
		case TypeTechnical:
			findings.Technical = append(findings.Technical, r.Issues...)
		case TypeLegal:
			findings.Legal = append(findings.Legal, r.Issues...)
		case TypeBrand:
			findings.Brand = append(findings.Brand, r.Issues...)
		}
	}
	return findings
}

// progressReporter clamps reported percentages to be monotonically
// non-decreasing; concurrent phase-one completions may report out of order.
type progressReporter struct {
	mu   sync.Mutex
	last int
	fn   ProgressFunc
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (p *progressReporter) report(message string, percent int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(message, percent)
}
