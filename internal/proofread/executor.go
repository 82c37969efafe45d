package proofread

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Executor runs one agent call under the agent type's deadline and salvages
// partial progress when the deadline fires first.
type Executor struct {
	// overrides replaces the per-type default timeout when set.
	overrides map[AgentType]time.Duration
}

// NewExecutor creates an executor. overrides may be nil.
func NewExecutor(overrides map[AgentType]time.Duration) *Executor {
	return &Executor{overrides: overrides}
}

// TimeoutFor resolves the deadline budget for an agent type.
func (e *Executor) TimeoutFor(t AgentType) time.Duration {
	if e != nil && e.overrides != nil {
		if d, ok := e.overrides[t]; ok && d > 0 {
			return d
		}
	}
	return t.DefaultTimeout()
}

type execOutcome struct {
	result AgentResult
	err    error
}

// Run executes the agent and always returns a usable AgentResult. When the
// deadline fires the underlying call is left running detached; its partial
// buffer is read before the detached call is cancelled, so salvage never
// races cancellation cleanup.
func (e *Executor) Run(ctx context.Context, ag Agent, content string, pctx *Context) AgentResult {
	timeout := e.TimeoutFor(ag.Type())
	start := time.Now()

	log.Debug().
		Str("agent", ag.Name()).
		Str("type", string(ag.Type())).
		Dur("timeout", timeout).
		Msg("agent started")

	// Detached from the caller so a fired deadline does not tear the call
	// down before the partial buffer is read.
	execCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	done := make(chan execOutcome, 1)
	go func() {
		result, err := ag.Execute(execCtx, content, pctx)
		done <- execOutcome{result: result, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		cancel()
		elapsed := time.Since(start)
		if out.err != nil {
			log.Warn().Err(out.err).Str("agent", ag.Name()).Dur("elapsed", elapsed).Msg("agent failed")
			return errorResult(ag, elapsed, out.err.Error())
		}
		out.result.ExecutionTime = elapsed
		log.Debug().
			Str("agent", ag.Name()).
			Str("status", string(out.result.Status)).
			Int("score", out.result.Score).
			Dur("elapsed", elapsed).
			Msg("agent finished")
		return out.result

	case <-ctx.Done():
		// Caller gave up on the whole run; salvage what exists.
		result := e.salvage(ag, time.Since(start), timeout)
		cancel()
		return result

	case <-timer.C:
		result := e.salvage(ag, timeout, timeout)
		cancel()
		return result
	}
}

// salvage converts a missed deadline into a partial-success result when the
// agent buffered progress, or a plain timeout result otherwise. It must run
// before cancellation of the underlying call.
func (e *Executor) salvage(ag Agent, elapsed, timeout time.Duration) AgentResult {
	reporter, ok := ag.(PartialReporter)
	if ok {
		if partial := reporter.PartialResults(); partial != nil && partial.CompletedItems > 0 && partial.TotalItems > 0 {
			score := ratioScore(partial.CompletedItems, partial.TotalItems)
			log.Warn().
				Str("agent", ag.Name()).
				Int("completed", partial.CompletedItems).
				Int("total", partial.TotalItems).
				Msg("agent deadline hit, keeping partial results")
			return AgentResult{
				AgentName:     ag.Name(),
				AgentType:     ag.Type(),
				ExecutionTime: elapsed,
				Score:         score,
				Issues:        partial.Issues,
				Suggestions:   partial.Suggestions,
				VerifiedURLs:  partial.VerifiedURLs,
				Confidence:    score,
				Status:        StatusPartialSuccess,
				PartialData: &PartialData{
					CompletedItems: partial.CompletedItems,
					TotalItems:     partial.TotalItems,
					Message:        fmt.Sprintf("completed %d of %d items before the deadline", partial.CompletedItems, partial.TotalItems),
				},
			}
		}
	}

	log.Warn().Str("agent", ag.Name()).Dur("timeout", timeout).Msg("agent timed out with no partial results")
	return AgentResult{
		AgentName:     ag.Name(),
		AgentType:     ag.Type(),
		ExecutionTime: elapsed,
		Score:         0,
		Issues:        []Issue{},
		Suggestions:   []Suggestion{},
		Confidence:    0,
		Status:        StatusTimeout,
		Error:         fmt.Sprintf("%s timed out after %s", ag.Name(), timeout),
	}
}

func errorResult(ag Agent, elapsed time.Duration, msg string) AgentResult {
	return AgentResult{
		AgentName:     ag.Name(),
		AgentType:     ag.Type(),
		ExecutionTime: elapsed,
		Score:         0,
		Issues:        []Issue{},
		Suggestions:   []Suggestion{},
		Confidence:    0,
		Status:        StatusError,
		Error:         msg,
	}
}

func ratioScore(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
