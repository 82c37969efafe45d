package proofread

import (
	"context"

	"github.com/proofworks/proofpipe/internal/article"
)

// Agent is the capability every proofreading unit implements. Execute must be
// idempotent for the same (content, context) pair and must not let expected
// failures escape: internal errors come back as a status=error result (or
// partial-success when buffered progress exists). A returned error is treated
// by the executor exactly like status=error.
type Agent interface {
	Name() string
	Type() AgentType
	Execute(ctx context.Context, content string, pctx *Context) (AgentResult, error)
}

// PartialReporter is implemented by agents that buffer incremental progress.
// The executor reads the buffer once, after the agent's deadline fires and
// before any cancellation is issued. Agents without salvageable progress
// simply don't implement it.
type PartialReporter interface {
	PartialResults() *PartialResults
}

// RequirementLister is implemented by the source-requirement agent to hand
// its flagged elements to the source-search stage.
type RequirementLister interface {
	SourceRequirements() ([]SourceRequirement, []article.Element)
}
