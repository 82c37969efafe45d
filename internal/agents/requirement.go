package agents

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/proofworks/proofpipe/internal/article"
	"github.com/proofworks/proofpipe/internal/jsonx"
	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

const requirementInstructions = `You decide which parts of an article need a cited source.
You are given a numbered list of article elements. For each element that makes a factual claim a reader
would reasonably want evidence for (statistics, study results, superlatives, named-entity facts), emit a
source requirement. Skip opinions, transitions and generic statements.

Respond with a single JSON object:
{
  "requirements": [
    {
      "elementIndex": <number from the list>,
      "claim": "<the claim needing support>",
      "searchKeywords": ["<query terms>"],
      "sourceType": "<statistics|research|news|official>",
      "reason": "<why a source is needed>"
    }
  ]
}
Output only the JSON object.`

// RequirementAgent is the first stage of the source chain: it parses the
// article into addressable elements and decides which of them need a cited
// source. Its typed outputs feed the search stage.
type RequirementAgent struct {
	client llm.Client

	mu           sync.Mutex
	requirements []proofread.SourceRequirement
	elements     []article.Element
}

var (
	_ proofread.Agent             = (*RequirementAgent)(nil)
	_ proofread.RequirementLister = (*RequirementAgent)(nil)
)

func NewRequirement(client llm.Client) *RequirementAgent {
	return &RequirementAgent{client: client}
}

func (a *RequirementAgent) Name() string              { return "source-requirement-judgment" }
func (a *RequirementAgent) Type() proofread.AgentType { return proofread.TypeSourceRequirement }

// SourceRequirements returns the typed outputs of the last execution: the
// judged requirements and the parsed elements they index into.
func (a *RequirementAgent) SourceRequirements() ([]proofread.SourceRequirement, []article.Element) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requirements, a.elements
}

func (a *RequirementAgent) Execute(ctx context.Context, content string, _ *proofread.Context) (proofread.AgentResult, error) {
	elements, err := article.Parse(content)
	if err != nil {
		return proofread.AgentResult{}, fmt.Errorf("parse article: %w", err)
	}

	// Pre-filter with the cheap heuristic so the model only sees plausible
	// candidates.
	candidates := make([]article.Element, 0, len(elements))
	for _, el := range elements {
		if article.MightNeedSource(el) {
			candidates = append(candidates, el)
		}
	}
	log.Debug().Int("elements", len(elements)).Int("candidates", len(candidates)).Msg("source candidates selected")

	if len(candidates) == 0 {
		a.store(nil, elements)
		return proofread.AgentResult{
			AgentName:  a.Name(),
			AgentType:  a.Type(),
			Score:      100,
			Confidence: 100,
			Status:     proofread.StatusSuccess,
		}, nil
	}

	prompt := fmt.Sprintf("Article elements:\n\n%s\n\nJudge which elements need a source.", article.FormatList(candidates))
	text, err := generate(ctx, a.client, a.Type(), requirementInstructions, prompt)
	if err != nil {
		return proofread.AgentResult{}, fmt.Errorf("source requirement judgment: %w", err)
	}

	var parsed struct {
		Requirements []proofread.SourceRequirement `json:"requirements"`
	}
	if err := jsonx.Decode(text, &parsed); err != nil {
		log.Warn().Err(err).Msg("unparseable requirement output, keeping no requirements")
		parsed.Requirements = nil
	}

	// Keep only requirements pointing at real elements.
	valid := parsed.Requirements[:0]
	issues := make([]proofread.Issue, 0, len(parsed.Requirements))
	for _, req := range parsed.Requirements {
		if req.ElementIndex < 1 || req.ElementIndex > len(elements) {
			continue
		}
		el := elements[req.ElementIndex-1]
		valid = append(valid, req)
		issues = append(issues, proofread.Issue{
			Type:        proofread.IssueMissingSource,
			Severity:    proofread.SeverityMajor,
			Location:    el.Heading(),
			Description: fmt.Sprintf("claim needs a source: %s", req.Claim),
			Original:    el.Text,
			Confidence:  80,
			Action:      proofread.ActionAddSource,
		})
	}
	a.store(valid, elements)

	return proofread.AgentResult{
		AgentName:  a.Name(),
		AgentType:  a.Type(),
		Score:      100,
		Confidence: 90,
		Issues:     issues,
		Status:     proofread.StatusSuccess,
	}, nil
}

func (a *RequirementAgent) store(reqs []proofread.SourceRequirement, elements []article.Element) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requirements = reqs
	a.elements = elements
}
