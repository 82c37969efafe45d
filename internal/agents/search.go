package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

const searchInstructions = `You find authoritative sources for article claims using web search.
For the claim you are given, search for primary or reputable secondary sources and report the best
candidates, most credible first.

Report each candidate in this exact block format:

===result 1===
url: <the source URL>
title: <the page title>
confidence: <0-100>

===result 2===
...

If no credible source exists for the claim, output exactly:

===no source===
reason: <why nothing credible was found>`

// SearchAgent is the second stage of the source chain. It runs one web-backed
// search per requirement, so it is the longest-running agent in the pipeline
// and the main client of the partial-result salvage protocol.
type SearchAgent struct {
	client   llm.Client
	progress progressBuffer
}

var (
	_ proofread.Agent           = (*SearchAgent)(nil)
	_ proofread.PartialReporter = (*SearchAgent)(nil)
)

func NewSearch(client llm.Client) *SearchAgent {
	return &SearchAgent{client: client}
}

func (a *SearchAgent) Name() string              { return "source-search" }
func (a *SearchAgent) Type() proofread.AgentType { return proofread.TypeSourceSearch }

// PartialResults exposes the per-requirement progress buffer for salvage.
func (a *SearchAgent) PartialResults() *proofread.PartialResults {
	return a.progress.snapshot()
}

func (a *SearchAgent) Execute(ctx context.Context, _ string, pctx *proofread.Context) (proofread.AgentResult, error) {
	var requirements []proofread.SourceRequirement
	if pctx != nil {
		requirements = pctx.SourceRequirements
	}
	a.progress.begin(len(requirements))

	if len(requirements) == 0 {
		return proofread.AgentResult{
			AgentName:  a.Name(),
			AgentType:  a.Type(),
			Score:      100,
			Confidence: 100,
			Status:     proofread.StatusSuccess,
		}, nil
	}

	var (
		allURLs   []proofread.VerifiedURL
		allIssues []proofread.Issue
		found     int
	)

	for _, req := range requirements {
		if err := ctx.Err(); err != nil {
			return proofread.AgentResult{}, fmt.Errorf("source search: %w", err)
		}

		urls, issue := a.searchOne(ctx, req)
		if issue != nil {
			allIssues = append(allIssues, *issue)
			a.progress.complete([]proofread.Issue{*issue}, nil)
			continue
		}
		found++
		allURLs = append(allURLs, urls...)
		a.progress.complete(nil, urls)
	}

	score := 100
	if len(requirements) > 0 {
		score = int(float64(found)/float64(len(requirements))*100 + 0.5)
	}

	return proofread.AgentResult{
		AgentName:    a.Name(),
		AgentType:    a.Type(),
		Score:        score,
		Confidence:   score,
		Issues:       allIssues,
		VerifiedURLs: allURLs,
		Status:       proofread.StatusSuccess,
	}, nil
}

// searchOne resolves a single requirement. Any failure mode, transport error
// included, degrades into a rephrase issue so one bad search never sinks the
// whole stage.
func (a *SearchAgent) searchOne(ctx context.Context, req proofread.SourceRequirement) ([]proofread.VerifiedURL, *proofread.Issue) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Claim: %s\n", req.Claim)
	if len(req.SearchKeywords) > 0 {
		fmt.Fprintf(&prompt, "Suggested search terms: %s\n", strings.Join(req.SearchKeywords, ", "))
	}
	if req.SourceType != "" {
		fmt.Fprintf(&prompt, "Preferred source type: %s\n", req.SourceType)
	}

	text, err := generate(ctx, a.client, a.Type(), searchInstructions, prompt.String())
	if err != nil {
		log.Warn().Err(err).Int("element", req.ElementIndex).Msg("source search request failed")
		return nil, rephraseIssue(req, "source search failed; claim remains unsupported")
	}

	candidates := parseSearchResults(text)
	if len(candidates) == 0 {
		return nil, rephraseIssue(req, noSourceReason(text))
	}

	urls := make([]proofread.VerifiedURL, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, proofread.VerifiedURL{
			URL:          c.URL,
			Title:        c.Title,
			Claim:        req.Claim,
			ElementIndex: req.ElementIndex,
			Confidence:   c.Confidence,
		})
	}
	return urls, nil
}

func rephraseIssue(req proofread.SourceRequirement, note string) *proofread.Issue {
	return &proofread.Issue{
		Type:        proofread.IssueMissingSource,
		Severity:    proofread.SeverityMajor,
		Location:    fmt.Sprintf("element %d", req.ElementIndex),
		Description: fmt.Sprintf("no credible source found for: %s", req.Claim),
		Original:    req.Claim,
		Confidence:  70,
		Action:      proofread.ActionRephrase,
		CautionNote: note,
	}
}

// noSourceReason pulls the model's stated reason out of a ===no source===
// reply, falling back to a generic note.
func noSourceReason(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := cutPrefixFold(line, "reason:"); ok {
			if rest != "" {
				return rest
			}
		}
	}
	return "no credible source was found; soften or remove the claim"
}
