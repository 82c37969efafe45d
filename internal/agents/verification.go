package agents

import (
	"context"
	"fmt"

	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

const payloadFormat = `Respond with a single JSON object:
{
  "score": <0-100, how well the article holds up in your category>,
  "confidence": <0-100>,
  "issues": [
    {
      "type": "factual-error|outdated-info|inconsistency|missing-source|legal-risk|brand-error|technical-error|style-issue",
      "severity": "critical|major|minor|info",
      "location": "<nearest heading or short excerpt>",
      "description": "<what is wrong>",
      "original": "<the offending text>",
      "suggestion": "<corrected text, if you have one>",
      "confidence": <0-100>
    }
  ],
  "suggestions": [
    {
      "type": "<category>",
      "description": "<improvement>",
      "implementation": "<how to apply it>",
      "priority": "high|medium|low"
    }
  ]
}
Output only the JSON object, no prose around it.`

// VerificationAgent is one independent phase-one checker. All verification
// agents share the same execution shape and differ only in their type tag and
// instruction text.
type VerificationAgent struct {
	name         string
	typ          proofread.AgentType
	instructions string
	client       llm.Client
}

var _ proofread.Agent = (*VerificationAgent)(nil)

func (a *VerificationAgent) Name() string              { return a.name }
func (a *VerificationAgent) Type() proofread.AgentType { return a.typ }

// Execute sends the article to the model and turns its reply into a scored
// result. Parse failures degrade to a low-confidence fallback; only transport
// failures surface as errors.
func (a *VerificationAgent) Execute(ctx context.Context, content string, _ *proofread.Context) (proofread.AgentResult, error) {
	prompt := fmt.Sprintf("Check the following article.\n\n---\n%s\n---\n\n%s", content, payloadFormat)

	text, err := generate(ctx, a.client, a.typ, a.instructions, prompt)
	if err != nil {
		return proofread.AgentResult{}, fmt.Errorf("%s: %w", a.name, err)
	}

	p, err := decodePayload(text)
	if err != nil {
		p = fallbackPayload(a.name, err)
	}

	return proofread.AgentResult{
		AgentName:   a.name,
		AgentType:   a.typ,
		Score:       clampScore(p.Score),
		Confidence:  clampScore(p.Confidence),
		Issues:      p.Issues,
		Suggestions: p.Suggestions,
		Status:      proofread.StatusSuccess,
	}, nil
}

func newVerification(name string, typ proofread.AgentType, instructions string, client llm.Client) *VerificationAgent {
	return &VerificationAgent{name: name, typ: typ, instructions: instructions, client: client}
}

// NewProperNouns checks names of people, companies, products and places.
func NewProperNouns(client llm.Client) *VerificationAgent {
	return newVerification("proper-noun-verification", proofread.TypeProperNouns,
		`You verify proper nouns in articles: person names, company names, product names, place names, titles.
Search the web to confirm spellings and current official names. Flag misspellings, outdated names, and mixed-up entities.`,
		client)
}

// NewNumbersStats checks figures, statistics and units.
func NewNumbersStats(client llm.Client) *VerificationAgent {
	return newVerification("numbers-statistics-verification", proofread.TypeNumbersStats,
		`You verify numbers in articles: statistics, percentages, prices, counts, units and orders of magnitude.
Search the web for the authoritative figure and flag values that are wrong, stale, or internally inconsistent.`,
		client)
}

// NewDatesTimeline checks dates and event ordering.
func NewDatesTimeline(client llm.Client) *VerificationAgent {
	return newVerification("dates-timeline-verification", proofread.TypeDatesTimeline,
		`You verify dates and timelines in articles. Check that stated dates are correct, that relative
references ("last year", "recently") still hold, and that event ordering is consistent.`,
		client)
}

// NewFactsCases checks factual claims and cited cases or examples.
func NewFactsCases(client llm.Client) *VerificationAgent {
	return newVerification("facts-cases-verification", proofread.TypeFactsCases,
		`You verify factual claims and case examples in articles. Search the web for each substantive claim,
confirm the cases described actually happened as stated, and flag claims that cannot be substantiated.`,
		client)
}

// NewTechnical checks domain-specific technical accuracy.
func NewTechnical(client llm.Client) *VerificationAgent {
	return newVerification("technical-verification", proofread.TypeTechnical,
		`You verify technical content: terminology, described mechanisms, specifications and procedures.
Search the web where needed. Flag explanations that are wrong, oversimplified to the point of error, or obsolete.`,
		client)
}

// NewLegal checks legal and regulatory compliance claims.
func NewLegal(client llm.Client) *VerificationAgent {
	return newVerification("legal-compliance-verification", proofread.TypeLegal,
		`You check articles for legal risk: defamation, unsubstantiated superlatives, regulated claims
(medical, financial), licensing problems and privacy issues. Use severity "critical" for anything that
could not be published as-is.`,
		client)
}

// NewBrand checks brand and style-guide compliance.
func NewBrand(client llm.Client) *VerificationAgent {
	return newVerification("brand-compliance-verification", proofread.TypeBrand,
		`You check articles against brand and editorial style rules: tone, banned phrasing, competitor
mentions, and correct rendering of the publisher's own product and brand names.`,
		client)
}
