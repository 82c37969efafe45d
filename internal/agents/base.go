// Package agents contains the concrete proofreading agents: the independent
// verification agents that fan out in phase one, and the three-stage source
// chain that runs sequentially in phase two.
package agents

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/proofworks/proofpipe/internal/jsonx"
	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

//go:embed payload_schema.json
var payloadSchemaJSON string

var payloadSchema = gojsonschema.NewStringLoader(payloadSchemaJSON)

// payload is the JSON shape every verification agent asks the model for.
type payload struct {
	Score       int                    `json:"score"`
	Confidence  int                    `json:"confidence"`
	Issues      []proofread.Issue      `json:"issues"`
	Suggestions []proofread.Suggestion `json:"suggestions"`
}

// decodePayload extracts and validates a verification payload from free-text
// model output. Malformed output is expected input here, not an exception.
func decodePayload(text string) (payload, error) {
	raw, err := jsonx.Extract(text)
	if err != nil {
		return payload{}, fmt.Errorf("extract payload: %w", err)
	}
	res, err := gojsonschema.Validate(payloadSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return payload{}, fmt.Errorf("validate payload: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return payload{}, fmt.Errorf("payload schema: %s", strings.Join(msgs, "; "))
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// fallbackPayload is what an agent reports when the model's output could not
// be parsed at all: a low-confidence pass-through instead of a hard failure.
func fallbackPayload(agentName string, parseErr error) payload {
	log.Warn().Err(parseErr).Str("agent", agentName).Msg("unparseable model output, using fallback result")
	return payload{
		Score:      70,
		Confidence: 30,
		Suggestions: []proofread.Suggestion{{
			Type:        "manual-review",
			Description: "automated verification output could not be parsed; review this category manually",
			Priority:    proofread.PriorityMedium,
		}},
	}
}

// progressBuffer is the shared partial-progress store behind the salvage
// protocol. Agents write it as they complete items; the executor reads it
// once, after the deadline, through a snapshot.
type progressBuffer struct {
	mu  sync.Mutex
	buf proofread.PartialResults
}

func (p *progressBuffer) begin(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = proofread.PartialResults{TotalItems: total}
}

func (p *progressBuffer) complete(issues []proofread.Issue, urls []proofread.VerifiedURL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.CompletedItems++
	p.buf.Issues = append(p.buf.Issues, issues...)
	p.buf.VerifiedURLs = append(p.buf.VerifiedURLs, urls...)
}

func (p *progressBuffer) snapshot() *proofread.PartialResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := proofread.PartialResults{
		CompletedItems: p.buf.CompletedItems,
		TotalItems:     p.buf.TotalItems,
		Issues:         append([]proofread.Issue(nil), p.buf.Issues...),
		Suggestions:    append([]proofread.Suggestion(nil), p.buf.Suggestions...),
		VerifiedURLs:   append([]proofread.VerifiedURL(nil), p.buf.VerifiedURLs...),
	}
	return &cp
}

// generate sends one model request for the agent, honoring the agent type's
// web-search requirement.
func generate(ctx context.Context, client llm.Client, typ proofread.AgentType, instructions, prompt string) (string, error) {
	return client.Generate(ctx, llm.Request{
		Instructions: instructions,
		Prompt:       prompt,
		WebSearch:    typ.UsesWebSearch(),
	})
}
