package agents

import (
	"net/http"

	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
)

// RosterOptions selects optional agents. Legal review is opt-in because most
// articles carry no regulated claims; brand checking is opt-out because it
// only makes sense with a configured style guide.
type RosterOptions struct {
	IncludeLegal bool
	SkipBrand    bool
	HTTPClient   *http.Client
}

// Roster builds the full agent set: the phase-one verification fan-out and
// the three-stage source chain.
func Roster(client llm.Client, opts RosterOptions) (phaseOne []proofread.Agent, requirement, search, citations proofread.Agent) {
	phaseOne = []proofread.Agent{
		NewProperNouns(client),
		NewNumbersStats(client),
		NewDatesTimeline(client),
		NewFactsCases(client),
		NewTechnical(client),
	}
	if !opts.SkipBrand {
		phaseOne = append(phaseOne, NewBrand(client))
	}
	if opts.IncludeLegal {
		phaseOne = append(phaseOne, NewLegal(client))
	}

	return phaseOne, NewRequirement(client), NewSearch(client), NewCitations(opts.HTTPClient)
}
