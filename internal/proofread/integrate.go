package proofread

import (
	"fmt"
	"math"
	"sort"
)

// Fixed rubric weights. Fact checking assumes the four-agent verification
// roster; see weightPerFactAgent if the roster ever changes.
const (
	weightFactChecking  = 40.0
	weightReliability   = 20.0
	weightBrand         = 15.0
	weightStructure     = 15.0
	weightLegal         = 5.0
	weightPerFactAgent  = 10.0
	weightPerRelAgent   = 10.0
	qualityAllSucceeded = 5.0
	qualityDegraded     = 3.0

	// Structural rules are a pluggable external check; until one is wired
	// in, every run gets the same constant.
	structureRulesDefault = 12.0

	passThreshold        = 75
	improvementFloor     = 70
	improvementMinimum   = 0.10
	reviseScoreFloor     = 60
	reviseCriticalCeiling = 2
	maxSuggestions       = 10
)

const (
	actionTypeAddSource = "add-source"
	actionTypeRephrase  = "rephrase"

	defaultCautionNote = "no credible source was found for this claim; soften or remove it rather than citing"
	untitledSource     = "Untitled source"
)

// Integrate merges every agent result into the final report. It is pure and
// deterministic: the same result list and previous score always produce an
// identical report.
func Integrate(results []AgentResult, previousScore *int) IntegrationResult {
	out := IntegrationResult{
		AgentResults:   results,
		PreviousScore:  previousScore,
		CriticalIssues: []Issue{},
		MajorIssues:    []Issue{},
		MinorIssues:    []Issue{},
		Suggestions:    []Suggestion{},
	}

	for _, r := range results {
		switch r.Status {
		case StatusSuccess, StatusPartialSuccess:
			out.ExecutionSummary.SuccessfulAgents++
		case StatusTimeout:
			out.ExecutionSummary.TimeoutAgents++
		default:
			out.ExecutionSummary.FailedAgents++
		}

		for _, iss := range r.Issues {
			switch iss.Severity {
			case SeverityCritical:
				out.CriticalIssues = append(out.CriticalIssues, tagAction(iss))
			case SeverityMajor:
				out.MajorIssues = append(out.MajorIssues, tagAction(iss))
			default:
				out.MinorIssues = append(out.MinorIssues, iss)
			}
		}
		out.Suggestions = append(out.Suggestions, r.Suggestions...)
	}

	out.RegulationScore = computeRegulationScore(results)
	out.OverallScore = out.RegulationScore.Total
	out.Passed, out.PassReason = decidePass(out.OverallScore, previousScore)
	out.Recommendation = decideRecommendation(out.Passed, out.OverallScore, len(out.CriticalIssues))
	out.SourceInsertions = buildSourceInsertions(results)
	out.Suggestions = prioritizeSuggestions(out.Suggestions)
	out.DetailedReport = renderDetailedReport(&out)

	return out
}

// tagAction marks a critical or major issue for the downstream reviser. An
// issue whose agent found no usable source is flagged for rephrasing and must
// carry a caution note; everything else defaults to a source insertion.
func tagAction(iss Issue) Issue {
	if iss.Action == ActionRephrase {
		iss.ActionType = actionTypeRephrase
		if iss.CautionNote == "" {
			iss.CautionNote = defaultCautionNote
		}
	} else {
		iss.ActionType = actionTypeAddSource
	}
	return iss
}

// computeRegulationScore applies the fixed-weight rubric. Absent agents
// contribute zero to their bucket; so do errored and timed-out agents.
// Partial successes contribute their degraded score.
func computeRegulationScore(results []AgentResult) RegulationScore {
	if len(results) == 0 {
		return RegulationScore{}
	}

	var score RegulationScore
	allSucceeded := true

	for _, r := range results {
		if !r.Succeeded() {
			allSucceeded = false
			continue
		}
		ratio := float64(r.Score) / 100.0
		switch r.AgentType {
		case TypeProperNouns, TypeNumbersStats, TypeDatesTimeline, TypeFactsCases:
			score.FactChecking += weightPerFactAgent * ratio
		case TypeCitations, TypeTechnical:
			score.Reliability += weightPerRelAgent * ratio
		case TypeBrand:
			score.BrandCompliance = weightBrand * ratio
		case TypeLegal:
			score.LegalCompliance = weightLegal * ratio
		}
	}

	score.FactChecking = math.Min(score.FactChecking, weightFactChecking)
	score.Reliability = math.Min(score.Reliability, weightReliability)
	score.StructureRules = structureRulesDefault
	if allSucceeded {
		score.OverallQuality = qualityAllSucceeded
	} else {
		score.OverallQuality = qualityDegraded
	}

	sum := score.FactChecking + score.Reliability + score.BrandCompliance +
		score.StructureRules + score.LegalCompliance + score.OverallQuality
	score.Total = int(math.Round(sum))

	return score
}

// decidePass applies the two-rule policy: an absolute threshold, or a
// relative-improvement rule when a previous attempt's score is known.
func decidePass(overall int, previous *int) (bool, string) {
	if overall >= passThreshold {
		return true, fmt.Sprintf("score %d meets the %d-point threshold", overall, passThreshold)
	}
	if previous != nil && *previous > 0 && overall >= improvementFloor {
		improvement := float64(overall-*previous) / float64(*previous)
		if improvement >= improvementMinimum {
			return true, fmt.Sprintf("score %d improved %.0f%% over the previous %d and clears the %d-point floor",
				overall, improvement*100, *previous, improvementFloor)
		}
	}
	return false, fmt.Sprintf("score %d is below the %d-point threshold", overall, passThreshold)
}

func decideRecommendation(passed bool, overall, criticalCount int) Recommendation {
	if passed && criticalCount == 0 {
		return RecommendPublish
	}
	if overall >= reviseScoreFloor || criticalCount <= reviseCriticalCeiling {
		return RecommendRevise
	}
	return RecommendReject
}

// buildSourceInsertions turns the citation agent's verified URLs into splice
// instructions for the downstream text patcher. Only verified (or unchecked)
// non-empty URLs survive.
func buildSourceInsertions(results []AgentResult) []SourceInsertion {
	var insertions []SourceInsertion
	for _, r := range results {
		if r.AgentType != TypeCitations {
			continue
		}
		for _, v := range r.VerifiedURLs {
			if v.URL == "" {
				continue
			}
			if v.Status != URLOK && v.Status != "" {
				continue
			}
			title := v.Title
			if title == "" {
				title = untitledSource
			}
			insertions = append(insertions, SourceInsertion{
				ElementIndex: v.ElementIndex,
				Heading:      v.Heading,
				URL:          v.URL,
				Title:        title,
			})
		}
	}
	return insertions
}

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// prioritizeSuggestions orders high before medium before low, preserving
// input order within each rank, and truncates to the top ten.
func prioritizeSuggestions(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, ok := priorityRank[sorted[i].Priority]
		if !ok {
			ri = len(priorityRank)
		}
		rj, ok := priorityRank[sorted[j].Priority]
		if !ok {
			rj = len(priorityRank)
		}
		return ri < rj
	})
	if len(sorted) > maxSuggestions {
		sorted = sorted[:maxSuggestions]
	}
	return sorted
}
