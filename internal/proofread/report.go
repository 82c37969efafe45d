package proofread

import (
	"fmt"
	"strings"
)

// renderDetailedReport produces the human-readable markdown report. It is
// deliberately timestamp-free so that aggregation stays idempotent.
func renderDetailedReport(res *IntegrationResult) string {
	var b strings.Builder

	b.WriteString("# Proofreading Report\n\n")

	b.WriteString("## Verdict\n\n")
	fmt.Fprintf(&b, "- Overall score: **%d** / 100\n", res.OverallScore)
	if res.PreviousScore != nil {
		fmt.Fprintf(&b, "- Previous score: %d\n", *res.PreviousScore)
	}
	fmt.Fprintf(&b, "- Passed: **%v** (%s)\n", res.Passed, res.PassReason)
	fmt.Fprintf(&b, "- Recommendation: **%s**\n\n", res.Recommendation)

	b.WriteString("## Score Breakdown\n\n")
	s := res.RegulationScore
	fmt.Fprintf(&b, "| Category | Score | Max |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Fact checking | %.1f | %.0f |\n", s.FactChecking, weightFactChecking)
	fmt.Fprintf(&b, "| Reliability | %.1f | %.0f |\n", s.Reliability, weightReliability)
	fmt.Fprintf(&b, "| Brand compliance | %.1f | %.0f |\n", s.BrandCompliance, weightBrand)
	fmt.Fprintf(&b, "| Structure rules | %.1f | %.0f |\n", s.StructureRules, weightStructure)
	fmt.Fprintf(&b, "| Legal compliance | %.1f | %.0f |\n", s.LegalCompliance, weightLegal)
	fmt.Fprintf(&b, "| Overall quality | %.1f | %.0f |\n\n", s.OverallQuality, qualityAllSucceeded)

	b.WriteString("## Agent Outcomes\n\n")
	for _, r := range res.AgentResults {
		marker := statusMarker(r.Status)
		fmt.Fprintf(&b, "- %s **%s** (%s): score %d, %d issues, %d suggestions",
			marker, r.AgentName, r.Status, r.Score, len(r.Issues), len(r.Suggestions))
		if r.PartialData != nil {
			fmt.Fprintf(&b, " - %s", r.PartialData.Message)
		}
		if r.Error != "" {
			fmt.Fprintf(&b, " - %s", r.Error)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nSuccessful: %d, failed: %d, timed out: %d\n\n",
		res.ExecutionSummary.SuccessfulAgents,
		res.ExecutionSummary.FailedAgents,
		res.ExecutionSummary.TimeoutAgents)

	writeIssueSection(&b, "Critical Issues", res.CriticalIssues)
	writeIssueSection(&b, "Major Issues", res.MajorIssues)
	writeIssueSection(&b, "Minor Issues", res.MinorIssues)

	if len(res.SourceInsertions) > 0 {
		b.WriteString("## Source Insertions\n\n")
		for i, ins := range res.SourceInsertions {
			loc := ins.Heading
			if loc == "" {
				loc = fmt.Sprintf("element %d", ins.ElementIndex)
			}
			fmt.Fprintf(&b, "%d. Insert [%s](%s) after %s\n", i+1, ins.Title, ins.URL, loc)
		}
		b.WriteString("\n")
	}

	if len(res.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for i, sg := range res.Suggestions {
			fmt.Fprintf(&b, "%d. [%s] %s", i+1, sg.Priority, sg.Description)
			if sg.Implementation != "" {
				fmt.Fprintf(&b, " - %s", sg.Implementation)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func statusMarker(s Status) string {
	switch s {
	case StatusSuccess:
		return "✅"
	case StatusPartialSuccess:
		return "⚠️"
	case StatusTimeout:
		return "⏱"
	default:
		return "❌"
	}
}

func writeIssueSection(b *strings.Builder, title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, iss := range issues {
		fmt.Fprintf(b, "- **%s** at %s: %s", iss.Type, iss.Location, iss.Description)
		if iss.Suggestion != "" {
			fmt.Fprintf(b, " (suggestion: %s)", iss.Suggestion)
		}
		if iss.ActionType == actionTypeRephrase {
			fmt.Fprintf(b, " [rephrase: %s]", iss.CautionNote)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
