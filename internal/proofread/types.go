// Package proofread implements the multi-agent article proofreading pipeline:
// concurrent verification agents, a sequential source chain, and the final
// score aggregation that decides whether an article may be published.
package proofread

import (
	"time"

	"github.com/proofworks/proofpipe/internal/article"
)

// AgentType identifies an agent kind. The set is closed; each type carries
// its own deadline budget and web-search requirement.
type AgentType string

const (
	TypeProperNouns       AgentType = "proper-nouns"
	TypeNumbersStats      AgentType = "numbers-stats"
	TypeDatesTimeline     AgentType = "dates-timeline"
	TypeFactsCases        AgentType = "facts-cases"
	TypeBrand             AgentType = "brand"
	TypeCitations         AgentType = "citations"
	TypeTechnical         AgentType = "technical"
	TypeLegal             AgentType = "legal"
	TypeSourceRequirement AgentType = "source-requirement"
	TypeSourceSearch      AgentType = "source-search"
)

// DefaultTimeout returns the deadline budget for the agent type. Web-search
// agents get long budgets because a single search-backed completion routinely
// runs for many minutes; pure-reasoning agents get short ones.
func (t AgentType) DefaultTimeout() time.Duration {
	switch t {
	case TypeSourceSearch:
		return 40 * time.Minute
	case TypeLegal, TypeFactsCases, TypeTechnical:
		return 20 * time.Minute
	case TypeProperNouns, TypeNumbersStats:
		return 15 * time.Minute
	case TypeDatesTimeline:
		return 12 * time.Minute
	case TypeCitations, TypeBrand, TypeSourceRequirement:
		return 10 * time.Minute
	default:
		return 15 * time.Minute
	}
}

// UsesWebSearch reports whether the agent type sends search-backed requests.
func (t AgentType) UsesWebSearch() bool {
	switch t {
	case TypeProperNouns, TypeNumbersStats, TypeFactsCases, TypeTechnical, TypeLegal, TypeSourceSearch:
		return true
	default:
		return false
	}
}

// Status is the outcome classification of one agent invocation.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial-success"
	StatusError          Status = "error"
	StatusTimeout        Status = "timeout"
)

// Severity ranks an issue for scoring and for revision batching.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// IssueType categorizes what kind of problem an agent detected.
type IssueType string

const (
	IssueFactualError   IssueType = "factual-error"
	IssueOutdatedInfo   IssueType = "outdated-info"
	IssueInconsistency  IssueType = "inconsistency"
	IssueMissingSource  IssueType = "missing-source"
	IssueLegalRisk      IssueType = "legal-risk"
	IssueBrandError     IssueType = "brand-error"
	IssueTechnicalError IssueType = "technical-error"
	IssueStyle          IssueType = "style-issue"
)

// Issue action hints supplied by source agents. ActionRephrase means no
// credible source exists and the claim must be softened, not cited.
const (
	ActionAddSource = "add-source"
	ActionRephrase  = "rephrase-with-caution"
)

// Issue is a single detected problem in the article.
type Issue struct {
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Original    string    `json:"original"`
	Suggestion  string    `json:"suggestion,omitempty"`
	Confidence  int       `json:"confidence"`

	// Set by source agents; consumed by the aggregator when tagging
	// critical/major issues for the revision step.
	Action      string `json:"action,omitempty"`
	CautionNote string `json:"cautionNote,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
	// ActionType is filled in by the aggregator: "add-source" or "rephrase".
	ActionType string `json:"actionType,omitempty"`
}

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is a non-corrective improvement recommendation. It is not tied
// to a specific text span.
type Suggestion struct {
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Implementation string   `json:"implementation"`
	Priority       Priority `json:"priority"`
}

// URLStatus is the verification state of a candidate source URL.
type URLStatus string

const (
	URLOK       URLStatus = "ok"
	URLNotFound URLStatus = "not_found"
	URLError    URLStatus = "error"
)

// VerifiedURL is citation-agent extension data: one candidate source URL
// together with its verification state and article location.
type VerifiedURL struct {
	URL          string    `json:"url"`
	Status       URLStatus `json:"status"`
	Title        string    `json:"title,omitempty"`
	Claim        string    `json:"claim,omitempty"`
	Heading      string    `json:"heading,omitempty"`
	ElementIndex int       `json:"elementIndex,omitempty"`
	Confidence   int       `json:"confidence,omitempty"`
}

// PartialData summarizes salvaged progress on a partial-success result.
type PartialData struct {
	CompletedItems int    `json:"completedItems"`
	TotalItems     int    `json:"totalItems"`
	Message        string `json:"message"`
}

// PartialResults is the internal progress buffer an agent exposes for salvage
// at deadline. It is written only by the owning agent's execution and read by
// the executor after that execution is abandoned.
type PartialResults struct {
	CompletedItems int
	TotalItems     int
	Issues         []Issue
	Suggestions    []Suggestion
	VerifiedURLs   []VerifiedURL
}

// AgentResult is the immutable outcome of one agent invocation.
type AgentResult struct {
	AgentName     string        `json:"agentName"`
	AgentType     AgentType     `json:"agentType"`
	ExecutionTime time.Duration `json:"executionTime"`
	Score         int           `json:"score"`
	Issues        []Issue       `json:"issues"`
	Suggestions   []Suggestion  `json:"suggestions"`
	Confidence    int           `json:"confidence"`
	Status        Status        `json:"status"`
	Error         string        `json:"error,omitempty"`
	VerifiedURLs  []VerifiedURL `json:"verifiedUrls,omitempty"`
	PartialData   *PartialData  `json:"partialData,omitempty"`
}

// Succeeded reports whether the result counts as usable output. Partial
// success counts: a degraded result still feeds the aggregator.
func (r AgentResult) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusPartialSuccess
}

// SourceRequirement flags one article element that lacks adequate sourcing.
// Produced by the requirement agent, consumed by the source-search agent.
type SourceRequirement struct {
	ElementIndex   int      `json:"elementIndex"`
	Claim          string   `json:"claim"`
	SearchKeywords []string `json:"searchKeywords,omitempty"`
	SourceType     string   `json:"sourceType,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// SourceInsertion instructs the downstream text patcher where to splice one
// citation into the article.
type SourceInsertion struct {
	ElementIndex int    `json:"elementIndex,omitempty"`
	Heading      string `json:"heading,omitempty"`
	URL          string `json:"url"`
	Title        string `json:"title"`
}

// PhaseOneFindings groups phase-one issues by agent category for handoff
// into the source chain.
type PhaseOneFindings struct {
	ProperNouns []Issue `json:"properNouns,omitempty"`
	Numbers     []Issue `json:"numbers,omitempty"`
	Dates       []Issue `json:"dates,omitempty"`
	Facts       []Issue `json:"facts,omitempty"`
	Technical   []Issue `json:"technical,omitempty"`
	Legal       []Issue `json:"legal,omitempty"`
	Brand       []Issue `json:"brand,omitempty"`
}

// SearchOutcome is the source-search agent's structured output handed to the
// citation-verification stage.
type SearchOutcome struct {
	VerifiedURLs []VerifiedURL
	Issues       []Issue
}

// Context carries structured data between phases and stages. Each stage
// consumes only the named fields it declares; unset fields stay nil.
type Context struct {
	PhaseOneFindings   *PhaseOneFindings
	SourceRequirements []SourceRequirement
	ParsedElements     []article.Element
	SearchOutcome      *SearchOutcome
}

// ExecutionSummary counts agent outcomes across the whole run.
type ExecutionSummary struct {
	TotalTime        time.Duration `json:"totalTime"`
	SuccessfulAgents int           `json:"successfulAgents"`
	FailedAgents     int           `json:"failedAgents"`
	TimeoutAgents    int           `json:"timeoutAgents"`
}

// RegulationScore is the fixed-weight scoring rubric. Total is the rounded
// sum of the components and equals the report's overall score.
type RegulationScore struct {
	FactChecking    float64 `json:"factChecking"`    // up to 40
	Reliability     float64 `json:"reliability"`     // up to 20
	BrandCompliance float64 `json:"brandCompliance"` // up to 15
	StructureRules  float64 `json:"structureRules"`  // up to 15, pluggable
	LegalCompliance float64 `json:"legalCompliance"` // up to 5
	OverallQuality  float64 `json:"overallQuality"`  // 5 or 3
	Total           int     `json:"total"`
}

// Recommendation is the terminal disposition for the article.
type Recommendation string

const (
	RecommendPublish Recommendation = "publish"
	RecommendRevise  Recommendation = "revise"
	RecommendReject  Recommendation = "reject"
)

// IntegrationResult is the final report for one pipeline run. It is always
// produced, even when every agent failed.
type IntegrationResult struct {
	OverallScore     int               `json:"overallScore"`
	Passed           bool              `json:"passed"`
	PassReason       string            `json:"passReason,omitempty"`
	PreviousScore    *int              `json:"previousScore,omitempty"`
	AgentResults     []AgentResult     `json:"agentResults"`
	CriticalIssues   []Issue           `json:"criticalIssues"`
	MajorIssues      []Issue           `json:"majorIssues"`
	MinorIssues      []Issue           `json:"minorIssues"`
	Suggestions      []Suggestion      `json:"suggestions"`
	ExecutionSummary ExecutionSummary  `json:"executionSummary"`
	RegulationScore  RegulationScore   `json:"regulationScore"`
	Recommendation   Recommendation    `json:"recommendation"`
	DetailedReport   string            `json:"detailedReport"`
	SourceInsertions []SourceInsertion `json:"sourceInsertions,omitempty"`
}
