// Package report defines the data model of an accessibility analysis: page
// metadata, rule-engine results, AI explanations, compliance summaries,
// vision simulations and the final report aggregate.
//
// Every type here is a plain value serialised as-is on the wire. Closed
// enumerations (Impact, Priority) are validated when decoded so that a
// malformed upstream payload never leaks an unknown tag downstream.
package report

// NotSpecified is the PageInfo.Lang sentinel for pages without a declared language.
const NotSpecified = "not-specified"

// PageInfo is the structural metadata extracted once per analysis.
type PageInfo struct {
	Title      string `json:"title"`
	Lang       string `json:"lang"`
	URL        string `json:"url"`
	HasH1      bool   `json:"hasH1"`
	ImageCount int    `json:"imageCount"`
	LinkCount  int    `json:"linkCount"`
	FormCount  int    `json:"formCount"`
}

// Node is one DOM node affected by a rule.
type Node struct {
	HTML           string   `json:"html"`
	Target         []string `json:"target"`
	FailureSummary string   `json:"failureSummary,omitempty"`
}

// RuleResult is one rule outcome as reported by the rule engine. Violations,
// passes and incomplete results share this shape; only violations carry nodes.
type RuleResult struct {
	ID          string   `json:"id"`
	Impact      Impact   `json:"impact"`
	Description string   `json:"description"`
	Help        string   `json:"help"`
	HelpURL     string   `json:"helpUrl"`
	Tags        []string `json:"tags"`
	Nodes       []Node   `json:"nodes,omitempty"`
}

// RawViolation is a RuleResult from the violations set.
type RawViolation = RuleResult

// Explanation is the AI-produced bundle attached to a violation.
type Explanation struct {
	Explanation           string   `json:"explanation"`
	ExplanationFr         string   `json:"explanationFr,omitempty"`
	FixSample             string   `json:"fixSample"`
	ScreenReaderNarration string   `json:"screenReaderNarration"`
	WCAGCriteria          string   `json:"wcagCriteria,omitempty"`
	AODAImpact            string   `json:"aodaImpact,omitempty"`
	Priority              Priority `json:"priority"`
	BusinessImpact        string   `json:"businessImpact,omitempty"`
}

// EnrichedViolation is the first-node projection of a RawViolation merged
// with its Explanation. Never mutated after creation.
type EnrichedViolation struct {
	ID          string   `json:"id"`
	Impact      Impact   `json:"impact"`
	Description string   `json:"description"`
	Help        string   `json:"help"`
	HelpURL     string   `json:"helpUrl"`
	Tags        []string `json:"tags"`
	HTML        string   `json:"html"`
	Target      []string `json:"target"`
	Explanation
	// Fallback is true when the explanation was substituted because the
	// AI service failed or answered with an unusable payload.
	Fallback bool `json:"fallback,omitempty"`
}

// ComplianceSummary aggregates violation counts into a verdict.
type ComplianceSummary struct {
	TotalViolations int      `json:"totalViolations"`
	CriticalIssues  int      `json:"criticalIssues"`
	SeriousIssues   int      `json:"seriousIssues"`
	ModerateIssues  int      `json:"moderateIssues"`
	MinorIssues     int      `json:"minorIssues"`
	IsCompliant     bool     `json:"isCompliant"`
	ComplianceLevel string   `json:"complianceLevel"`
	WCAGLevel       string   `json:"wcagLevel"`
	AODAStatus      string   `json:"aodaStatus"`
	Recommendations []string `json:"recommendations"`
}

// Screenshots holds the three baseline report views, base64-encoded PNG.
// A view that failed to capture is empty and has an entry in Errors.
type Screenshots struct {
	Original     string            `json:"original"`
	ColorBlind   string            `json:"colorBlind"`
	BlurryVision string            `json:"blurryVision"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// AODACompliance is the Ontario-specific guidance block.
type AODACompliance struct {
	IsCompliant         bool     `json:"isCompliant"`
	WCAGLevel           string   `json:"wcagLevel"`
	ComplianceLevel     string   `json:"complianceLevel"`
	OntarioRequirements string   `json:"ontarioRequirements"`
	BilingualNote       string   `json:"bilingualNote"`
	Recommendations     []string `json:"recommendations"`
}

// BusinessGuidance is the heuristic prioritisation block.
type BusinessGuidance struct {
	Priority       string `json:"priority"` // immediate | planned
	EstimatedFixes int    `json:"estimatedFixes"`
	ComplianceRisk string `json:"complianceRisk"` // high | medium | low
}

// Report is the root aggregate returned by an analysis.
type Report struct {
	ID               string              `json:"id"`
	URL              string              `json:"url"`
	Timestamp        string              `json:"timestamp"`
	PageInfo         PageInfo            `json:"pageInfo"`
	Summary          ComplianceSummary   `json:"summary"`
	Screenshots      Screenshots         `json:"screenshots"`
	Violations       []EnrichedViolation `json:"violations"`
	AODACompliance   AODACompliance      `json:"aodaCompliance"`
	BusinessGuidance BusinessGuidance    `json:"businessGuidance"`
	Warnings         []string            `json:"warnings,omitempty"`
}
