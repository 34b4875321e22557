package report

import "time"

// Business guidance values.
const (
	PriorityImmediate = "immediate"
	PriorityPlanned   = "planned"
	RiskHigh          = "high"
	RiskMedium        = "medium"
	RiskLow           = "low"
)

const (
	ontarioCompliant = "Meets basic AODA requirements based on automated testing"
	ontarioReview    = "May not meet AODA requirements - manual review recommended"
	bilingualNote    = "Ensure French language accessibility equivalent to English content per AODA Section 14"
	timestampLayout  = "2006-01-02T15:04:05.000Z07:00"
)

// Parts are the stage outputs an analysis folds into a Report.
type Parts struct {
	ID          string
	URL         string
	At          time.Time
	PageInfo    PageInfo
	Summary     ComplianceSummary
	Screenshots Screenshots
	Violations  []EnrichedViolation
	Warnings    []string
}

// Assemble builds the immutable report aggregate from the stage outputs.
func Assemble(p Parts) Report {
	violations := p.Violations
	if violations == nil {
		violations = []EnrichedViolation{}
	}
	recs := p.Summary.Recommendations
	if recs == nil {
		recs = []string{}
	}
	p.Summary.Recommendations = recs

	ontario := ontarioReview
	if p.Summary.IsCompliant {
		ontario = ontarioCompliant
	}

	return Report{
		ID:          p.ID,
		URL:         p.URL,
		Timestamp:   Timestamp(p.At),
		PageInfo:    p.PageInfo,
		Summary:     p.Summary,
		Screenshots: p.Screenshots,
		Violations:  violations,
		AODACompliance: AODACompliance{
			IsCompliant:         p.Summary.IsCompliant,
			WCAGLevel:           p.Summary.WCAGLevel,
			ComplianceLevel:     p.Summary.ComplianceLevel,
			OntarioRequirements: ontario,
			BilingualNote:       bilingualNote,
			Recommendations:     recs,
		},
		BusinessGuidance: guidance(p.Summary, violations),
		Warnings:         p.Warnings,
	}
}

func guidance(s ComplianceSummary, violations []EnrichedViolation) BusinessGuidance {
	g := BusinessGuidance{
		Priority:       PriorityPlanned,
		EstimatedFixes: len(violations),
		ComplianceRisk: RiskLow,
	}
	if s.CriticalIssues > 0 {
		g.Priority = PriorityImmediate
	}
	for _, v := range violations {
		if v.Priority == PriorityCritical {
			g.Priority = PriorityImmediate
			break
		}
	}
	switch {
	case s.CriticalIssues > 0:
		g.ComplianceRisk = RiskHigh
	case s.SeriousIssues > 0:
		g.ComplianceRisk = RiskMedium
	}
	return g
}

// Timestamp formats t the way every response carries time: UTC, millisecond
// precision, RFC 3339.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}
