// Package summary derives the compliance verdict and recommendations from
// rule violations and page metadata.
package summary

import (
	"github.com/hazyhaar/aodacheck/report"
)

// Recommendation texts.
const (
	RecHeading  = "Add a main heading (h1) to improve page structure"
	RecLanguage = "Specify page language for screen readers (AODA requirement)"
	RecContrast = "Improve color contrast ratios to meet WCAG AA standards"
	RecAltText  = "Add alternative text to images for screen reader users"
	RecLabels   = "Ensure all form controls have proper labels"
)

// Compliance levels and statuses.
const (
	LevelAA            = "AA"
	LevelPartial       = "Partial"
	StatusCompliant    = "Compliant"
	StatusNonCompliant = "Non-compliant"
)

type rule struct {
	applies func([]report.RawViolation, report.PageInfo) bool
	text    string
}

// rules fire independently; every applicable one contributes.
var rules = []rule{
	{func(_ []report.RawViolation, p report.PageInfo) bool { return !p.HasH1 }, RecHeading},
	{func(_ []report.RawViolation, p report.PageInfo) bool {
		return p.Lang == "" || p.Lang == report.NotSpecified
	}, RecLanguage},
	{hasRule("color-contrast"), RecContrast},
	{hasRule("image-alt"), RecAltText},
	{hasRule("label"), RecLabels},
}

func hasRule(id string) func([]report.RawViolation, report.PageInfo) bool {
	return func(vs []report.RawViolation, _ report.PageInfo) bool {
		for _, v := range vs {
			if v.ID == id {
				return true
			}
		}
		return false
	}
}

// Summarize counts violations by impact and derives the verdict. A page is
// compliant only with zero violations of any severity; the level drops to
// Partial only on critical or serious issues.
func Summarize(violations []report.RawViolation, page report.PageInfo) report.ComplianceSummary {
	s := report.ComplianceSummary{
		TotalViolations: len(violations),
		WCAGLevel:       LevelAA,
	}
	for _, v := range violations {
		switch v.Impact {
		case report.ImpactCritical:
			s.CriticalIssues++
		case report.ImpactSerious:
			s.SeriousIssues++
		case report.ImpactModerate:
			s.ModerateIssues++
		default:
			s.MinorIssues++
		}
	}

	s.IsCompliant = s.TotalViolations == 0
	s.ComplianceLevel = LevelAA
	if s.CriticalIssues > 0 || s.SeriousIssues > 0 {
		s.ComplianceLevel = LevelPartial
	}
	s.AODAStatus = StatusNonCompliant
	if s.IsCompliant {
		s.AODAStatus = StatusCompliant
	}

	s.Recommendations = []string{}
	for _, r := range rules {
		if r.applies(violations, page) {
			s.Recommendations = append(s.Recommendations, r.text)
		}
	}
	return s
}

// VisionRecommendations is the static design guidance attached to every
// vision simulation report.
func VisionRecommendations() []report.RecommendationCategory {
	return []report.RecommendationCategory{
		{
			Category:        "Color and Contrast",
			Recommendations: []string{
				"Use sufficient color contrast ratios (4.5:1 for normal text, 3:1 for large text)",
				"Never rely on color alone to convey information",
				"Provide text labels or patterns in addition to color coding",
				"Test your site with color blindness simulators",
			},
		},
		{
			Category:        "Visual Layout",
			Recommendations: []string{
				"Ensure important information is not placed only in peripheral areas",
				"Provide multiple ways to access critical functionality",
				"Use clear, readable fonts at appropriate sizes",
				"Maintain consistent navigation and layout patterns",
			},
		},
		{
			Category:        "Low Vision Support",
			Recommendations: []string{
				"Support browser zoom up to 200% without horizontal scrolling",
				"Provide high contrast mode options",
				"Use focus indicators that are clearly visible",
				"Ensure text can be resized without breaking layout",
			},
		},
		{
			Category:        "General Accessibility",
			Recommendations: []string{
				"Provide alternative text for all images",
				"Use proper heading structure (h1, h2, h3, etc.)",
				"Ensure keyboard navigation works for all interactive elements",
				"Include skip links for main content areas",
			},
		},
	}
}
