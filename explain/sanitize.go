package explain

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/aodacheck/report"
)

// Sanitizer strips markup from AI prose before it reaches a report.
// Code samples are left untouched: they are meant to contain HTML.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a Sanitizer using bluemonday's strict policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes every tag from s and returns plain text.
func (s *Sanitizer) Text(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// Explanation sanitizes every prose field of e.
func (s *Sanitizer) Explanation(e report.Explanation) report.Explanation {
	e.Explanation = s.Text(e.Explanation)
	e.ExplanationFr = s.Text(e.ExplanationFr)
	e.ScreenReaderNarration = s.Text(e.ScreenReaderNarration)
	e.WCAGCriteria = s.Text(e.WCAGCriteria)
	e.AODAImpact = s.Text(e.AODAImpact)
	e.BusinessImpact = s.Text(e.BusinessImpact)
	return e
}
