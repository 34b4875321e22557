package explain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/aodacheck/report"
)

// ErrNoJSON is returned when an answer contains no JSON object.
var ErrNoJSON = errors.New("explain: no JSON object in answer")

// ExtractJSON returns the first balanced {...} object in text. Braces
// inside JSON strings are ignored.
func ExtractJSON(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

type looseExplanation struct {
	Explanation           string `json:"explanation"`
	ExplanationFr         string `json:"explanationFr"`
	FixSample             string `json:"fixSample"`
	ScreenReaderNarration string `json:"screenReaderNarration"`
	WCAGCriteria          string `json:"wcagCriteria"`
	AODAImpact            string `json:"aodaImpact"`
	Priority              string `json:"priority"`
	BusinessImpact        string `json:"businessImpact"`
}

// Parse extracts and validates an Explanation from a provider answer.
// explanation, fixSample and screenReaderNarration are required and the
// priority must be one of critical, high, medium, low.
func Parse(text string) (report.Explanation, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return report.Explanation{}, ErrNoJSON
	}
	var l looseExplanation
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return report.Explanation{}, fmt.Errorf("explain: decode answer: %w", err)
	}

	var missing []string
	if strings.TrimSpace(l.Explanation) == "" {
		missing = append(missing, "explanation")
	}
	if strings.TrimSpace(l.FixSample) == "" {
		missing = append(missing, "fixSample")
	}
	if strings.TrimSpace(l.ScreenReaderNarration) == "" {
		missing = append(missing, "screenReaderNarration")
	}
	if len(missing) > 0 {
		return report.Explanation{}, fmt.Errorf("explain: answer missing %s", strings.Join(missing, ", "))
	}
	prio := report.Priority(strings.ToLower(strings.TrimSpace(l.Priority)))
	if !prio.Valid() {
		return report.Explanation{}, fmt.Errorf("explain: invalid priority %q", l.Priority)
	}

	return report.Explanation{
		Explanation:           l.Explanation,
		ExplanationFr:         l.ExplanationFr,
		FixSample:             l.FixSample,
		ScreenReaderNarration: l.ScreenReaderNarration,
		WCAGCriteria:          l.WCAGCriteria,
		AODAImpact:            l.AODAImpact,
		Priority:              prio,
		BusinessImpact:        l.BusinessImpact,
	}, nil
}
