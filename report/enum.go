package report

import (
	"encoding/json"
	"fmt"
)

// Impact is the rule-engine severity of a violation.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactSerious  Impact = "serious"
	ImpactModerate Impact = "moderate"
	ImpactMinor    Impact = "minor"
)

// Valid reports whether i is one of the four known severities.
func (i Impact) Valid() bool {
	switch i {
	case ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown severities. A JSON null or empty string
// decodes to the zero value, which callers normalise.
func (i *Impact) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		if string(b) == "null" {
			*i = ""
			return nil
		}
		return fmt.Errorf("report: impact: %w", err)
	}
	v := Impact(s)
	if v != "" && !v.Valid() {
		return fmt.Errorf("report: unknown impact %q", s)
	}
	*i = v
	return nil
}

// ParseImpact maps a loose engine value onto the closed set. Anything
// unknown becomes minor.
func ParseImpact(s string) Impact {
	if v := Impact(s); v.Valid() {
		return v
	}
	return ImpactMinor
}

// Priority is the remediation priority assigned by the explanation service.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown priorities.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("report: priority: %w", err)
	}
	v := Priority(s)
	if !v.Valid() {
		return fmt.Errorf("report: unknown priority %q", s)
	}
	*p = v
	return nil
}
