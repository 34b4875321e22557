package summary

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/aodacheck/report"
)

var goodPage = report.PageInfo{Title: "t", Lang: "en", HasH1: true}

func TestSummarize_NoViolations(t *testing.T) {
	s := Summarize(nil, goodPage)
	if !s.IsCompliant || s.TotalViolations != 0 {
		t.Fatalf("summary = %+v", s)
	}
	if s.ComplianceLevel != LevelAA || s.AODAStatus != StatusCompliant || s.WCAGLevel != "AA" {
		t.Fatalf("levels = %+v", s)
	}
	if s.Recommendations == nil || len(s.Recommendations) != 0 {
		t.Fatalf("recommendations = %#v", s.Recommendations)
	}
}

func TestSummarize_SingleMinorIsNonCompliant(t *testing.T) {
	s := Summarize([]report.RawViolation{{ID: "region", Impact: report.ImpactMinor}}, goodPage)
	if s.IsCompliant {
		t.Fatal("a single minor violation must make the page non-compliant")
	}
	if s.ComplianceLevel != LevelAA {
		t.Fatalf("level = %q, minor issues keep AA", s.ComplianceLevel)
	}
	if s.MinorIssues != 1 || s.AODAStatus != StatusNonCompliant {
		t.Fatalf("summary = %+v", s)
	}
}

func TestSummarize_Counts(t *testing.T) {
	vs := []report.RawViolation{
		{ID: "a", Impact: report.ImpactCritical},
		{ID: "b", Impact: report.ImpactCritical},
		{ID: "c", Impact: report.ImpactSerious},
		{ID: "d", Impact: report.ImpactModerate},
		{ID: "e", Impact: report.ImpactMinor},
		{ID: "f", Impact: ""},
	}
	s := Summarize(vs, goodPage)
	got := [5]int{s.TotalViolations, s.CriticalIssues, s.SeriousIssues, s.ModerateIssues, s.MinorIssues}
	if got != [5]int{6, 2, 1, 1, 2} {
		t.Fatalf("counts = %v", got)
	}
	if s.ComplianceLevel != LevelPartial {
		t.Fatalf("level = %q", s.ComplianceLevel)
	}
}

func TestSummarize_Recommendations(t *testing.T) {
	tests := []struct {
		name string
		vs   []report.RawViolation
		page report.PageInfo
		want []string
	}{
		{"image-alt only", []report.RawViolation{{ID: "image-alt"}}, goodPage, []string{RecAltText}},
		{"missing h1 only", nil, report.PageInfo{Lang: "en"}, []string{RecHeading}},
		{"image-alt and missing h1", []report.RawViolation{{ID: "image-alt"}}, report.PageInfo{Lang: "fr"}, []string{RecHeading, RecAltText}},
		{"everything", []report.RawViolation{{ID: "label"}, {ID: "color-contrast"}, {ID: "image-alt"}},
			report.PageInfo{Lang: report.NotSpecified}, []string{RecHeading, RecLanguage, RecContrast, RecAltText, RecLabels}},
		{"unrelated rule", []report.RawViolation{{ID: "label-title-only"}}, goodPage, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.vs, tt.page).Recommendations
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("recommendations (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVisionRecommendations(t *testing.T) {
	cats := VisionRecommendations()
	if len(cats) != 4 {
		t.Fatalf("categories = %d", len(cats))
	}
	for _, c := range cats {
		if len(c.Recommendations) != 4 {
			t.Errorf("%s has %d recommendations", c.Category, len(c.Recommendations))
		}
	}
	if got := cats[0].Recommendations[0]; got != "Use sufficient color contrast ratios (4.5:1 for normal text, 3:1 for large text)" {
		t.Errorf("first recommendation = %q", got)
	}
	cats[0].Recommendations[0] = "mutated"
	if VisionRecommendations()[0].Recommendations[0] == "mutated" {
		t.Fatal("shared slice exposed")
	}
}

func TestVisionRecommendations_WireShape(t *testing.T) {
	data, err := json.Marshal(VisionRecommendations()[0])
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["recommendations"]; !ok {
		t.Fatalf("recommendations key missing: %s", data)
	}
	if _, ok := got["items"]; ok {
		t.Fatalf("unexpected items key: %s", data)
	}
}
