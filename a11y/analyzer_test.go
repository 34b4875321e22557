package a11y

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser/browsertest"
	"github.com/hazyhaar/aodacheck/explain"
	"github.com/hazyhaar/aodacheck/idgen"
	"github.com/hazyhaar/aodacheck/report"
)

const pageInfoJSON = `{"title":"Shop","lang":"en","url":"https://shop.example/","hasH1":true,"imageCount":4,"linkCount":12,"formCount":1}`

func noSleep(context.Context, time.Duration) error { return nil }

// axePayload builds a rule engine answer with n violations, the first
// critical of them marked critical.
func axePayload(t *testing.T, n, critical int) string {
	t.Helper()
	vs := make([]map[string]any, 0, n)
	for i := range n {
		impact := "moderate"
		if i < critical {
			impact = "critical"
		}
		vs = append(vs, map[string]any{
			"id":          fmt.Sprintf("rule-%d", i),
			"impact":      impact,
			"description": fmt.Sprintf("Rule %d", i),
			"help":        "help",
			"helpUrl":     "https://dequeuniversity.com/rules/axe/4.8/rule",
			"tags":        []string{"wcag2aa"},
			"nodes":       []map[string]any{{"html": "<div>x</div>", "target": []string{"div"}}},
		})
	}
	b, err := json.Marshal(map[string]any{"violations": vs, "passes": []any{}, "incomplete": []any{}})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// scriptedPage answers page info, the rule engine and style resets.
func scriptedPage(axe string, axeErr error) func() *browsertest.Page {
	return func() *browsertest.Page {
		return &browsertest.Page{EvalFunc: func(js string, _ []any) (string, error) {
			switch {
			case strings.Contains(js, "hasH1"):
				return pageInfoJSON, nil
			case strings.Contains(js, "axe.run"):
				return axe, axeErr
			case strings.Contains(js, "outerHTML"):
				return "<main><h1>Shop</h1><p>Welcome</p></main>", nil
			}
			return "ok", nil
		}}
	}
}

func newTestAnalyzer(t *testing.T, l *browsertest.Launcher, e explain.Explainer) *Analyzer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rules.ScriptURL = "https://cdn.example/axe.min.js"
	a, err := New(Options{
		Config:    cfg,
		Launcher:  l,
		Explainer: e,
		IDGen:     idgen.Fixed("rpt_test"),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		Sleep:     noSleep,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestNew_RequiresLauncher(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnalyze_InvalidURL_NoLaunch(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url", "ftp://example.com", "http://", "/relative/path", "example.com", "https://%zz"} {
		l := &browsertest.Launcher{}
		a := newTestAnalyzer(t, l, nil)
		_, err := a.Analyze(context.Background(), raw)
		if !IsInputValidation(err) {
			t.Errorf("Analyze(%q) err = %v, want InputValidationError", raw, err)
		}
		if l.Launches != 0 {
			t.Errorf("Analyze(%q) launched a browser", raw)
		}
	}
}

func TestBlockPrivate_RejectsBeforeLaunch(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage("", nil)}
	cfg := DefaultConfig()
	cfg.Browser.BlockPrivate = true
	a, err := New(Options{
		Config:   cfg,
		Launcher: l,
		Sleep:    noSleep,
		LookupHost: func(_ context.Context, host string) ([]netip.Addr, error) {
			if host == "intranet.example" {
				return []netip.Addr{netip.MustParseAddr("10.0.0.8")}, nil
			}
			return []netip.Addr{netip.MustParseAddr("93.184.216.34")}, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, raw := range []string{"http://127.0.0.1:3001/", "https://intranet.example/admin"} {
		_, err := a.Simulate(context.Background(), raw, []string{"normal"})
		var ive *InputValidationError
		if !errors.As(err, &ive) || !strings.Contains(ive.Reason, "private") {
			t.Errorf("Simulate(%q) err = %v", raw, err)
		}
	}
	if l.Launches != 0 {
		t.Fatalf("launches = %d, want 0", l.Launches)
	}

	if _, err := a.Simulate(context.Background(), "https://shop.example", []string{"normal"}); err != nil {
		t.Fatalf("public target: %v", err)
	}
}

func TestAnalyze_LaunchFailure(t *testing.T) {
	l := &browsertest.Launcher{LaunchErr: errors.New("chrome not found")}
	_, err := newTestAnalyzer(t, l, nil).Analyze(context.Background(), "https://shop.example")
	if !IsResourceAcquisition(err) {
		t.Fatalf("err = %v, want ResourceAcquisitionError", err)
	}
}

func TestAnalyze_NavigationFailure_ReleasesBrowser(t *testing.T) {
	l := &browsertest.Launcher{NewPage: func() *browsertest.Page {
		return &browsertest.Page{NavigateFunc: func(context.Context, string) error {
			return errors.New("net::ERR_NAME_NOT_RESOLVED")
		}}
	}}
	_, err := newTestAnalyzer(t, l, nil).Analyze(context.Background(), "https://nowhere.invalid")
	if !IsNavigation(err) {
		t.Fatalf("err = %v, want NavigationError", err)
	}
	if !l.Balanced() || l.Launches != 1 {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestAnalyze_RuleFailure_DegradesAndReleases(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage("", errors.New("axe is not defined"))}
	rep, err := newTestAnalyzer(t, l, nil).Analyze(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Summary.TotalViolations != 0 || len(rep.Warnings) == 0 {
		t.Fatalf("summary = %+v warnings = %v", rep.Summary, rep.Warnings)
	}
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestAnalyze_CaptureFailure_DegradesAndReleases(t *testing.T) {
	l := &browsertest.Launcher{NewPage: func() *browsertest.Page {
		p := scriptedPage(axePayload(t, 1, 0), nil)()
		p.ScreenshotFunc = func(n int, _ bool) ([]byte, error) {
			if n == 1 {
				return nil, errors.New("target closed")
			}
			return browsertest.PNG, nil
		}
		return p
	}}
	rep, err := newTestAnalyzer(t, l, nil).Analyze(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Screenshots.Original == "" || rep.Screenshots.BlurryVision == "" {
		t.Errorf("healthy views missing: %+v", rep.Screenshots)
	}
	if rep.Screenshots.ColorBlind != "" || rep.Screenshots.Errors["colorBlind"] == "" {
		t.Errorf("failed view not recorded: %+v", rep.Screenshots.Errors)
	}
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestAnalyze_WorkPanic_ReleasesBrowser(t *testing.T) {
	l := &browsertest.Launcher{NewPage: func() *browsertest.Page {
		return &browsertest.Page{NavigateFunc: func(context.Context, string) error { panic("boom") }}
	}}
	a := newTestAnalyzer(t, l, nil)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic swallowed")
			}
		}()
		_, _ = a.Analyze(context.Background(), "https://shop.example")
	}()
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestAnalyze_FifteenViolations(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage(axePayload(t, 15, 3), nil)}
	var calls int
	e := explain.ExplainerFunc(func(_ context.Context, req explain.Request) (report.Explanation, error) {
		calls++
		return report.Explanation{
			Explanation:           "Plain words about " + req.RuleID,
			FixSample:             "<div role=\"main\">",
			ScreenReaderNarration: "group",
			Priority:              report.PriorityMedium,
		}, nil
	})

	rep, err := newTestAnalyzer(t, l, e).Analyze(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Summary.TotalViolations != 15 || rep.Summary.CriticalIssues != 3 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if len(rep.Violations) != 10 || calls != 10 {
		t.Errorf("enriched = %d calls = %d, want 10", len(rep.Violations), calls)
	}
	if rep.BusinessGuidance.Priority != report.PriorityImmediate {
		t.Errorf("priority = %q", rep.BusinessGuidance.Priority)
	}
	if rep.AODACompliance.IsCompliant {
		t.Error("compliant with violations")
	}
	if rep.ID != "rpt_test" || rep.Timestamp != "2026-03-01T12:00:00.000Z" {
		t.Errorf("id = %q ts = %q", rep.ID, rep.Timestamp)
	}
	if rep.Violations[0].ID != "rule-0" || rep.Violations[0].Explanation.Explanation != "Plain words about rule-0" {
		t.Errorf("first = %+v", rep.Violations[0])
	}
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestAnalyze_NoViolations(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage(axePayload(t, 0, 0), nil)}
	rep, err := newTestAnalyzer(t, l, nil).Analyze(context.Background(), "  https://shop.example  ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Summary.TotalViolations != 0 || !rep.AODACompliance.IsCompliant {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if rep.Violations == nil || len(rep.Violations) != 0 {
		t.Errorf("violations = %#v", rep.Violations)
	}
	if rep.URL != "https://shop.example" {
		t.Errorf("url = %q", rep.URL)
	}
	if rep.PageInfo.Title != "Shop" {
		t.Errorf("page info = %+v", rep.PageInfo)
	}
	b, err := json.Marshal(rep)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"violations":[]`) {
		t.Errorf("violations not an empty array: %s", b)
	}
}

func TestAnalyze_OfflineExplanationsWarn(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage(axePayload(t, 2, 0), nil)}
	rep, err := newTestAnalyzer(t, l, nil).Analyze(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range rep.Violations {
		if !v.Fallback || v.Priority != report.PriorityHigh {
			t.Errorf("violation %s not a fallback: %+v", v.ID, v.Explanation)
		}
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "2 of 2") {
		t.Errorf("warnings = %v", rep.Warnings)
	}
}

func TestSimulate_AllProfiles(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage("", nil)}
	sr, err := newTestAnalyzer(t, l, nil).Simulate(context.Background(), "https://shop.example", nil)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if sr.TotalSimulations != 10 || len(sr.Simulations) != 10 {
		t.Fatalf("total = %d", sr.TotalSimulations)
	}
	if sr.Summary.SuccessfulSimulations != 10 || len(sr.Recommendations) != 4 {
		t.Errorf("summary = %+v recs = %d", sr.Summary, len(sr.Recommendations))
	}
	p := l.Pages[0]
	if len(p.Viewports) != 1 || p.Viewports[0] != [2]int{1024, 768} {
		t.Errorf("viewport = %v", p.Viewports)
	}
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestSimulate_PartialFailure(t *testing.T) {
	l := &browsertest.Launcher{NewPage: func() *browsertest.Page {
		p := scriptedPage("", nil)()
		p.ScreenshotFunc = func(n int, _ bool) ([]byte, error) {
			if n%2 == 0 {
				return nil, errors.New("capture failed")
			}
			return browsertest.PNG, nil
		}
		return p
	}}
	types := []string{"normal", "protanopia", "glaucoma", "doesNotExist"}
	sr, err := newTestAnalyzer(t, l, nil).Simulate(context.Background(), "https://shop.example", types)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(sr.Simulations) != len(types) {
		t.Fatalf("results = %d, want %d", len(sr.Simulations), len(types))
	}
	for i, s := range sr.Simulations {
		if s.Type != types[i] {
			t.Errorf("order[%d] = %q", i, s.Type)
		}
	}
	// screenshots 0 and 2 fail, the unknown profile never reaches capture.
	if sr.Summary.SuccessfulSimulations != 1 || sr.Summary.FailedSimulations != 3 {
		t.Errorf("summary = %+v", sr.Summary)
	}
}

func TestSimulate_InvalidURL(t *testing.T) {
	l := &browsertest.Launcher{}
	_, err := newTestAnalyzer(t, l, nil).Simulate(context.Background(), "javascript:alert(1)", nil)
	if !IsInputValidation(err) || l.Launches != 0 {
		t.Fatalf("err = %v launches = %d", err, l.Launches)
	}
}

func TestNarrate(t *testing.T) {
	l := &browsertest.Launcher{NewPage: scriptedPage("", nil)}
	n, err := newTestAnalyzer(t, l, nil).Narrate(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if n.Title != "Shop" || !n.Fallback || n.Narration != explain.FallbackNarration {
		t.Errorf("narration = %+v", n)
	}
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestVisionTypes(t *testing.T) {
	a := newTestAnalyzer(t, &browsertest.Launcher{}, nil)
	types := a.VisionTypes()
	if len(types) != 10 || types[0].ID != "normal" || types[9].ID != "maculaDegeneration" {
		t.Fatalf("types = %+v", types)
	}
}
