package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser/browsertest"
	"github.com/hazyhaar/aodacheck/report"
)

func noSleep(context.Context, time.Duration) error { return nil }

func fixedNow() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestCatalog(t *testing.T) {
	want := []string{"normal", "protanopia", "deuteranopia", "tritanopia", "achromatopsia",
		"lowVision", "cataracts", "diabeticRetinopathy", "glaucoma", "maculaDegeneration"}
	if diff := cmp.Diff(want, IDs()); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	types := Types()
	if types[8].Name != "Glaucoma" || types[8].Explanation == "" {
		t.Fatalf("glaucoma entry = %+v", types[8])
	}
}

func TestCatalog_IsCopy(t *testing.T) {
	c := Catalog()
	c[0].Name = "mutated"
	if p, _ := Lookup("normal"); p.Name != "Normal Vision" {
		t.Fatal("Catalog exposed the shared slice")
	}
}

func TestLookup_ReportViews(t *testing.T) {
	for _, id := range ReportViews {
		if _, ok := Lookup(id); !ok {
			t.Errorf("missing report view %q", id)
		}
	}
	if _, ok := Lookup("xray"); ok {
		t.Error("unexpected profile")
	}
}

func TestProfileCSS(t *testing.T) {
	n, _ := Lookup("normal")
	if n.CSS() != "" {
		t.Errorf("normal css = %q", n.CSS())
	}
	g, _ := Lookup("glaucoma")
	if css := g.CSS(); strings.Contains(css, "filter") || !strings.Contains(css, "body::before") {
		t.Errorf("glaucoma css = %q", css)
	}
	a, _ := Lookup("achromatopsia")
	if css := a.CSS(); !strings.Contains(css, "html { filter: grayscale(100%) !important; }") {
		t.Errorf("achromatopsia css = %q", css)
	}
	cb, _ := Lookup(ColorBlind)
	if !strings.Contains(cb.CSS(), "feColorMatrix") {
		t.Errorf("colorBlind css = %q", cb.CSS())
	}
}

func TestCapture_AllSucceed(t *testing.T) {
	p := &browsertest.Page{}
	res := Capture(context.Background(), p, []string{"normal", "glaucoma"}, CaptureOptions{Sleep: noSleep, Now: fixedNow})
	if len(res) != 2 {
		t.Fatalf("len = %d", len(res))
	}
	for _, r := range res {
		if !r.Captured() || r.Error != "" {
			t.Fatalf("result = %+v", r)
		}
		if r.Screenshot != base64.StdEncoding.EncodeToString(browsertest.PNG) {
			t.Fatalf("screenshot not base64 PNG: %q", r.Screenshot)
		}
		if r.Timestamp != "2026-05-01T12:00:00.000Z" {
			t.Fatalf("timestamp = %q", r.Timestamp)
		}
	}
	if res[1].Name != "Glaucoma" {
		t.Fatalf("name = %q", res[1].Name)
	}
}

func TestCapture_ResetBeforeEachInject(t *testing.T) {
	p := &browsertest.Page{}
	Capture(context.Background(), p, []string{"protanopia", "tritanopia"}, CaptureOptions{Sleep: noSleep})

	var seq []string
	for _, e := range p.Evals {
		switch e.JS {
		case resetJS:
			seq = append(seq, "reset")
		case injectJS:
			seq = append(seq, "inject:"+e.Args[1].(string))
		}
	}
	want := []string{
		"reset", "inject:html { filter: sepia(100%) hue-rotate(180deg) saturate(0.8) !important; }\n",
		"reset", "inject:html { filter: sepia(100%) hue-rotate(270deg) saturate(0.7) !important; }\n",
		"reset",
	}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Fatalf("eval sequence (-want +got):\n%s", diff)
	}
}

func TestCapture_PartialFailure(t *testing.T) {
	ids := IDs()
	failing := map[int]bool{1: true, 4: true, 7: true}
	p := &browsertest.Page{
		ScreenshotFunc: func(n int, _ bool) ([]byte, error) {
			if failing[n] {
				return nil, errors.New("screenshot timeout")
			}
			return browsertest.PNG, nil
		},
	}
	res := Capture(context.Background(), p, ids, CaptureOptions{Sleep: noSleep})
	if len(res) != len(ids) {
		t.Fatalf("len = %d, want %d", len(res), len(ids))
	}
	sum := report.Summarize(res)
	if sum.SuccessfulSimulations != len(ids)-3 || sum.FailedSimulations != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	for i, r := range res {
		if r.Type != ids[i] {
			t.Fatalf("order broken at %d: %q", i, r.Type)
		}
		if failing[i] {
			if r.Captured() || r.Screenshot != "" || !strings.HasPrefix(r.Error, "Failed to capture screenshot: ") {
				t.Fatalf("entry %d = %+v", i, r)
			}
		}
	}
}

func TestCapture_UnknownAndInjectFailure(t *testing.T) {
	p := &browsertest.Page{
		EvalFunc: func(js string, args []any) (string, error) {
			if js == injectJS && strings.Contains(args[1].(string), "grayscale") {
				return "", errors.New("style blocked")
			}
			return "ok", nil
		},
	}
	res := Capture(context.Background(), p, []string{"xray", "achromatopsia", "normal"}, CaptureOptions{Sleep: noSleep})
	if len(res) != 3 {
		t.Fatalf("len = %d", len(res))
	}
	if res[0].Captured() || !strings.Contains(res[0].Error, "unknown vision type") {
		t.Fatalf("unknown entry = %+v", res[0])
	}
	if res[1].Captured() || !strings.Contains(res[1].Error, "style blocked") {
		t.Fatalf("inject failure entry = %+v", res[1])
	}
	if !res[2].Captured() {
		t.Fatalf("batch stopped early: %+v", res[2])
	}
	if p.Screenshots != 1 {
		t.Fatalf("screenshots = %d, want 1", p.Screenshots)
	}
}

func TestCaptureReportViews(t *testing.T) {
	var fullPage []bool
	p := &browsertest.Page{
		ScreenshotFunc: func(n int, fp bool) ([]byte, error) {
			fullPage = append(fullPage, fp)
			if n == 1 {
				return nil, errors.New("gpu lost")
			}
			return browsertest.PNG, nil
		},
	}
	s := CaptureReportViews(context.Background(), p, CaptureOptions{Sleep: noSleep})
	if s.Original == "" || s.BlurryVision == "" {
		t.Fatalf("missing views: %+v", s)
	}
	if s.ColorBlind != "" || !strings.Contains(s.Errors[ColorBlind], "gpu lost") {
		t.Fatalf("colorBlind = %q errors = %v", s.ColorBlind, s.Errors)
	}
	if diff := cmp.Diff([]bool{true, true, true}, fullPage); diff != "" {
		t.Fatalf("fullPage (-want +got):\n%s", diff)
	}
}
