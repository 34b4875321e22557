package browser_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/aodacheck/a11y/internal/browser"
	"github.com/hazyhaar/aodacheck/a11y/internal/browser/browsertest"
	"github.com/hazyhaar/aodacheck/report"
)

func TestSession_ReleasesOnSuccess(t *testing.T) {
	l := &browsertest.Launcher{}
	s := browser.NewSession(l, nil)

	got, err := browser.RunWith(context.Background(), s, func(ctx context.Context, p browser.Page) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("RunWith = %d, %v", got, err)
	}
	if l.Launches != 1 || l.Closes != 1 {
		t.Fatalf("unbalanced: %s", l)
	}
	if l.Pages[0].Closed != 1 {
		t.Fatalf("page closed %d times", l.Pages[0].Closed)
	}
}

func TestSession_ReleasesOnWorkError(t *testing.T) {
	l := &browsertest.Launcher{}
	s := browser.NewSession(l, nil)
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(ctx context.Context, p browser.Page) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if errors.Is(err, browser.ErrLaunch) {
		t.Fatal("work error must not be tagged as a launch failure")
	}
	if !l.Balanced() {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestSession_ReleasesOnPanic(t *testing.T) {
	l := &browsertest.Launcher{}
	s := browser.NewSession(l, nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic was swallowed")
			}
		}()
		_ = s.Run(context.Background(), func(ctx context.Context, p browser.Page) error { panic("x") })
	}()
	if l.Closes != 1 {
		t.Fatalf("unbalanced after panic: %s", l)
	}
}

func TestSession_LaunchFailure(t *testing.T) {
	l := &browsertest.Launcher{LaunchErr: errors.New("no chrome")}
	s := browser.NewSession(l, nil)
	called := false

	err := s.Run(context.Background(), func(ctx context.Context, p browser.Page) error {
		called = true
		return nil
	})
	if !errors.Is(err, browser.ErrLaunch) {
		t.Fatalf("err = %v, want ErrLaunch", err)
	}
	if called {
		t.Fatal("work ran without a browser")
	}
	if l.Closes != 0 {
		t.Fatalf("closed a browser that never launched: %s", l)
	}
}

func TestSession_PageFailureClosesBrowser(t *testing.T) {
	l := &browsertest.Launcher{PageErr: errors.New("target crashed")}
	s := browser.NewSession(l, nil)

	err := s.Run(context.Background(), func(ctx context.Context, p browser.Page) error { return nil })
	if !errors.Is(err, browser.ErrLaunch) {
		t.Fatalf("err = %v, want ErrLaunch", err)
	}
	if l.Launches != 1 || l.Closes != 1 {
		t.Fatalf("unbalanced: %s", l)
	}
}

func TestLoad_ExtractsPageInfo(t *testing.T) {
	p := &browsertest.Page{
		EvalFunc: func(js string, args []any) (string, error) {
			return `{"title":"Home","lang":"","url":"https://example.com/","hasH1":true,"imageCount":3,"linkCount":7,"formCount":1}`, nil
		},
	}
	info, err := browser.Load(context.Background(), p, "https://example.com", browser.NavigateOptions{
		Width: 1920, Height: 1080, UserAgent: "ua-test",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := report.PageInfo{Title: "Home", Lang: report.NotSpecified, URL: "https://example.com/", HasH1: true, ImageCount: 3, LinkCount: 7, FormCount: 1}
	if info != want {
		t.Fatalf("info = %+v, want %+v", info, want)
	}
	if got := strings.Join(p.Calls, ","); got != "viewport,useragent,navigate,eval" {
		t.Fatalf("call order = %s", got)
	}
	if p.Viewports[0] != [2]int{1920, 1080} || p.UserAgent != "ua-test" {
		t.Fatalf("viewport/ua not applied: %v %q", p.Viewports, p.UserAgent)
	}
}

func TestLoad_NavigationFailure(t *testing.T) {
	p := &browsertest.Page{
		NavigateFunc: func(ctx context.Context, url string) error {
			return errors.New("net::ERR_NAME_NOT_RESOLVED")
		},
	}
	_, err := browser.Load(context.Background(), p, "https://nope.invalid", browser.NavigateOptions{})
	if !errors.Is(err, browser.ErrNavigate) {
		t.Fatalf("err = %v, want ErrNavigate", err)
	}
	for _, c := range p.Calls {
		if c == "eval" {
			t.Fatal("page info extracted after failed navigation")
		}
	}
}

func TestLoad_Timeout(t *testing.T) {
	p := &browsertest.Page{
		NavigateFunc: func(ctx context.Context, url string) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	start := time.Now()
	_, err := browser.Load(context.Background(), p, "https://slow.example", browser.NavigateOptions{Timeout: 20 * time.Millisecond})
	if !errors.Is(err, browser.ErrNavigate) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want ErrNavigate wrapping DeadlineExceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout not enforced")
	}
}

func TestLoad_Settle(t *testing.T) {
	var slept time.Duration
	p := &browsertest.Page{EvalFunc: func(string, []any) (string, error) { return `{"lang":"fr"}`, nil }}
	info, err := browser.Load(context.Background(), p, "https://example.com", browser.NavigateOptions{
		Settle: 2 * time.Second,
		Sleep:  func(_ context.Context, d time.Duration) error { slept = d; return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	if slept != 2*time.Second {
		t.Fatalf("settle = %s", slept)
	}
	if info.Lang != "fr" {
		t.Fatalf("lang = %q", info.Lang)
	}
}

func TestContent(t *testing.T) {
	p := &browsertest.Page{EvalFunc: func(string, []any) (string, error) { return "<main><h1>Hi</h1></main>", nil }}
	html, err := browser.Content(context.Background(), p)
	if err != nil || html != "<main><h1>Hi</h1></main>" {
		t.Fatalf("Content = %q, %v", html, err)
	}
	js := p.Evals[0].JS
	for _, sel := range []string{"'main'", "'[role=main]'", "document.body"} {
		if !strings.Contains(js, sel) {
			t.Errorf("content script does not select %s", sel)
		}
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := browser.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep = %v", err)
	}
}

func TestBlocklist(t *testing.T) {
	names := []string{"images", "Fonts", "media"}
	for _, typ := range []proto.NetworkResourceType{
		proto.NetworkResourceTypeImage, proto.NetworkResourceTypeFont, proto.NetworkResourceTypeMedia,
	} {
		if !browser.Blocks(names, typ) {
			t.Errorf("%s not blocked", typ)
		}
	}
	for _, typ := range []proto.NetworkResourceType{
		proto.NetworkResourceTypeScript, proto.NetworkResourceTypeStylesheet, proto.NetworkResourceTypeDocument,
	} {
		if browser.Blocks(names, typ) {
			t.Errorf("%s blocked", typ)
		}
	}
}
