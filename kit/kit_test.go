package kit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChain_Order(t *testing.T) {
	var calls []string
	trace := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				calls = append(calls, "enter "+name)
				defer func() { calls = append(calls, "leave "+name) }()
				return next(ctx, req)
			}
		}
	}

	ep := Chain(trace("logging"), trace("timeout"))(func(context.Context, any) (any, error) {
		calls = append(calls, "analyze")
		return "report", nil
	})
	if resp, err := ep(context.Background(), nil); err != nil || resp != "report" {
		t.Fatalf("ep = %v, %v", resp, err)
	}

	want := []string{"enter logging", "enter timeout", "analyze", "leave timeout", "leave logging"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("call order (-want +got):\n%s", diff)
	}
}

func TestChain_Empty(t *testing.T) {
	errNav := errors.New("navigation timeout")
	ep := Chain()(func(context.Context, any) (any, error) { return nil, errNav })
	if _, err := ep(context.Background(), nil); !errors.Is(err, errNav) {
		t.Fatalf("err = %v", err)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ep := Logging(logger, "analyze")(func(context.Context, any) (any, error) { return nil, errors.New("nav failed") })

	ctx := WithTraceID(WithTransport(context.Background(), "mcp"), "trc_1")
	if _, err := ep(ctx, nil); err == nil {
		t.Fatal("error swallowed")
	}
	out := buf.String()
	for _, want := range []string{`"op":"analyze"`, `"transport":"mcp"`, `"trace_id":"trc_1"`, `"error":"nav failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s: %s", want, out)
		}
	}
}

func TestContext_Transport_Default(t *testing.T) {
	if v := GetTransport(context.Background()); v != "http" {
		t.Fatalf("default transport: got %q, want 'http'", v)
	}
}

func TestContext_Transport_Set(t *testing.T) {
	ctx := WithTransport(context.Background(), "mcp")
	if v := GetTransport(ctx); v != "mcp" {
		t.Fatalf("transport: got %q", v)
	}
}

func TestContext_TraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trc_xyz")
	if v := GetTraceID(ctx); v != "trc_xyz" {
		t.Fatalf("trace_id: got %q", v)
	}
}

func TestContext_RemoteAddr(t *testing.T) {
	ctx := WithRemoteAddr(context.Background(), "10.0.0.1")
	if v := GetRemoteAddr(ctx); v != "10.0.0.1" {
		t.Fatalf("remote_addr: got %q", v)
	}
	if v := GetRemoteAddr(context.Background()); v != "" {
		t.Fatalf("remote_addr default: got %q", v)
	}
}

func TestDecodeJSON(t *testing.T) {
	type args struct {
		URL string `json:"url"`
	}
	dec := DecodeJSON[args]()

	v, err := dec(json.RawMessage(`{"url":"https://example.com"}`))
	if err != nil || v.(args).URL != "https://example.com" {
		t.Fatalf("decode = %v, %v", v, err)
	}
	if v, err := dec(nil); err != nil || v.(args).URL != "" {
		t.Fatalf("empty = %v, %v", v, err)
	}
	if _, err := dec(json.RawMessage(`{"url":`)); err == nil {
		t.Fatal("expected error")
	}
}
