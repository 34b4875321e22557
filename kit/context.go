package kit

import "context"

type contextKey string

// Context keys shared by the HTTP middleware and the MCP adapter.
const (
	TransportKey  contextKey = "kit_transport" // "http" or "mcp"
	TraceIDKey    contextKey = "kit_trace_id"
	RemoteAddrKey contextKey = "kit_remote_addr"
)

func str(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// WithTransport records which surface a call arrived on.
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}

// GetTransport returns the calling surface, "http" when unset.
func GetTransport(ctx context.Context) string {
	if t := str(ctx, TransportKey); t != "" {
		return t
	}
	return "http"
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

func GetTraceID(ctx context.Context) string { return str(ctx, TraceIDKey) }

func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, RemoteAddrKey, addr)
}

func GetRemoteAddr(ctx context.Context) string { return str(ctx, RemoteAddrKey) }
