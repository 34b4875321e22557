package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/aodacheck/idgen"
	"github.com/hazyhaar/aodacheck/kit"
)

var defaultTraceID = idgen.Prefixed("trc_", idgen.Default)

// NewTraceID mints request trace ids.
var NewTraceID = defaultTraceID

// TraceID generates a trace ID for each request and injects it into the
// context, the X-Trace-ID response header, and a per-request structured
// logger stored under LoggerKey.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := NewTraceID()

		ctx := kit.WithTraceID(r.Context(), traceID)
		ctx = kit.WithRemoteAddr(ctx, ExtractIP(r))
		w.Header().Set("X-Trace-ID", traceID)

		logger := slog.Default().With(
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", kit.GetRemoteAddr(ctx),
		)
		ctx = context.WithValue(ctx, LoggerKey, logger)
		logger.InfoContext(ctx, "request")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLogger retrieves the per-request logger from the context.
// Returns slog.Default() if no logger was set.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
