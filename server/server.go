// Package server is the HTTP boundary of aodacheck: JSON endpoints over the
// analyzer, plus the MCP streamable endpoint when one is mounted.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/aodacheck/a11y"
	"github.com/hazyhaar/aodacheck/report"
	"github.com/hazyhaar/aodacheck/shield"
)

// ServiceName is reported by /health.
const ServiceName = "AODA Accessibility Checker"

// Service is the analysis core the handlers call.
type Service interface {
	Analyze(ctx context.Context, url string) (report.Report, error)
	Simulate(ctx context.Context, url string, types []string) (report.SimulationReport, error)
	Narrate(ctx context.Context, url string) (report.Narration, error)
	VisionTypes() []report.VisionType
}

var _ Service = (*a11y.Analyzer)(nil)

// Config configures the router.
type Config struct {
	// Production hides internal error detail from 500 responses.
	Production bool
	Version    string
	// Middleware runs inside Recoverer, outermost first.
	Middleware []func(http.Handler) http.Handler
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Now    func() time.Time
	Logger *slog.Logger
}

type handlers struct {
	svc Service
	cfg Config
}

// New builds the router.
func New(svc Service, cfg Config) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	h := &handlers{svc: svc, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	r.Get("/", h.index)
	r.Get("/health", h.health)
	r.Get("/vision-types", h.visionTypes)
	r.Post("/analyze", h.analyze)
	r.Post("/simulate-vision", h.simulate)
	r.Post("/narrate", h.narrate)
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
	}
	return r
}

func (h *handlers) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "AODA Accessibility Checker API",
		"description": "Web-based accessibility checker for Canadian businesses",
		"endpoints": map[string]string{
			"POST /analyze":         "Analyze a website for AODA/WCAG compliance",
			"POST /simulate-vision": "Render a website through vision impairment simulations",
			"GET /vision-types":     "List available vision impairment simulations",
			"POST /narrate":         "Screen reader narration of a website's main content",
			"GET /health":           "Health check",
		},
		"compliance": "WCAG 2.0 AA / AODA (Accessibility for Ontarians with Disabilities Act)",
	})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   ServiceName,
		"version":   h.cfg.Version,
		"timestamp": report.Timestamp(h.cfg.Now()),
	})
}

func (h *handlers) visionTypes(w http.ResponseWriter, _ *http.Request) {
	types := h.svc.VisionTypes()
	writeJSON(w, http.StatusOK, map[string]any{"visionTypes": types, "total": len(types)})
}

type urlRequest struct {
	URL         string   `json:"url"`
	VisionTypes []string `json:"visionTypes,omitempty"`
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.Analyze(r.Context(), req.URL)
	if err != nil {
		h.fail(w, r, "Failed to analyze the website", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) simulate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	sr, err := h.svc.Simulate(r.Context(), req.URL, req.VisionTypes)
	if err != nil {
		h.fail(w, r, "Failed to generate vision simulations", err)
		return
	}
	writeJSON(w, http.StatusOK, sr)
}

func (h *handlers) narrate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Narrate(r.Context(), req.URL)
	if err != nil {
		h.fail(w, r, "Failed to generate narration", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// decode reads the JSON body. An empty body decodes to an empty request so
// the missing URL is reported by validation.
func decode(w http.ResponseWriter, r *http.Request) (urlRequest, bool) {
	var req urlRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return req, true
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request body too large"})
			return req, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return req, false
	}
}

// fail maps abort errors onto the response. Validation failures are 400
// with their message; the rest are 500 with detail outside production.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var ive *a11y.InputValidationError
	if errors.As(err, &ive) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ive.Reason})
		return
	}
	logger := h.cfg.Logger
	if l, ok := r.Context().Value(shield.LoggerKey).(*slog.Logger); ok {
		logger = l
	}
	logger.ErrorContext(r.Context(), "server: request failed", "error", err)
	details := "Internal server error"
	if !h.cfg.Production {
		details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg, "details": details})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
