package a11y

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/aodacheck/kit"
)

// RegisterMCP registers the aodacheck tools on an MCP server.
func (a *Analyzer) RegisterMCP(srv *mcp.Server) {
	a.registerAnalyzeTool(srv)
	a.registerSimulateTool(srv)
	a.registerVisionTypesTool(srv)
	a.registerNarrateTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var urlProperty = map[string]any{"type": "string", "description": "Absolute http(s) URL of the page"}

func (a *Analyzer) tool(srv *mcp.Server, tool *mcp.Tool, ep kit.Endpoint, decode func(json.RawMessage) (any, error)) {
	kit.RegisterMCPTool(srv, tool, kit.Logging(a.logger, tool.Name)(ep), decode)
}

// --- analyze ---

type urlReq struct {
	URL string `json:"url"`
}

func (a *Analyzer) registerAnalyzeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "aodacheck_analyze",
		Description: "Run a WCAG 2.0 AA accessibility analysis of a web page and return the AODA compliance report with explained violations and vision screenshots.",
		InputSchema: inputSchema(map[string]any{"url": urlProperty}, []string{"url"}),
	}
	ep := func(ctx context.Context, req any) (any, error) {
		return a.Analyze(ctx, req.(urlReq).URL)
	}
	a.tool(srv, tool, ep, kit.DecodeJSON[urlReq]())
}

// --- simulate ---

type simulateReq struct {
	URL         string   `json:"url"`
	VisionTypes []string `json:"visionTypes"`
}

func (a *Analyzer) registerSimulateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "aodacheck_simulate_vision",
		Description: "Capture screenshots of a web page as seen with vision impairments. Omit visionTypes to render every profile.",
		InputSchema: inputSchema(map[string]any{
			"url": urlProperty,
			"visionTypes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Profile ids from aodacheck_vision_types",
			},
		}, []string{"url"}),
	}
	ep := func(ctx context.Context, req any) (any, error) {
		r := req.(simulateReq)
		return a.Simulate(ctx, r.URL, r.VisionTypes)
	}
	a.tool(srv, tool, ep, kit.DecodeJSON[simulateReq]())
}

// --- vision types ---

func (a *Analyzer) registerVisionTypesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "aodacheck_vision_types",
		Description: "List the available vision impairment profiles.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	ep := func(_ context.Context, _ any) (any, error) {
		return a.VisionTypes(), nil
	}
	a.tool(srv, tool, ep, func(json.RawMessage) (any, error) { return nil, nil })
}

// --- narrate ---

func (a *Analyzer) registerNarrateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "aodacheck_narrate",
		Description: "Describe how a screen reader would announce the main content of a web page.",
		InputSchema: inputSchema(map[string]any{"url": urlProperty}, []string{"url"}),
	}
	ep := func(ctx context.Context, req any) (any, error) {
		return a.Narrate(ctx, req.(urlReq).URL)
	}
	a.tool(srv, tool, ep, kit.DecodeJSON[urlReq]())
}

// NewMCPServer creates an MCP server exposing the analyzer's tools.
func NewMCPServer(a *Analyzer, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "aodacheck", Version: version}, nil)
	a.RegisterMCP(srv)
	return srv
}
