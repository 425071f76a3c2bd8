package graphtools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/builder"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
	"github.com/HendryAvila/knowgraph/internal/metrics"
)

// subgraphOptions are the selection parameters shared by the graph tools.
func subgraphOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("node_type",
			mcp.Description("Only include nodes of this type"),
		),
		mcp.WithString("query",
			mcp.Description("Only include nodes whose title or content contains this text"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum nodes (default and cap: the store page size)"),
		),
		mcp.WithNumber("center_id",
			mcp.Description("Build the neighborhood of this node instead of a filtered list"),
		),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("Neighborhood depth (default: %d, max: %d)", builder.DefaultDepth, builder.MaxDepth)),
		),
	}
}

func buildRequest(req mcp.CallToolRequest) builder.Request {
	return builder.Request{
		Type:     graph.NodeType(req.GetString("node_type", "")),
		Query:    req.GetString("query", ""),
		Limit:    intArg(req, "limit", 0),
		CenterID: graph.NodeID(intArg(req, "center_id", 0)),
		Depth:    intArg(req, "depth", 0),
	}
}

// ─── GetGraphTool ────────────────────────────────────────────────────────────

// GetGraphTool handles the knowledge_get_graph MCP tool.
type GetGraphTool struct {
	builder *builder.Builder
}

// NewGetGraphTool creates a GetGraphTool with the given builder.
func NewGetGraphTool(b *builder.Builder) *GetGraphTool {
	return &GetGraphTool{builder: b}
}

// Definition returns the MCP tool definition for knowledge_get_graph.
func (t *GetGraphTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Return a subgraph as JSON: the selected nodes plus every connection between them. " +
				"Select by type/query, or pass center_id to get a node's neighborhood.",
		),
	}, subgraphOptions()...)
	return mcp.NewTool("knowledge_get_graph", opts...)
}

// Handle processes the knowledge_get_graph tool call.
func (t *GetGraphTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sub, err := t.builder.Build(ctx, buildRequest(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get graph: %v", err)), nil
	}
	return jsonResult(sub)
}

// ─── LayoutTool ──────────────────────────────────────────────────────────────

// LayoutTool handles the knowledge_layout MCP tool.
type LayoutTool struct {
	builder *builder.Builder
	cfg     layout.Config
	metrics *metrics.Collector
}

// NewLayoutTool creates a LayoutTool. cfg supplies the defaults that request
// arguments override; m may be nil.
func NewLayoutTool(b *builder.Builder, cfg layout.Config, m *metrics.Collector) *LayoutTool {
	return &LayoutTool{builder: b, cfg: cfg, metrics: m}
}

// Definition returns the MCP tool definition for knowledge_layout.
func (t *LayoutTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Compute a 2-D force-directed layout of a subgraph and return node positions as JSON. " +
				"Positions are not stored; the same input always yields the same layout.",
		),
	}, subgraphOptions()...)
	opts = append(opts,
		mcp.WithNumber("width",
			mcp.Description(fmt.Sprintf("Viewport width (default: %g)", t.cfg.Width)),
		),
		mcp.WithNumber("height",
			mcp.Description(fmt.Sprintf("Viewport height (default: %g)", t.cfg.Height)),
		),
		mcp.WithNumber("iterations",
			mcp.Description(fmt.Sprintf("Relaxation iterations (default: %d)", t.cfg.Iterations)),
		),
	)
	return mcp.NewTool("knowledge_layout", opts...)
}

// Handle processes the knowledge_layout tool call.
func (t *LayoutTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := t.cfg
	cfg.Width = floatArg(req, "width", cfg.Width)
	cfg.Height = floatArg(req, "height", cfg.Height)
	cfg.Iterations = intArg(req, "iterations", cfg.Iterations)

	sub, err := t.builder.Build(ctx, buildRequest(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build graph: %v", err)), nil
	}

	start := time.Now()
	res, err := layout.Compute(sub, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to lay out graph: %v", err)), nil
	}
	if t.metrics != nil {
		t.metrics.ObserveLayout(time.Since(start), len(res.Nodes))
	}
	return jsonResult(res)
}
