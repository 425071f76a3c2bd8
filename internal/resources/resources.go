// Package resources implements MCP resource handlers for the knowledge graph.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (knowgraph://...) following MCP conventions.
package resources

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

const (
	StatsURI     = "knowgraph://graph/stats"
	NodeTypesURI = "knowgraph://graph/node-types"
)

// StatsReader is the part of the graph store the stats resource reads.
type StatsReader interface {
	Stats(ctx context.Context) (*graph.Stats, error)
}

// Handler manages knowledge graph resource endpoints.
type Handler struct {
	store StatsReader
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store StatsReader) *Handler {
	return &Handler{store: store}
}

// StatsResource returns the MCP resource definition for graph statistics.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Knowledge Graph Statistics",
		mcp.WithResourceDescription("Node and edge totals, reference node count and nodes per type"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns the current graph statistics as JSON.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.store.Stats(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, stats)
}

// NodeTypesResource returns the MCP resource definition for the node type
// catalog.
func (h *Handler) NodeTypesResource() mcp.Resource {
	return mcp.NewResource(
		NodeTypesURI,
		"Knowledge Graph Node Types",
		mcp.WithResourceDescription("Built-in node types and how each is drawn. Other types are allowed and use the default style."),
		mcp.WithMIMEType("application/json"),
	)
}

type nodeTypeEntry struct {
	Type  graph.NodeType `json:"node_type"`
	Style graph.Style    `json:"style"`
	Ref   bool           `json:"reference,omitempty"`
}

// HandleNodeTypes lists the built-in node types with their styles.
func (h *Handler) HandleNodeTypes(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	types := graph.KnownNodeTypes()
	entries := make([]nodeTypeEntry, 0, len(types)+1)
	for _, t := range types {
		entries = append(entries, nodeTypeEntry{Type: t, Style: t.Style(), Ref: t.IsRef()})
	}
	return jsonResource(req.Params.URI, map[string]any{
		"types":         entries,
		"default_style": graph.DefaultStyle,
	})
}
