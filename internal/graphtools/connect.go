package graphtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/linker"
)

// ─── ConnectTool ─────────────────────────────────────────────────────────────

// ConnectTool handles the knowledge_connect MCP tool.
type ConnectTool struct {
	store *graph.Store
}

// NewConnectTool creates a ConnectTool with the given graph store.
func NewConnectTool(store *graph.Store) *ConnectTool {
	return &ConnectTool{store: store}
}

// Definition returns the MCP tool definition for knowledge_connect.
func (t *ConnectTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_connect",
		mcp.WithDescription(
			"Create a typed, directed connection between two knowledge nodes. "+
				"Common relationships: relates_to, depends_on, part_of, implements, explains, contradicts.",
		),
		mcp.WithNumber("source_id",
			mcp.Required(),
			mcp.Description("Source node ID"),
		),
		mcp.WithNumber("target_id",
			mcp.Required(),
			mcp.Description("Target node ID (may equal source_id for a self-loop)"),
		),
		mcp.WithString("relationship",
			mcp.Required(),
			mcp.Description("Relationship label, e.g. depends_on"),
		),
		mcp.WithNumber("weight",
			mcp.Description("Connection strength, used by the layout (default: 1.0)"),
		),
		mcp.WithBoolean("bidirectional",
			mcp.Description("If true, also creates the reverse connection atomically (default: false)"),
		),
	)
}

// Handle processes the knowledge_connect tool call.
func (t *ConnectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID := intArg(req, "source_id", 0)
	targetID := intArg(req, "target_id", 0)
	if sourceID == 0 {
		return mcp.NewToolResultError("'source_id' is required"), nil
	}
	if targetID == 0 {
		return mcp.NewToolResultError("'target_id' is required"), nil
	}
	rel := req.GetString("relationship", "")
	if strings.TrimSpace(rel) == "" {
		return mcp.NewToolResultError("'relationship' is required"), nil
	}

	edges, err := t.store.CreateEdge(ctx, graph.CreateEdgeParams{
		SourceID:      graph.NodeID(sourceID),
		TargetID:      graph.NodeID(targetID),
		Relationship:  rel,
		Weight:        floatArg(req, "weight", 0),
		Bidirectional: boolArg(req, "bidirectional", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to connect nodes: %v", err)), nil
	}

	if len(edges) == 2 {
		return mcp.NewToolResultText(
			fmt.Sprintf("Bidirectional connection created: #%d ↔ #%d (%s)\nEdge IDs: %d, %d",
				sourceID, targetID, edges[0].Relationship, edges[0].ID, edges[1].ID),
		), nil
	}
	return mcp.NewToolResultText(
		fmt.Sprintf("Connection created: #%d → #%d (%s)\nEdge ID: %d",
			sourceID, targetID, edges[0].Relationship, edges[0].ID),
	), nil
}

// ─── ConnectEntitiesTool ─────────────────────────────────────────────────────

// ConnectEntitiesTool handles the knowledge_connect_entities MCP tool.
type ConnectEntitiesTool struct {
	linker *linker.Linker
}

// NewConnectEntitiesTool creates a ConnectEntitiesTool with the given linker.
func NewConnectEntitiesTool(l *linker.Linker) *ConnectEntitiesTool {
	return &ConnectEntitiesTool{linker: l}
}

// Definition returns the MCP tool definition for knowledge_connect_entities.
func (t *ConnectEntitiesTool) Definition() mcp.Tool {
	kinds := strings.Join(linker.Kinds(), ", ")
	return mcp.NewTool("knowledge_connect_entities",
		mcp.WithDescription(
			"Connect entities from other systems (memories, artifacts, projects, instructions, conversations) "+
				"to each other or to knowledge nodes. A reference node is created the first time a foreign "+
				"entity is linked and reused afterwards.",
		),
		mcp.WithString("source_type",
			mcp.Required(),
			mcp.Description("Source entity kind: "+kinds),
		),
		mcp.WithNumber("source_id",
			mcp.Required(),
			mcp.Description("Source entity ID (a node ID when source_type is node)"),
		),
		mcp.WithString("target_type",
			mcp.Required(),
			mcp.Description("Target entity kind: "+kinds),
		),
		mcp.WithNumber("target_id",
			mcp.Required(),
			mcp.Description("Target entity ID (a node ID when target_type is node)"),
		),
		mcp.WithString("relationship",
			mcp.Required(),
			mcp.Description("Relationship label"),
		),
		mcp.WithNumber("weight",
			mcp.Description("Connection strength (default: 1.0)"),
		),
	)
}

// Handle processes the knowledge_connect_entities tool call.
func (t *ConnectEntitiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.linker.ConnectEntities(ctx, linker.Params{
		SourceKind:   req.GetString("source_type", ""),
		SourceID:     int64(intArg(req, "source_id", 0)),
		TargetKind:   req.GetString("target_type", ""),
		TargetID:     int64(intArg(req, "target_id", 0)),
		Relationship: req.GetString("relationship", ""),
		Weight:       floatArg(req, "weight", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to connect entities: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Connection created: #%d %q → #%d %q (%s)\n",
		res.Source.ID, res.Source.Title, res.Target.ID, res.Target.Title, res.Edge.Relationship)
	fmt.Fprintf(&b, "Edge ID: %d\n", res.Edge.ID)
	if res.CreatedProxies > 0 {
		fmt.Fprintf(&b, "Reference nodes created: %d\n", res.CreatedProxies)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── GetConnectionsTool ──────────────────────────────────────────────────────

// GetConnectionsTool handles the knowledge_get_connections MCP tool.
type GetConnectionsTool struct {
	store *graph.Store
}

// NewGetConnectionsTool creates a GetConnectionsTool with the given graph store.
func NewGetConnectionsTool(store *graph.Store) *GetConnectionsTool {
	return &GetConnectionsTool{store: store}
}

// Definition returns the MCP tool definition for knowledge_get_connections.
func (t *GetConnectionsTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_get_connections",
		mcp.WithDescription(
			"List the connections of a node with the node on the other end of each. "+
				"Use direction to restrict to outgoing or incoming connections.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Node ID"),
		),
		mcp.WithString("direction",
			mcp.Description("both, outgoing or incoming (default: both)"),
		),
	)
}

// Handle processes the knowledge_get_connections tool call.
func (t *GetConnectionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	dir, ok := graph.ParseDirection(req.GetString("direction", ""))
	if !ok {
		return mcp.NewToolResultError("'direction' must be both, outgoing or incoming"), nil
	}

	node, err := t.store.GetNode(ctx, graph.NodeID(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get connections: %v", err)), nil
	}
	conns, err := t.store.GetConnections(ctx, node.ID, dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get connections: %v", err)), nil
	}

	return mcp.NewToolResultText(formatConnections(node, conns)), nil
}

func formatConnections(n *graph.Node, conns []graph.Connection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Connections of #%d: %q\n\n", n.ID, n.Title)
	fmt.Fprintf(&b, "**Type:** %s\n\n", n.Type)

	if len(conns) == 0 {
		b.WriteString("No connections found for this node.\n")
		return b.String()
	}

	for _, c := range conns {
		arrow := "→"
		if c.Direction == graph.DirectionIncoming {
			arrow = "←"
		}
		fmt.Fprintf(&b, "- %s #%d [%s] %q (%s, edge %d)\n",
			arrow, c.Node.ID, c.Node.Type, c.Node.Title, c.Edge.Relationship, c.Edge.ID)
	}
	fmt.Fprintf(&b, "\n**Total:** %d connection(s)\n", len(conns))
	return b.String()
}

// ─── DeleteConnectionTool ────────────────────────────────────────────────────

// DeleteConnectionTool handles the knowledge_delete_connection MCP tool.
type DeleteConnectionTool struct {
	store *graph.Store
}

// NewDeleteConnectionTool creates a DeleteConnectionTool with the given graph store.
func NewDeleteConnectionTool(store *graph.Store) *DeleteConnectionTool {
	return &DeleteConnectionTool{store: store}
}

// Definition returns the MCP tool definition for knowledge_delete_connection.
func (t *DeleteConnectionTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_delete_connection",
		mcp.WithDescription(
			"Remove a single connection by edge ID. "+
				"Use knowledge_get_connections to find edge IDs first.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Edge ID to remove"),
		),
	)
}

// Handle processes the knowledge_delete_connection tool call.
func (t *DeleteConnectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	if err := t.store.DeleteEdge(ctx, graph.EdgeID(id)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete connection: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Connection %d removed", id)), nil
}
