package graphtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// ─── CreateNodeTool ──────────────────────────────────────────────────────────

// CreateNodeTool handles the knowledge_create_node MCP tool.
type CreateNodeTool struct {
	store *graph.Store
}

// NewCreateNodeTool creates a CreateNodeTool with the given graph store.
func NewCreateNodeTool(store *graph.Store) *CreateNodeTool {
	return &CreateNodeTool{store: store}
}

// Definition returns the MCP tool definition for knowledge_create_node.
func (t *CreateNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_create_node",
		mcp.WithDescription(
			"Create a node in the knowledge graph. "+
				"Nodes are typed entities: concepts, entities, topics, references, ideas, questions. "+
				"Use knowledge_connect afterwards to relate it to other nodes.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short, unique-enough label for the node"),
		),
		mcp.WithString("node_type",
			mcp.Description("Node type: "+nodeTypeList()+" (default: concept; custom types are accepted)"),
		),
		mcp.WithString("content",
			mcp.Description("Optional longer description"),
		),
		mcp.WithNumber("parent_id",
			mcp.Description("Optional parent node ID for hierarchical grouping"),
		),
	)
}

// Handle processes the knowledge_create_node tool call.
func (t *CreateNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	p := graph.CreateNodeParams{
		Type:    graph.NodeType(req.GetString("node_type", "")),
		Title:   title,
		Content: req.GetString("content", ""),
	}
	if pid := intArg(req, "parent_id", 0); pid != 0 {
		id := graph.NodeID(pid)
		p.ParentID = &id
	}

	n, err := t.store.CreateNode(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create node: %v", err)), nil
	}

	msg := fmt.Sprintf("Node created: #%d [%s] %q", n.ID, n.Type, n.Title)
	if !n.Type.Known() {
		msg += "\nNote: custom node type, rendered with the default style."
	}
	return mcp.NewToolResultText(msg), nil
}

// ─── DeleteNodeTool ──────────────────────────────────────────────────────────

// DeleteNodeTool handles the knowledge_delete_node MCP tool.
type DeleteNodeTool struct {
	store *graph.Store
}

// NewDeleteNodeTool creates a DeleteNodeTool with the given graph store.
func NewDeleteNodeTool(store *graph.Store) *DeleteNodeTool {
	return &DeleteNodeTool{store: store}
}

// Definition returns the MCP tool definition for knowledge_delete_node.
func (t *DeleteNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_delete_node",
		mcp.WithDescription(
			"Delete a node and every connection touching it. "+
				"Child nodes are kept and lose their parent link. This cannot be undone.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Node ID to delete"),
		),
	)
}

// Handle processes the knowledge_delete_node tool call.
func (t *DeleteNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	if err := t.store.DeleteNode(ctx, graph.NodeID(id)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete node: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Node %d deleted along with its connections", id)), nil
}

// ─── SearchNodesTool ─────────────────────────────────────────────────────────

// SearchNodesTool handles the knowledge_search_nodes MCP tool.
type SearchNodesTool struct {
	store *graph.Store
}

// NewSearchNodesTool creates a SearchNodesTool with the given graph store.
func NewSearchNodesTool(store *graph.Store) *SearchNodesTool {
	return &SearchNodesTool{store: store}
}

// Definition returns the MCP tool definition for knowledge_search_nodes.
func (t *SearchNodesTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_search_nodes",
		mcp.WithDescription(
			"Search knowledge graph nodes by type and/or text. "+
				"The query matches case-insensitively anywhere in the title or content. "+
				"With no filters, lists nodes in creation order.",
		),
		mcp.WithString("query",
			mcp.Description("Substring to look for in title or content"),
		),
		mcp.WithString("node_type",
			mcp.Description("Only return nodes of this type"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default and cap: the store page size)"),
		),
	)
}

// Handle processes the knowledge_search_nodes tool call.
func (t *SearchNodesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, err := t.store.ListNodes(ctx, graph.NodeFilter{
		Type:  graph.NodeType(req.GetString("node_type", "")),
		Query: req.GetString("query", ""),
		Limit: intArg(req, "limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search nodes: %v", err)), nil
	}

	if len(nodes) == 0 {
		return mcp.NewToolResultText("No nodes found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d node(s):\n\n", len(nodes))
	for _, n := range nodes {
		b.WriteString(nodeLine(n))
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
