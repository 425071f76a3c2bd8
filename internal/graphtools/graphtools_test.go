package graphtools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/builder"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
	"github.com/HendryAvila/knowgraph/internal/linker"
	"github.com/HendryAvila/knowgraph/internal/metrics"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestStore creates a graph.Store in a temp directory for testing.
func newTestStore(t *testing.T) *graph.Store {
	t.Helper()
	store, err := graph.New(graph.Config{DataDir: t.TempDir(), PageSize: 50})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func call(t *testing.T, handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	return result
}

func mustNode(t *testing.T, s *graph.Store, typ graph.NodeType, title string) *graph.Node {
	t.Helper()
	n, err := s.CreateNode(context.Background(), graph.CreateNodeParams{Type: typ, Title: title})
	if err != nil {
		t.Fatalf("CreateNode(%q): %v", title, err)
	}
	return n
}

func requiredSet(def mcp.Tool) map[string]bool {
	set := make(map[string]bool)
	for _, r := range def.InputSchema.Required {
		set[r] = true
	}
	return set
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestDefinitions_NamesAndRequiredParams(t *testing.T) {
	store := newTestStore(t)
	b := builder.New(store, store.PageSize())
	l := linker.New(store, nil)

	tests := []struct {
		def      mcp.Tool
		name     string
		required []string
	}{
		{NewCreateNodeTool(store).Definition(), "knowledge_create_node", []string{"title"}},
		{NewDeleteNodeTool(store).Definition(), "knowledge_delete_node", []string{"id"}},
		{NewSearchNodesTool(store).Definition(), "knowledge_search_nodes", nil},
		{NewConnectTool(store).Definition(), "knowledge_connect", []string{"source_id", "target_id", "relationship"}},
		{NewConnectEntitiesTool(l).Definition(), "knowledge_connect_entities", []string{"source_type", "source_id", "target_type", "target_id", "relationship"}},
		{NewGetConnectionsTool(store).Definition(), "knowledge_get_connections", []string{"id"}},
		{NewDeleteConnectionTool(store).Definition(), "knowledge_delete_connection", []string{"id"}},
		{NewGetGraphTool(b).Definition(), "knowledge_get_graph", nil},
		{NewLayoutTool(b, layout.DefaultConfig(), nil).Definition(), "knowledge_layout", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.def.Name != tt.name {
				t.Errorf("tool name = %q, want %q", tt.def.Name, tt.name)
			}
			req := requiredSet(tt.def)
			for _, r := range tt.required {
				if !req[r] {
					t.Errorf("%q should be required", r)
				}
				if _, ok := tt.def.InputSchema.Properties[r]; !ok {
					t.Errorf("missing %q parameter", r)
				}
			}
		})
	}
}

func TestLayoutTool_DefinitionHasViewportParams(t *testing.T) {
	store := newTestStore(t)
	def := NewLayoutTool(builder.New(store, 0), layout.DefaultConfig(), nil).Definition()

	for _, p := range []string{"width", "height", "iterations", "center_id", "depth", "node_type"} {
		if _, ok := def.InputSchema.Properties[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
}

// ─── Node tools ──────────────────────────────────────────────────────────────

func TestCreateNodeTool_Handle(t *testing.T) {
	store := newTestStore(t)
	tool := NewCreateNodeTool(store)

	result := call(t, tool.Handle, map[string]interface{}{
		"title":     "Authentication",
		"node_type": "concept",
		"content":   "How users prove who they are",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(result))
	}
	text := resultText(result)
	if !strings.Contains(text, "#1") || !strings.Contains(text, "Authentication") {
		t.Errorf("unexpected result: %s", text)
	}

	child := call(t, tool.Handle, map[string]interface{}{
		"title":     "Session tokens",
		"parent_id": float64(1),
	})
	if child.IsError {
		t.Fatalf("unexpected error: %s", resultText(child))
	}
	n, err := store.GetNode(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if n.ParentID == nil || *n.ParentID != 1 {
		t.Errorf("ParentID = %v, want 1", n.ParentID)
	}
	if n.Type != graph.DefaultNodeType {
		t.Errorf("Type = %q, want default %q", n.Type, graph.DefaultNodeType)
	}
}

func TestCreateNodeTool_CustomTypeNote(t *testing.T) {
	store := newTestStore(t)
	result := call(t, NewCreateNodeTool(store).Handle, map[string]interface{}{
		"title":     "Flaky CI",
		"node_type": "incident",
	})
	if result.IsError {
		t.Fatalf("custom types must be accepted: %s", resultText(result))
	}
	if !strings.Contains(resultText(result), "default style") {
		t.Errorf("expected default style note, got: %s", resultText(result))
	}
}

func TestCreateNodeTool_Errors(t *testing.T) {
	store := newTestStore(t)
	tool := NewCreateNodeTool(store)

	if r := call(t, tool.Handle, map[string]interface{}{"title": "   "}); !r.IsError {
		t.Error("blank title should fail")
	}
	r := call(t, tool.Handle, map[string]interface{}{"title": "Orphan", "parent_id": float64(99)})
	if !r.IsError {
		t.Fatal("missing parent should fail")
	}
	if !strings.Contains(resultText(r), "node 99") {
		t.Errorf("unexpected error text: %s", resultText(r))
	}
}

func TestDeleteNodeTool_Handle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := mustNode(t, store, graph.TypeConcept, "A")
	b := mustNode(t, store, graph.TypeConcept, "B")
	if _, err := store.CreateEdge(ctx, graph.CreateEdgeParams{SourceID: a.ID, TargetID: b.ID, Relationship: "relates_to"}); err != nil {
		t.Fatal(err)
	}

	tool := NewDeleteNodeTool(store)
	if r := call(t, tool.Handle, map[string]interface{}{"id": float64(a.ID)}); r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}

	conns, err := store.GetConnections(ctx, b.ID, graph.DirectionBoth)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 0 {
		t.Errorf("connections survived delete: %v", conns)
	}

	if r := call(t, tool.Handle, map[string]interface{}{"id": float64(a.ID)}); !r.IsError {
		t.Error("second delete should fail")
	}
	if r := call(t, tool.Handle, map[string]interface{}{}); !r.IsError {
		t.Error("missing id should fail")
	}
}

func TestSearchNodesTool_Handle(t *testing.T) {
	store := newTestStore(t)
	mustNode(t, store, graph.TypeConcept, "Authentication")
	mustNode(t, store, graph.TypeEntity, "Auth Token")
	mustNode(t, store, graph.TypeTopic, "Billing")
	tool := NewSearchNodesTool(store)

	text := resultText(call(t, tool.Handle, map[string]interface{}{"query": "AUTH"}))
	if !strings.Contains(text, "Found 2 node(s)") {
		t.Errorf("query: %s", text)
	}

	text = resultText(call(t, tool.Handle, map[string]interface{}{"node_type": "topic"}))
	if !strings.Contains(text, "Billing") || strings.Contains(text, "Authentication") {
		t.Errorf("type filter: %s", text)
	}

	text = resultText(call(t, tool.Handle, map[string]interface{}{"query": "nothing"}))
	if text != "No nodes found." {
		t.Errorf("empty: %s", text)
	}
}

// ─── Connection tools ────────────────────────────────────────────────────────

func TestConnectTool_Handle(t *testing.T) {
	store := newTestStore(t)
	a := mustNode(t, store, graph.TypeConcept, "A")
	b := mustNode(t, store, graph.TypeConcept, "B")
	tool := NewConnectTool(store)

	r := call(t, tool.Handle, map[string]interface{}{
		"source_id":    float64(a.ID),
		"target_id":    float64(b.ID),
		"relationship": "depends_on",
	})
	if r.IsError || !strings.Contains(resultText(r), "#1 → #2 (depends_on)") {
		t.Errorf("one-way: %s", resultText(r))
	}

	r = call(t, tool.Handle, map[string]interface{}{
		"source_id":     float64(a.ID),
		"target_id":     float64(b.ID),
		"relationship":  "relates_to",
		"bidirectional": true,
		"weight":        float64(2.5),
	})
	if r.IsError || !strings.Contains(resultText(r), "Bidirectional") {
		t.Errorf("bidirectional: %s", resultText(r))
	}

	conns, err := store.GetConnections(context.Background(), a.ID, graph.DirectionIncoming)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 || conns[0].Edge.Weight != 2.5 {
		t.Errorf("reverse edge = %+v", conns)
	}
}

func TestConnectTool_Errors(t *testing.T) {
	store := newTestStore(t)
	a := mustNode(t, store, graph.TypeConcept, "A")
	tool := NewConnectTool(store)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing source", map[string]interface{}{"target_id": float64(a.ID), "relationship": "x"}},
		{"missing target", map[string]interface{}{"source_id": float64(a.ID), "relationship": "x"}},
		{"missing relationship", map[string]interface{}{"source_id": float64(a.ID), "target_id": float64(a.ID)}},
		{"unknown target", map[string]interface{}{"source_id": float64(a.ID), "target_id": float64(42), "relationship": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := call(t, tool.Handle, tt.args); !r.IsError {
				t.Errorf("expected error, got: %s", resultText(r))
			}
		})
	}
}

func TestConnectEntitiesTool_ProxyReuse(t *testing.T) {
	store := newTestStore(t)
	tool := NewConnectEntitiesTool(linker.New(store, nil))
	args := map[string]interface{}{
		"source_type":  "memory",
		"source_id":    float64(42),
		"target_type":  "artifact",
		"target_id":    float64(7),
		"relationship": "documents",
	}

	first := call(t, tool.Handle, args)
	if first.IsError {
		t.Fatalf("unexpected error: %s", resultText(first))
	}
	if !strings.Contains(resultText(first), "Reference nodes created: 2") {
		t.Errorf("first call: %s", resultText(first))
	}

	second := call(t, tool.Handle, args)
	if strings.Contains(resultText(second), "Reference nodes created") {
		t.Errorf("second call must reuse proxies: %s", resultText(second))
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalNodes != 2 || stats.TotalEdges != 2 {
		t.Errorf("stats = %+v, want 2 nodes and 2 edges", stats)
	}
}

func TestConnectEntitiesTool_Errors(t *testing.T) {
	store := newTestStore(t)
	tool := NewConnectEntitiesTool(linker.New(store, nil))

	r := call(t, tool.Handle, map[string]interface{}{
		"source_type": "spaceship", "source_id": float64(1),
		"target_type": "memory", "target_id": float64(1),
		"relationship": "x",
	})
	if !r.IsError || !strings.Contains(resultText(r), "spaceship") {
		t.Errorf("unknown kind: %s", resultText(r))
	}

	r = call(t, tool.Handle, map[string]interface{}{
		"source_type": "node", "source_id": float64(5),
		"target_type": "memory", "target_id": float64(1),
		"relationship": "x",
	})
	if !r.IsError {
		t.Errorf("missing node should fail: %s", resultText(r))
	}
}

func TestGetConnectionsTool_Handle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	auth := mustNode(t, store, graph.TypeConcept, "Authentication")
	token := mustNode(t, store, graph.TypeEntity, "Token")
	if _, err := store.CreateEdge(ctx, graph.CreateEdgeParams{SourceID: auth.ID, TargetID: token.ID, Relationship: "uses"}); err != nil {
		t.Fatal(err)
	}
	tool := NewGetConnectionsTool(store)

	text := resultText(call(t, tool.Handle, map[string]interface{}{"id": float64(token.ID)}))
	if !strings.Contains(text, "← #1") || !strings.Contains(text, "uses") {
		t.Errorf("incoming: %s", text)
	}

	text = resultText(call(t, tool.Handle, map[string]interface{}{"id": float64(token.ID), "direction": "outgoing"}))
	if !strings.Contains(text, "No connections found") {
		t.Errorf("outgoing filter: %s", text)
	}

	if r := call(t, tool.Handle, map[string]interface{}{"id": float64(token.ID), "direction": "sideways"}); !r.IsError {
		t.Error("bad direction should fail")
	}
	if r := call(t, tool.Handle, map[string]interface{}{"id": float64(99)}); !r.IsError {
		t.Error("unknown node should fail")
	}
}

func TestDeleteConnectionTool_Handle(t *testing.T) {
	store := newTestStore(t)
	a := mustNode(t, store, graph.TypeConcept, "A")
	edges, err := store.CreateEdge(context.Background(), graph.CreateEdgeParams{SourceID: a.ID, TargetID: a.ID, Relationship: "self"})
	if err != nil {
		t.Fatal(err)
	}
	tool := NewDeleteConnectionTool(store)

	if r := call(t, tool.Handle, map[string]interface{}{"id": float64(edges[0].ID)}); r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if r := call(t, tool.Handle, map[string]interface{}{"id": float64(edges[0].ID)}); !r.IsError {
		t.Error("deleting twice should fail")
	}
}

// ─── Graph tools ─────────────────────────────────────────────────────────────

func TestGetGraphTool_ClosedSubgraph(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	auth := mustNode(t, store, graph.TypeConcept, "Authentication")
	token := mustNode(t, store, graph.TypeEntity, "Token")
	if _, err := store.CreateEdge(ctx, graph.CreateEdgeParams{SourceID: auth.ID, TargetID: token.ID, Relationship: "uses"}); err != nil {
		t.Fatal(err)
	}
	tool := NewGetGraphTool(builder.New(store, store.PageSize()))

	var sub graph.Subgraph
	text := resultText(call(t, tool.Handle, map[string]interface{}{}))
	if err := json.Unmarshal([]byte(text), &sub); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, text)
	}
	if len(sub.Nodes) != 2 || len(sub.Edges) != 1 {
		t.Errorf("full graph = %d nodes, %d edges", len(sub.Nodes), len(sub.Edges))
	}

	text = resultText(call(t, tool.Handle, map[string]interface{}{"node_type": "concept"}))
	if err := json.Unmarshal([]byte(text), &sub); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(sub.Nodes) != 1 || len(sub.Edges) != 0 {
		t.Errorf("filtered graph must drop dangling edges: %+v", sub)
	}

	if r := call(t, tool.Handle, map[string]interface{}{"center_id": float64(99)}); !r.IsError {
		t.Error("unknown center should fail")
	}
}

func TestLayoutTool_Handle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := mustNode(t, store, graph.TypeConcept, "A")
	b := mustNode(t, store, graph.TypeConcept, "B")
	mustNode(t, store, graph.TypeTopic, "C")
	if _, err := store.CreateEdge(ctx, graph.CreateEdgeParams{SourceID: a.ID, TargetID: b.ID, Relationship: "r"}); err != nil {
		t.Fatal(err)
	}
	m := metrics.NewCollector("test")
	tool := NewLayoutTool(builder.New(store, store.PageSize()), layout.DefaultConfig(), m)

	r := call(t, tool.Handle, map[string]interface{}{
		"width":      float64(400),
		"height":     float64(300),
		"iterations": float64(10),
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}

	var res layout.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(res.Nodes) != 3 || res.Iterations != 10 {
		t.Fatalf("result = %d nodes, %d iterations", len(res.Nodes), res.Iterations)
	}
	for _, n := range res.Nodes {
		if n.X < n.Radius || n.X > 400-n.Radius || n.Y < n.Radius || n.Y > 300-n.Radius {
			t.Errorf("node %d at (%g, %g) is outside the viewport", n.ID, n.X, n.Y)
		}
	}

	r = call(t, tool.Handle, map[string]interface{}{"width": float64(10)})
	if !r.IsError {
		t.Error("viewport smaller than a node should fail")
	}
}
