// Package builder assembles the bounded subgraph a view or API call works on.
//
// Every Build re-derives the edge set from the node set it just selected, so a
// result never carries an edge pointing at a node outside it.
package builder

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

const (
	// DefaultDepth is the neighborhood radius when a request gives none.
	DefaultDepth = 2
	// MaxDepth caps neighborhood traversal.
	MaxDepth = 5
	// MaxContentLength is how much node content a built subgraph carries.
	MaxContentLength = 200
)

// Source is the slice of the graph store the builder reads from.
type Source interface {
	GetNode(ctx context.Context, id graph.NodeID) (*graph.Node, error)
	ListNodes(ctx context.Context, f graph.NodeFilter) ([]graph.Node, error)
	GetConnections(ctx context.Context, id graph.NodeID, dir graph.Direction) ([]graph.Connection, error)
	EdgesWithin(ctx context.Context, ids []graph.NodeID) ([]graph.Edge, error)
}

// Request describes the subgraph to build. A non-zero CenterID switches to
// neighborhood mode; Type and Query then narrow which neighbors are kept.
type Request struct {
	Type     graph.NodeType `json:"node_type,omitempty"`
	Query    string         `json:"query,omitempty"`
	Limit    int            `json:"limit,omitempty"`
	CenterID graph.NodeID   `json:"center_id,omitempty"`
	Depth    int            `json:"depth,omitempty"`
}

// Builder turns requests into closed subgraphs.
type Builder struct {
	src      Source
	pageSize int
}

// New creates a Builder. pageSize bounds every result; values <= 0 fall back
// to graph.DefaultPageSize.
func New(src Source, pageSize int) *Builder {
	if pageSize <= 0 {
		pageSize = graph.DefaultPageSize
	}
	return &Builder{src: src, pageSize: pageSize}
}

// Build selects nodes for req and returns them with exactly the edges whose
// endpoints are both selected.
func (b *Builder) Build(ctx context.Context, req Request) (*graph.Subgraph, error) {
	limit := req.Limit
	if limit <= 0 || limit > b.pageSize {
		limit = b.pageSize
	}

	var (
		nodes []graph.Node
		err   error
	)
	if req.CenterID != 0 {
		nodes, err = b.neighborhood(ctx, req, limit)
	} else {
		nodes, err = b.src.ListNodes(ctx, graph.NodeFilter{Type: req.Type, Query: req.Query, Limit: limit})
	}
	if err != nil {
		return nil, err
	}

	sub := &graph.Subgraph{Nodes: nodes}
	edges, err := b.src.EdgesWithin(ctx, sub.NodeIDs())
	if err != nil {
		return nil, fmt.Errorf("deriving edges: %w", err)
	}

	sub.Nodes, sub.Edges = Closure(nodes, edges)
	for i := range sub.Nodes {
		sub.Nodes[i].Content = truncate(sub.Nodes[i].Content, MaxContentLength)
	}
	return sub, nil
}

// neighborhood walks connections breadth-first from the center. Visited nodes
// are never revisited, so cycles terminate.
func (b *Builder) neighborhood(ctx context.Context, req Request, limit int) ([]graph.Node, error) {
	depth := req.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	center, err := b.src.GetNode(ctx, req.CenterID)
	if err != nil {
		return nil, fmt.Errorf("center node: %w", err)
	}

	type queueItem struct {
		id    graph.NodeID
		depth int
	}

	match := matcher(req)
	visited := map[graph.NodeID]bool{center.ID: true}
	queue := []queueItem{{id: center.ID}}
	nodes := []graph.Node{*center}

	for len(queue) > 0 && len(nodes) < limit {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= depth {
			continue
		}

		conns, err := b.src.GetConnections(ctx, current.id, graph.DirectionBoth)
		if err != nil {
			return nil, fmt.Errorf("connections of %d: %w", current.id, err)
		}

		for _, c := range conns {
			if visited[c.Node.ID] {
				continue
			}
			visited[c.Node.ID] = true
			queue = append(queue, queueItem{id: c.Node.ID, depth: current.depth + 1})

			if !match(c.Node) {
				continue
			}
			nodes = append(nodes, c.Node)
			if len(nodes) >= limit {
				break
			}
		}
	}
	return nodes, nil
}

// matcher filters neighbors. Non-matching nodes are still traversed so a
// filter does not cut off what lies behind them.
func matcher(req Request) func(graph.Node) bool {
	query := strings.ToLower(strings.TrimSpace(req.Query))
	return func(n graph.Node) bool {
		if req.Type != "" && n.Type != req.Type {
			return false
		}
		if query == "" {
			return true
		}
		return strings.Contains(strings.ToLower(n.Title), query) || strings.Contains(strings.ToLower(n.Content), query)
	}
}

// Closure drops every edge with an endpoint outside nodes. Nodes are
// returned unchanged; both slices are non-nil.
func Closure(nodes []graph.Node, edges []graph.Edge) ([]graph.Node, []graph.Edge) {
	in := make(map[graph.NodeID]bool, len(nodes))
	for _, n := range nodes {
		in[n.ID] = true
	}

	kept := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if in[e.SourceID] && in[e.TargetID] {
			kept = append(kept, e)
		}
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}
	return nodes, kept
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
