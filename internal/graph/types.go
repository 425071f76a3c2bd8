package graph

// ─── Identifiers ─────────────────────────────────────────────────────────────

// NodeID identifies a KnowledgeNode. Assigned by the store, never reused.
type NodeID int64

// EdgeID identifies a KnowledgeEdge.
type EdgeID int64

// ─── Nodes & edges ───────────────────────────────────────────────────────────

// Node is a typed entity in the knowledge graph.
type Node struct {
	ID        NodeID   `json:"id"`
	Type      NodeType `json:"node_type"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	ParentID  *NodeID  `json:"parent_id,omitempty"`
	RefKey    string   `json:"ref_key,omitempty"` // set only on proxy nodes
	CreatedAt string   `json:"created_at"`
}

// IsProxy reports whether the node shadows a foreign entity.
func (n Node) IsProxy() bool {
	return n.RefKey != ""
}

// Edge is a directed, labeled relationship between two nodes.
type Edge struct {
	ID           EdgeID  `json:"id"`
	SourceID     NodeID  `json:"source_id"`
	TargetID     NodeID  `json:"target_id"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
	CreatedAt    string  `json:"created_at"`
}

// IsSelfLoop reports whether both endpoints are the same node.
func (e Edge) IsSelfLoop() bool {
	return e.SourceID == e.TargetID
}

// Subgraph is a node set plus the edges whose endpoints both lie inside it.
type Subgraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeIDs returns the ids of the subgraph's nodes in order.
func (g *Subgraph) NodeIDs() []NodeID {
	ids := make([]NodeID, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// ─── Connections ─────────────────────────────────────────────────────────────

// Direction selects which incident edges GetConnections reports.
type Direction string

const (
	DirectionBoth     Direction = "both"
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// ParseDirection maps user input to a Direction. Empty input means both.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case "", DirectionBoth:
		return DirectionBoth, true
	case DirectionOutgoing:
		return DirectionOutgoing, true
	case DirectionIncoming:
		return DirectionIncoming, true
	}
	return "", false
}

// Connection is an incident edge resolved to the node on its other end.
type Connection struct {
	Edge      Edge      `json:"edge"`
	Direction Direction `json:"direction"`
	Node      Node      `json:"connected_node"`
}

// ─── Params & filters ────────────────────────────────────────────────────────

// CreateNodeParams holds the input for creating a node.
type CreateNodeParams struct {
	Type     NodeType `json:"node_type"`
	Title    string   `json:"title"`
	Content  string   `json:"content,omitempty"`
	ParentID *NodeID  `json:"parent_id,omitempty"`
}

// CreateEdgeParams holds the input for creating an edge. With Bidirectional
// set, a reverse edge is inserted in the same transaction.
type CreateEdgeParams struct {
	SourceID      NodeID  `json:"source_id"`
	TargetID      NodeID  `json:"target_id"`
	Relationship  string  `json:"relationship"`
	Weight        float64 `json:"weight,omitempty"`
	Bidirectional bool    `json:"bidirectional,omitempty"`
}

// ProxyParams describes a proxy node for a foreign entity.
type ProxyParams struct {
	Type   NodeType
	Title  string
	RefKey string
}

// NodeFilter narrows ListNodes. Zero values mean "no constraint"; a zero
// Limit falls back to the store's page size.
type NodeFilter struct {
	Type  NodeType `json:"node_type,omitempty"`
	Query string   `json:"query,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

// GraphFilter narrows GetGraph.
type GraphFilter struct {
	Type  NodeType `json:"node_type,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

// Stats holds aggregate graph statistics.
type Stats struct {
	TotalNodes   int              `json:"total_nodes"`
	TotalEdges   int              `json:"total_edges"`
	TotalProxies int              `json:"total_proxies"`
	NodesByType  map[NodeType]int `json:"nodes_by_type"`
}

// ─── Observer ────────────────────────────────────────────────────────────────

// Observer is notified after successful store mutations.
type Observer interface {
	NodeCreated(t NodeType)
	NodeDeleted(cascadedEdges int)
	EdgesCreated(n int)
	EdgeDeleted()
}

type noopObserver struct{}

func (noopObserver) NodeCreated(NodeType) {}
func (noopObserver) NodeDeleted(int)      {}
func (noopObserver) EdgesCreated(int)     {}
func (noopObserver) EdgeDeleted()         {}
