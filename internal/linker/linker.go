// Package linker connects any two typed entities with a relationship. Entities
// that live outside the graph (memories, artifacts, projects...) are shadowed
// by proxy nodes, created on first use and reused afterwards.
package linker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/apperr"
	"github.com/HendryAvila/knowgraph/internal/graph"
)

// Kind names an entity kind.
type Kind string

const (
	KindNode         Kind = "node"
	KindMemory       Kind = "memory"
	KindArtifact     Kind = "artifact"
	KindProject      Kind = "project"
	KindInstruction  Kind = "instruction"
	KindConversation Kind = "conversation"
)

// proxyTypes maps foreign kinds to the node type of their proxies.
var proxyTypes = map[Kind]graph.NodeType{
	KindMemory:       graph.TypeMemoryRef,
	KindArtifact:     graph.TypeArtifactRef,
	KindProject:      graph.TypeProjectRef,
	KindInstruction:  graph.TypeInstructionRef,
	KindConversation: graph.TypeConversationRef,
}

// Kinds returns every recognized kind, sorted.
func Kinds() []string {
	out := []string{string(KindNode)}
	for k := range proxyTypes {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// ParseKind normalizes s and reports whether it names a recognized kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == KindNode {
		return k, true
	}
	_, ok := proxyTypes[k]
	return k, ok
}

// RefKey is the dedupe key of the proxy for a foreign entity.
func RefKey(k Kind, id int64) string {
	return fmt.Sprintf("%s:%d", k, id)
}

// ProxyTitle is the display label of a proxy node, e.g. "Memory #42".
func ProxyTitle(k Kind, id int64) string {
	s := string(k)
	return fmt.Sprintf("%s #%d", strings.ToUpper(s[:1])+s[1:], id)
}

// Store is the part of the graph store the linker writes through.
type Store interface {
	GetNode(ctx context.Context, id graph.NodeID) (*graph.Node, error)
	EnsureProxy(ctx context.Context, p graph.ProxyParams) (*graph.Node, bool, error)
	CreateEdge(ctx context.Context, p graph.CreateEdgeParams) ([]graph.Edge, error)
}

// Params describes one connection request.
type Params struct {
	SourceKind   string  `json:"source_type"`
	SourceID     int64   `json:"source_id"`
	TargetKind   string  `json:"target_type"`
	TargetID     int64   `json:"target_id"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight,omitempty"`
}

// Result reports what ConnectEntities resolved and created.
type Result struct {
	Source         graph.Node `json:"source"`
	Target         graph.Node `json:"target"`
	Edge           graph.Edge `json:"edge"`
	CreatedProxies int        `json:"created_proxies"`
}

// Linker implements ConnectEntities over a Store.
type Linker struct {
	store  Store
	logger *zap.Logger
}

// New creates a Linker. A nil logger discards output.
func New(store Store, logger *zap.Logger) *Linker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linker{store: store, logger: logger}
}

// ConnectEntities resolves both sides to graph nodes, materializing proxies
// for foreign kinds, then creates one edge from source to target.
//
// Inputs are validated before anything is written. A proxy created for the
// source stays in place if the target then fails to resolve; proxies are
// reused by later calls, so that leaves no duplicate behind.
func (l *Linker) ConnectEntities(ctx context.Context, p Params) (*Result, error) {
	rel := strings.TrimSpace(p.Relationship)
	if rel == "" {
		return nil, apperr.Validation("relationship is required")
	}
	srcKind, ok := ParseKind(p.SourceKind)
	if !ok {
		return nil, apperr.Validation("unknown source_type %q (want one of %s)", p.SourceKind, strings.Join(Kinds(), ", "))
	}
	dstKind, ok := ParseKind(p.TargetKind)
	if !ok {
		return nil, apperr.Validation("unknown target_type %q (want one of %s)", p.TargetKind, strings.Join(Kinds(), ", "))
	}
	if p.SourceID <= 0 || p.TargetID <= 0 {
		return nil, apperr.Validation("source_id and target_id must be positive")
	}

	res := &Result{}

	src, created, err := l.resolve(ctx, srcKind, p.SourceID)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if created {
		res.CreatedProxies++
	}

	dst, created, err := l.resolve(ctx, dstKind, p.TargetID)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if created {
		res.CreatedProxies++
	}

	edges, err := l.store.CreateEdge(ctx, graph.CreateEdgeParams{
		SourceID:     src.ID,
		TargetID:     dst.ID,
		Relationship: rel,
		Weight:       p.Weight,
	})
	if err != nil {
		return nil, err
	}

	res.Source, res.Target, res.Edge = *src, *dst, edges[0]
	return res, nil
}

func (l *Linker) resolve(ctx context.Context, k Kind, id int64) (*graph.Node, bool, error) {
	if k == KindNode {
		n, err := l.store.GetNode(ctx, graph.NodeID(id))
		return n, false, err
	}

	n, created, err := l.store.EnsureProxy(ctx, graph.ProxyParams{
		Type:   proxyTypes[k],
		Title:  ProxyTitle(k, id),
		RefKey: RefKey(k, id),
	})
	if err == nil && created {
		l.logger.Debug("proxy node created",
			zap.String("ref", n.RefKey),
			zap.Int64("node_id", int64(n.ID)),
		)
	}
	return n, created, err
}
