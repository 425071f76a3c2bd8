// Package layout places a subgraph in 2-D with a bounded force simulation:
// pairwise repulsion, edge attraction, damping and clamping to the viewport.
//
// A Session owns all transient position state for one view. It is not safe
// for concurrent use; one goroutine drives it (see internal/viewer).
package layout

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// State is the lifecycle stage of a session.
type State int

const (
	Uninitialized State = iota
	Seeded
	Relaxing
	Settled
)

var stateNames = [...]string{"uninitialized", "seeded", "relaxing", "settled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown layout state %q", text)
}

// Position is a 2-D coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a graph node plus its simulation state. It is never persisted.
type Node struct {
	graph.Node
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	// Pinned nodes are excluded from integration while a pointer holds them.
	Pinned bool `json:"pinned,omitempty"`
}

// Contains reports whether p lies inside the node's circle.
func (n *Node) Contains(p Position) bool {
	dx, dy := p.X-n.X, p.Y-n.Y
	return dx*dx+dy*dy <= n.Radius*n.Radius
}

// Result is a read-only snapshot of a session.
type Result struct {
	Nodes      []Node       `json:"nodes"`
	Edges      []graph.Edge `json:"edges"`
	State      State        `json:"state"`
	Iterations int          `json:"iterations"`
	Skipped    int          `json:"skipped_edges,omitempty"`
}

// ─── Session ─────────────────────────────────────────────────────────────────

// Session holds one view's nodes, their positions and the simulation state.
type Session struct {
	cfg     Config
	nodes   []Node
	index   map[graph.NodeID]int
	edges   []graph.Edge
	links   [][2]int
	skipped int
	state   State
	iter    int
	rng     *rand.Rand
}

// NewSession builds an Uninitialized session over sub. Edges whose endpoints
// are not both in sub are dropped and counted in SkippedEdges.
func NewSession(sub *graph.Subgraph, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &graph.Subgraph{}
	}

	s := &Session{
		cfg:   cfg,
		nodes: make([]Node, len(sub.Nodes)),
		index: make(map[graph.NodeID]int, len(sub.Nodes)),
		edges: make([]graph.Edge, 0, len(sub.Edges)),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	for i, n := range sub.Nodes {
		s.nodes[i] = Node{Node: n, Radius: cfg.Radius}
		s.index[n.ID] = i
	}
	for _, e := range sub.Edges {
		a, okA := s.index[e.SourceID]
		b, okB := s.index[e.TargetID]
		if !okA || !okB {
			s.skipped++
			continue
		}
		s.edges = append(s.edges, e)
		s.links = append(s.links, [2]int{a, b})
	}
	return s, nil
}

// Config returns the session's parameters.
func (s *Session) Config() Config { return s.cfg }

// State returns the lifecycle stage.
func (s *Session) State() State { return s.state }

// Iteration returns how many relaxation steps have run since seeding.
func (s *Session) Iteration() int { return s.iter }

// SkippedEdges returns how many input edges had an unresolved endpoint.
func (s *Session) SkippedEdges() int { return s.skipped }

// Len returns the number of nodes.
func (s *Session) Len() int { return len(s.nodes) }

// NodeAt returns the i-th node in iteration order. The pointer stays valid
// for the session's lifetime.
func (s *Session) NodeAt(i int) *Node { return &s.nodes[i] }

// Node returns the node with the given id, or nil.
func (s *Session) Node(id graph.NodeID) *Node {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.nodes[i]
}

// Nodes returns a copy of the nodes in iteration order.
func (s *Session) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the resolvable edges, self-loops included.
func (s *Session) Edges() []graph.Edge {
	out := make([]graph.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Positions returns the current position of every node.
func (s *Session) Positions() map[graph.NodeID]Position {
	out := make(map[graph.NodeID]Position, len(s.nodes))
	for _, n := range s.nodes {
		out[n.ID] = Position{X: n.X, Y: n.Y}
	}
	return out
}

// Result snapshots the session.
func (s *Session) Result() Result {
	return Result{
		Nodes:      s.Nodes(),
		Edges:      s.Edges(),
		State:      s.state,
		Iterations: s.iter,
		Skipped:    s.skipped,
	}
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// Seed scatters nodes over a grid of ceil(sqrt(n)) columns, each at its cell
// center plus up to a quarter cell of jitter. Velocities are zeroed.
func (s *Session) Seed() {
	n := len(s.nodes)
	s.iter = 0
	s.state = Seeded
	if n == 0 {
		return
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cellW := s.cfg.Width / float64(cols)
	cellH := s.cfg.Height / float64(rows)

	for i := range s.nodes {
		node := &s.nodes[i]
		row, col := i/cols, i%cols
		node.X = (float64(col)+0.5)*cellW + s.jitter(cellW)
		node.Y = (float64(row)+0.5)*cellH + s.jitter(cellH)
		node.VX, node.VY = 0, 0
		node.Radius = s.cfg.Radius
		s.clamp(node)
	}
}

func (s *Session) jitter(cell float64) float64 {
	return (s.rng.Float64()*2 - 1) * cell / 4
}

// Reset discards positions and returns to Uninitialized. The next Seed
// reproduces the original scatter.
func (s *Session) Reset() {
	for i := range s.nodes {
		s.nodes[i].X, s.nodes[i].Y = 0, 0
		s.nodes[i].VX, s.nodes[i].VY = 0, 0
		s.nodes[i].Pinned = false
	}
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
	s.iter = 0
	s.state = Uninitialized
}

// Step runs one full relaxation iteration and reports whether it did. An
// Uninitialized session is seeded first. Once the iteration budget is spent
// the session is Settled and Step is a no-op.
func (s *Session) Step() bool {
	if s.state == Uninitialized {
		s.Seed()
	}
	if s.state == Settled {
		return false
	}
	if s.iter >= s.cfg.Iterations {
		s.state = Settled
		return false
	}

	s.state = Relaxing
	s.repel()
	s.attract()
	s.integrate()
	s.iter++

	if s.iter >= s.cfg.Iterations {
		s.state = Settled
	}
	return true
}

// Compute lays out sub to completion in a throwaway session.
func Compute(sub *graph.Subgraph, cfg Config) (Result, error) {
	s, err := NewSession(sub, cfg)
	if err != nil {
		return Result{}, err
	}
	s.Relax()
	return s.Result(), nil
}

// Relax runs every remaining iteration.
func (s *Session) Relax() {
	for s.Step() {
	}
}

// RelaxFrames runs at most n iterations and returns how many ran.
func (s *Session) RelaxFrames(n int) int {
	ran := 0
	for ran < n && s.Step() {
		ran++
	}
	return ran
}

// ─── Forces ──────────────────────────────────────────────────────────────────

// repel pushes every unordered pair apart by Repulsion/d², equal and opposite.
func (s *Session) repel() {
	k := s.cfg.Repulsion
	for i := 0; i < len(s.nodes); i++ {
		a := &s.nodes[i]
		for j := i + 1; j < len(s.nodes); j++ {
			b := &s.nodes[j]
			ux, uy, d := direction(a, b)
			f := k / (d * d)
			s.push(a, -ux*f, -uy*f)
			s.push(b, ux*f, uy*f)
		}
	}
}

// attract pulls edge endpoints together by d*Attraction*weight. Self-loops
// contribute nothing.
func (s *Session) attract() {
	k := s.cfg.Attraction
	for i, l := range s.links {
		if l[0] == l[1] {
			continue
		}
		a, b := &s.nodes[l[0]], &s.nodes[l[1]]
		ux, uy, d := direction(a, b)
		f := d * k * edgeWeight(s.edges[i])
		s.push(a, ux*f, uy*f)
		s.push(b, -ux*f, -uy*f)
	}
}

// integrate advances positions by one time step, damps velocities and clamps
// positions into the viewport. Clamping never alters velocity.
func (s *Session) integrate() {
	dt, damping := s.cfg.TimeStep, s.cfg.Damping
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.Pinned {
			n.X += n.VX * dt
			n.Y += n.VY * dt
			n.VX *= damping
			n.VY *= damping
		}
		s.clamp(n)
	}
}

func (s *Session) push(n *Node, dvx, dvy float64) {
	if n.Pinned {
		return
	}
	n.VX += dvx
	n.VY += dvy
}

// direction returns the unit vector from a to b and their distance floored
// at 1. Coincident nodes are separated along the x axis.
func direction(a, b *Node) (ux, uy, d float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 1, 0, 1
	}
	return dx / dist, dy / dist, math.Max(dist, 1)
}

func edgeWeight(e graph.Edge) float64 {
	if e.Weight <= 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
		return 1
	}
	return e.Weight
}

// ─── Direct manipulation ─────────────────────────────────────────────────────

// MoveNode places a node at (x, y), clamped into the viewport. Velocity is
// left as is. It reports whether the node exists.
func (s *Session) MoveNode(id graph.NodeID, x, y float64) bool {
	n := s.Node(id)
	if n == nil {
		return false
	}
	n.X, n.Y = x, y
	s.clamp(n)
	return true
}

// Pin excludes a node from integration (or re-includes it).
func (s *Session) Pin(id graph.NodeID, pinned bool) bool {
	n := s.Node(id)
	if n == nil {
		return false
	}
	n.Pinned = pinned
	return true
}

// Clamp keeps p inside the area a node's center may occupy.
func (s *Session) Clamp(p Position) Position {
	r := s.cfg.Radius
	return Position{
		X: clampf(p.X, r, s.cfg.Width-r),
		Y: clampf(p.Y, r, s.cfg.Height-r),
	}
}

func (s *Session) clamp(n *Node) {
	p := s.Clamp(Position{X: n.X, Y: n.Y})
	n.X, n.Y = p.X, p.Y
}

func clampf(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
