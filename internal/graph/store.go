// Package graph implements the knowledge graph store: typed nodes, labeled
// edges between them, and the rules that tie the two together.
//
// It uses SQLite (pure Go, WAL mode) with foreign keys enforced. All mutations
// run inside transactions on a single connection, so a cascade delete or a
// bidirectional insert is never observed half-applied.
package graph

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/HendryAvila/knowgraph/internal/apperr"
	"modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLite's LOWER folds ASCII only. Text search lowercases the pattern with
// strings.ToLower, so the column side must fold the same way.
var (
	registerFuncsOnce sync.Once
	registerFuncsErr  error
)

func registerFuncs() error {
	registerFuncsOnce.Do(func() {
		registerFuncsErr = sqlite.RegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
	})
	return registerFuncsErr
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DefaultPageSize bounds unfiltered scans.
const DefaultPageSize = 200

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds graph store configuration.
type Config struct {
	DataDir  string
	FileName string
	PageSize int
}

// DefaultConfig returns the default configuration for the graph store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:  filepath.Join(home, ".knowgraph"),
		FileName: "graph.db",
		PageSize: DefaultPageSize,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the authoritative node/edge store backed by SQLite.
type Store struct {
	db       *sql.DB
	cfg      Config
	hooks    storeHooks
	observer Observer
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type storeHooks struct {
	exec    func(ctx context.Context, db execer, query string, args ...any) (sql.Result, error)
	beginTx func(ctx context.Context, db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func (s *Store) execHook(ctx context.Context, db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(ctx, db, query, args...)
	}
	return db.ExecContext(ctx, query, args...)
}

func (s *Store) beginTxHook(ctx context.Context) (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(ctx, s.db)
	}
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// New creates a Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.FileName == "" {
		cfg.FileName = "graph.db"
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("graph: create data dir: %w", err)
	}

	if err := registerFuncs(); err != nil {
		return nil, fmt.Errorf("graph: register sql functions: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.FileName)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("graph: open database: %w", err)
	}
	// One connection: pragmas stick, and writers queue instead of hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("graph: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, observer: noopObserver{}}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("graph: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// PageSize returns the engine-wide bound on unfiltered scans.
func (s *Store) PageSize() int {
	return s.cfg.PageSize
}

// SetObserver registers o for mutation notifications. Nil restores the no-op.
func (s *Store) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	s.observer = o
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS knowledge_nodes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			node_type  TEXT    NOT NULL,
			title      TEXT    NOT NULL,
			content    TEXT,
			parent_id  INTEGER,
			ref_key    TEXT,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (parent_id) REFERENCES knowledge_nodes(id) ON DELETE SET NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_type   ON knowledge_nodes(node_type);
		CREATE INDEX IF NOT EXISTS idx_nodes_parent ON knowledge_nodes(parent_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_ref ON knowledge_nodes(ref_key) WHERE ref_key IS NOT NULL;

		CREATE TABLE IF NOT EXISTS knowledge_edges (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id    INTEGER NOT NULL,
			target_id    INTEGER NOT NULL,
			relationship TEXT    NOT NULL,
			weight       REAL    NOT NULL DEFAULT 1.0,
			created_at   TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (source_id) REFERENCES knowledge_nodes(id) ON DELETE CASCADE,
			FOREIGN KEY (target_id) REFERENCES knowledge_nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_edges_source ON knowledge_edges(source_id);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON knowledge_edges(target_id);
		CREATE INDEX IF NOT EXISTS idx_edges_rel    ON knowledge_edges(relationship);
	`
	_, err := s.execHook(context.Background(), s.db, schema)
	return err
}

// ─── Nodes ───────────────────────────────────────────────────────────────────

const nodeColumns = `id, node_type, title, COALESCE(content, ''), parent_id, COALESCE(ref_key, ''), created_at`

// CreateNode inserts a node. An empty type defaults to DefaultNodeType; an
// empty title is rejected. A parent, when given, must exist.
func (s *Store) CreateNode(ctx context.Context, p CreateNodeParams) (*Node, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	typ := normalizeNodeType(p.Type)

	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if p.ParentID != nil {
		if err := requireNode(ctx, tx, *p.ParentID); err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
	}

	res, err := s.execHook(ctx, tx,
		`INSERT INTO knowledge_nodes (node_type, title, content, parent_id) VALUES (?, ?, ?, ?)`,
		string(typ), title, nullableString(p.Content), nullableID(p.ParentID),
	)
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}

	node, err := getNode(ctx, tx, NodeID(id))
	if err != nil {
		return nil, err
	}
	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.observer.NodeCreated(typ)
	return node, nil
}

// GetNode returns a node by id.
func (s *Store) GetNode(ctx context.Context, id NodeID) (*Node, error) {
	return getNode(ctx, s.db, id)
}

// DeleteNode removes a node together with every edge that touches it.
// Children keep existing with their parent reference cleared. Deleting an
// unknown id fails with a not-found error, so a second delete is an error.
func (s *Store) DeleteNode(ctx context.Context, id NodeID) error {
	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := requireNode(ctx, tx, id); err != nil {
		return err
	}

	res, err := s.execHook(ctx, tx,
		`DELETE FROM knowledge_edges WHERE source_id = ? OR target_id = ?`, int64(id), int64(id))
	if err != nil {
		return fmt.Errorf("deleting incident edges: %w", err)
	}
	cascaded, _ := res.RowsAffected()

	if _, err := s.execHook(ctx, tx,
		`UPDATE knowledge_nodes SET parent_id = NULL WHERE parent_id = ?`, int64(id)); err != nil {
		return fmt.Errorf("detaching children: %w", err)
	}

	if _, err := s.execHook(ctx, tx, `DELETE FROM knowledge_nodes WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	if err := s.commitHook(tx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.observer.NodeDeleted(int(cascaded))
	return nil
}

// ListNodes returns nodes matching the filter, ordered by id. Query matches
// title or content as a case-insensitive substring.
func (s *Store) ListNodes(ctx context.Context, f NodeFilter) ([]Node, error) {
	return s.listNodes(ctx, s.db, f)
}

func (s *Store) listNodes(ctx context.Context, q querier, f NodeFilter) ([]Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM knowledge_nodes WHERE 1=1`
	args := []any{}

	if t := strings.TrimSpace(string(f.Type)); t != "" {
		query += " AND node_type = ?"
		args = append(args, t)
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		pattern := likePattern(text)
		query += ` AND (unicode_lower(title) LIKE ? ESCAPE '\' OR unicode_lower(COALESCE(content, '')) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY id ASC LIMIT ?"
	args = append(args, s.clampLimit(f.Limit))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// Children returns the direct children of a node. Parent chains are never
// followed, so cycles cannot cause unbounded work.
func (s *Store) Children(ctx context.Context, id NodeID) ([]Node, error) {
	if err := requireNode(ctx, s.db, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM knowledge_nodes WHERE parent_id = ? ORDER BY id ASC`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("querying children: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// EnsureProxy returns the proxy node registered under p.RefKey, creating it
// when absent. The bool reports whether a node was created.
func (s *Store) EnsureProxy(ctx context.Context, p ProxyParams) (*Node, bool, error) {
	if strings.TrimSpace(p.RefKey) == "" {
		return nil, false, apperr.Validation("proxy reference is required")
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, false, apperr.Validation("title is required")
	}
	typ := normalizeNodeType(p.Type)

	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := scanNode(tx.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM knowledge_nodes WHERE ref_key = ?`, p.RefKey))
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("looking up proxy %q: %w", p.RefKey, err)
	}

	res, err := s.execHook(ctx, tx,
		`INSERT INTO knowledge_nodes (node_type, title, content, ref_key) VALUES (?, ?, ?, ?)`,
		string(typ), title, p.RefKey, p.RefKey,
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating proxy %q: %w", p.RefKey, err)
	}
	id, _ := res.LastInsertId()

	node, err := getNode(ctx, tx, NodeID(id))
	if err != nil {
		return nil, false, err
	}
	if err := s.commitHook(tx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}

	s.observer.NodeCreated(typ)
	return node, true, nil
}

// ─── Edges ───────────────────────────────────────────────────────────────────

const edgeColumns = `id, source_id, target_id, relationship, weight, created_at`

// CreateEdge inserts a directed edge between two existing nodes. With
// Bidirectional set, the reverse edge is inserted in the same transaction:
// both are created or neither is. Self-loops are accepted; a bidirectional
// self-loop is stored once because its reverse is itself.
func (s *Store) CreateEdge(ctx context.Context, p CreateEdgeParams) ([]Edge, error) {
	rel := strings.TrimSpace(p.Relationship)
	if rel == "" {
		return nil, apperr.Validation("relationship is required")
	}
	weight := p.Weight
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		weight = 1.0
	}

	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range []NodeID{p.SourceID, p.TargetID} {
		if err := requireNode(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	pairs := [][2]NodeID{{p.SourceID, p.TargetID}}
	if p.Bidirectional && p.SourceID != p.TargetID {
		pairs = append(pairs, [2]NodeID{p.TargetID, p.SourceID})
	}

	edges := make([]Edge, 0, len(pairs))
	for i, pair := range pairs {
		res, err := s.execHook(ctx, tx,
			`INSERT INTO knowledge_edges (source_id, target_id, relationship, weight) VALUES (?, ?, ?, ?)`,
			int64(pair[0]), int64(pair[1]), rel, weight,
		)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("creating edge: %w", err)
			}
			return nil, fmt.Errorf("creating reverse edge: %w", err)
		}
		id, _ := res.LastInsertId()
		edge, err := getEdge(ctx, tx, EdgeID(id))
		if err != nil {
			return nil, err
		}
		edges = append(edges, *edge)
	}

	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.observer.EdgesCreated(len(edges))
	return edges, nil
}

// DeleteEdge removes an edge by id.
func (s *Store) DeleteEdge(ctx context.Context, id EdgeID) error {
	res, err := s.execHook(ctx, s.db, `DELETE FROM knowledge_edges WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("deleting edge: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFound("edge %d", id)
	}
	s.observer.EdgeDeleted()
	return nil
}

// GetEdge returns an edge by id.
func (s *Store) GetEdge(ctx context.Context, id EdgeID) (*Edge, error) {
	return getEdge(ctx, s.db, id)
}

// GetConnections returns the edges incident to a node, each resolved to the
// node on its other end, ordered by edge id. A self-loop is reported once,
// as outgoing.
func (s *Store) GetConnections(ctx context.Context, id NodeID, dir Direction) ([]Connection, error) {
	if err := requireNode(ctx, s.db, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.source_id, e.target_id, e.relationship, e.weight, e.created_at,
		        n.id, n.node_type, n.title, COALESCE(n.content, ''), n.parent_id, COALESCE(n.ref_key, ''), n.created_at
		 FROM knowledge_edges e
		 JOIN knowledge_nodes n
		   ON n.id = CASE WHEN e.source_id = ? THEN e.target_id ELSE e.source_id END
		 WHERE e.source_id = ? OR e.target_id = ?
		 ORDER BY e.id ASC`,
		int64(id), int64(id), int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("querying connections: %w", err)
	}
	defer rows.Close()

	var result []Connection
	for rows.Next() {
		var c Connection
		var parent sql.NullInt64
		if err := rows.Scan(
			&c.Edge.ID, &c.Edge.SourceID, &c.Edge.TargetID, &c.Edge.Relationship, &c.Edge.Weight, &c.Edge.CreatedAt,
			&c.Node.ID, &c.Node.Type, &c.Node.Title, &c.Node.Content, &parent, &c.Node.RefKey, &c.Node.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		c.Node.ParentID = parentFromNull(parent)

		c.Direction = DirectionOutgoing
		if c.Edge.SourceID != id {
			c.Direction = DirectionIncoming
		}
		if dir != DirectionBoth && dir != "" && c.Direction != dir {
			continue
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// EdgesWithin returns the edges whose source and target are both in ids.
func (s *Store) EdgesWithin(ctx context.Context, ids []NodeID) ([]Edge, error) {
	return edgesWithin(ctx, s.db, ids)
}

func edgesWithin(ctx context.Context, q querier, ids []NodeID) ([]Edge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, 2*len(ids))
	for i := 0; i < 2; i++ {
		for _, id := range ids {
			args = append(args, int64(id))
		}
	}

	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT `+edgeColumns+` FROM knowledge_edges
		 WHERE source_id IN (%s) AND target_id IN (%s)
		 ORDER BY id ASC`, ph, ph),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var result []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ─── Graph ───────────────────────────────────────────────────────────────────

// GetGraph returns the nodes matching the filter and only the edges whose
// endpoints are both in that node set. Both reads share one transaction.
func (s *Store) GetGraph(ctx context.Context, f GraphFilter) (*Subgraph, error) {
	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	nodes, err := s.listNodes(ctx, tx, NodeFilter{Type: f.Type, Limit: f.Limit})
	if err != nil {
		return nil, err
	}

	g := &Subgraph{Nodes: nodes}
	g.Edges, err = edgesWithin(ctx, tx, g.NodeIDs())
	if err != nil {
		return nil, err
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return g, nil
}

// Stats returns aggregate node and edge counts, read in one transaction so
// the totals agree with each other.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	st := &Stats{NodesByType: map[NodeType]int{}}

	rows, err := tx.QueryContext(ctx,
		`SELECT node_type, COUNT(*) FROM knowledge_nodes GROUP BY node_type ORDER BY node_type`)
	if err != nil {
		return nil, fmt.Errorf("counting nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t NodeType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scanning node count: %w", err)
		}
		st.NodesByType[t] = n
		st.TotalNodes += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows.Close()

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_edges`).Scan(&st.TotalEdges); err != nil {
		return nil, fmt.Errorf("counting edges: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM knowledge_nodes WHERE ref_key IS NOT NULL`).Scan(&st.TotalProxies); err != nil {
		return nil, fmt.Errorf("counting proxies: %w", err)
	}
	return st, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Store) clampLimit(limit int) int {
	if limit <= 0 || limit > s.cfg.PageSize {
		return s.cfg.PageSize
	}
	return limit
}

func requireNode(ctx context.Context, q querier, id NodeID) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM knowledge_nodes WHERE id = ?`, int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("node %d", id)
	}
	if err != nil {
		return fmt.Errorf("checking node %d: %w", id, err)
	}
	return nil
}

func getNode(ctx context.Context, q querier, id NodeID) (*Node, error) {
	n, err := scanNode(q.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM knowledge_nodes WHERE id = ?`, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("node %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading node %d: %w", id, err)
	}
	return &n, nil
}

func getEdge(ctx context.Context, q querier, id EdgeID) (*Edge, error) {
	e, err := scanEdge(q.QueryRowContext(ctx,
		`SELECT `+edgeColumns+` FROM knowledge_edges WHERE id = ?`, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("edge %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading edge %d: %w", id, err)
	}
	return &e, nil
}

func scanNode(row rowScanner) (Node, error) {
	var n Node
	var parent sql.NullInt64
	if err := row.Scan(&n.ID, &n.Type, &n.Title, &n.Content, &parent, &n.RefKey, &n.CreatedAt); err != nil {
		return Node{}, err
	}
	n.ParentID = parentFromNull(parent)
	return n, nil
}

// scanNodes never returns a nil slice on success; an empty result encodes
// as [] rather than null.
func scanNodes(rows *sql.Rows) ([]Node, error) {
	result := []Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func scanEdge(row rowScanner) (Edge, error) {
	var e Edge
	err := row.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Relationship, &e.Weight, &e.CreatedAt)
	return e, err
}

func parentFromNull(v sql.NullInt64) *NodeID {
	if !v.Valid {
		return nil
	}
	id := NodeID(v.Int64)
	return &id
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableID(id *NodeID) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}

// likePattern lower-cases text, escapes LIKE wildcards and wraps it for a
// substring match.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(text)) + "%"
}
