package viewer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/apperr"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
	"github.com/HendryAvila/knowgraph/internal/metrics"
)

// Manager tracks open sessions and enforces the session cap.
type Manager struct {
	opts    Options
	max     int
	logger  *zap.Logger
	metrics *metrics.Collector

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager allowing at most max concurrent sessions
// (0 means unlimited). logger and m may be nil.
func NewManager(opts Options, max int, logger *zap.Logger, m *metrics.Collector) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		opts:     opts.withDefaults(),
		max:      max,
		logger:   logger.Named("viewer"),
		metrics:  m,
		sessions: make(map[string]*Session),
	}
}

// Open lays out sub in a new session and registers it. It fails with a
// conflict error when the cap is reached. Every opened session must be
// handed to Serve or Release.
func (m *Manager) Open(sub *graph.Subgraph, cfg layout.Config) (*Session, error) {
	m.mu.Lock()
	full := m.max > 0 && len(m.sessions) >= m.max
	m.mu.Unlock()
	if full {
		return nil, apperr.Conflict("too many open view sessions (max %d)", m.max)
	}

	s, err := newSession(sub, cfg, m.opts, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, apperr.Conflict("too many open view sessions (max %d)", m.max)
	}
	m.sessions[s.id] = s
	if m.metrics != nil {
		m.metrics.ViewSessions.Inc()
	}
	s.logger.Info("view session opened",
		zap.Int("nodes", s.layout.Len()),
		zap.Int("skipped_edges", s.layout.SkippedEdges()),
	)
	return s, nil
}

// Serve runs s over conn until the client leaves or ctx ends, then closes
// conn and releases the session.
func (m *Manager) Serve(ctx context.Context, s *Session, conn Conn) error {
	defer m.Release(s)
	defer conn.Close()

	start := time.Now()
	err := s.run(ctx, conn)
	s.logger.Info("view session closed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("iterations", s.layout.Iteration()),
		zap.Error(err),
	)
	return err
}

// Release unregisters s. It is safe to call more than once.
func (m *Manager) Release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.id]; !ok {
		return
	}
	delete(m.sessions, s.id)
	if m.metrics != nil {
		m.metrics.ViewSessions.Dec()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
