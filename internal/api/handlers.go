package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/apperr"
	"github.com/HendryAvila/knowgraph/internal/builder"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
	"github.com/HendryAvila/knowgraph/internal/linker"
	"github.com/HendryAvila/knowgraph/internal/metrics"
	"github.com/HendryAvila/knowgraph/internal/validation"
	"github.com/HendryAvila/knowgraph/internal/viewer"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the knowledge graph endpoints.
type Handler struct {
	store    *graph.Store
	builder  *builder.Builder
	linker   *linker.Linker
	layout   layout.Config
	viewers  *viewer.Manager
	upgrader websocket.Upgrader
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// ─── Requests ────────────────────────────────────────────────────────────────

type createNodeRequest struct {
	Title    string `json:"title" validate:"required"`
	NodeType string `json:"node_type"`
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

type connectRequest struct {
	SourceID      int64   `json:"source_id" validate:"required,gt=0"`
	TargetID      int64   `json:"target_id" validate:"required,gt=0"`
	Relationship  string  `json:"relationship" validate:"required"`
	Weight        float64 `json:"weight" validate:"gte=0"`
	Bidirectional bool    `json:"bidirectional"`
}

type connectionsResponse struct {
	Node        graph.Node         `json:"node"`
	Connections []graph.Connection `json:"connections"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return validation.Struct(dst)
}

// ─── Query parsing ───────────────────────────────────────────────────────────

func intQuery(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Validation("%s must be a non-negative integer", key)
	}
	return v, nil
}

func floatQuery(r *http.Request, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validation("%s must be a finite number", key)
	}
	return v, nil
}

func pathID(r *http.Request, key string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || v <= 0 {
		return 0, apperr.Validation("%s must be a positive integer", key)
	}
	return v, nil
}

func buildRequest(r *http.Request) (builder.Request, error) {
	q := r.URL.Query()
	req := builder.Request{
		Type:  graph.NodeType(strings.TrimSpace(q.Get("node_type"))),
		Query: q.Get("query"),
	}
	var err error
	if req.Limit, err = intQuery(r, "limit"); err != nil {
		return req, err
	}
	center, err := intQuery(r, "center_id")
	if err != nil {
		return req, err
	}
	req.CenterID = graph.NodeID(center)
	if req.Depth, err = intQuery(r, "depth"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handler) layoutConfig(r *http.Request) (layout.Config, error) {
	cfg := h.layout
	var err error
	if cfg.Width, err = floatQuery(r, "width", cfg.Width); err != nil {
		return cfg, err
	}
	if cfg.Height, err = floatQuery(r, "height", cfg.Height); err != nil {
		return cfg, err
	}
	if r.URL.Query().Has("iterations") {
		if cfg.Iterations, err = intQuery(r, "iterations"); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// ─── Graph ───────────────────────────────────────────────────────────────────

// GetGraph handles GET /graph.
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sub, err := h.builder.Build(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, sub)
}

// GetLayout handles GET /graph/layout.
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	cfg, err := h.layoutConfig(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sub, err := h.builder.Build(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	start := time.Now()
	res, err := layout.Compute(sub, cfg)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveLayout(time.Since(start), len(res.Nodes))
	}
	respondJSON(w, r, h.logger, http.StatusOK, res)
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, stats)
}

// ─── Nodes ───────────────────────────────────────────────────────────────────

// ListNodes handles GET /nodes.
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	nodes, err := h.store.ListNodes(r.Context(), graph.NodeFilter{
		Type:  graph.NodeType(strings.TrimSpace(r.URL.Query().Get("node_type"))),
		Query: r.URL.Query().Get("query"),
		Limit: limit,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, map[string]any{"nodes": nodes})
}

// CreateNode handles POST /nodes.
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	p := graph.CreateNodeParams{
		Type:    graph.NodeType(req.NodeType),
		Title:   req.Title,
		Content: req.Content,
	}
	if req.ParentID != nil {
		id := graph.NodeID(*req.ParentID)
		p.ParentID = &id
	}

	n, err := h.store.CreateNode(r.Context(), p)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusCreated, n)
}

// GetNode handles GET /nodes/{id}.
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	n, err := h.store.GetNode(r.Context(), graph.NodeID(id))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, n)
}

// DeleteNode handles DELETE /nodes/{id}.
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.store.DeleteNode(r.Context(), graph.NodeID(id)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, map[string]any{"deleted": id})
}

// GetConnections handles GET /nodes/{id}/connections.
func (h *Handler) GetConnections(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	dir, ok := graph.ParseDirection(r.URL.Query().Get("direction"))
	if !ok {
		respondError(w, r, h.logger, apperr.Validation("direction must be both, outgoing or incoming"))
		return
	}

	n, err := h.store.GetNode(r.Context(), graph.NodeID(id))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	conns, err := h.store.GetConnections(r.Context(), n.ID, dir)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, connectionsResponse{Node: *n, Connections: conns})
}

// GetChildren handles GET /nodes/{id}/children.
func (h *Handler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	nodes, err := h.store.Children(r.Context(), graph.NodeID(id))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, map[string]any{"nodes": nodes})
}

// ─── Edges ───────────────────────────────────────────────────────────────────

// Connect handles POST /connect.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	edges, err := h.store.CreateEdge(r.Context(), graph.CreateEdgeParams{
		SourceID:      graph.NodeID(req.SourceID),
		TargetID:      graph.NodeID(req.TargetID),
		Relationship:  req.Relationship,
		Weight:        req.Weight,
		Bidirectional: req.Bidirectional,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusCreated, map[string]any{"edges": edges})
}

// ConnectEntities handles POST /connect-entities.
func (h *Handler) ConnectEntities(w http.ResponseWriter, r *http.Request) {
	var p linker.Params
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	res, err := h.linker.ConnectEntities(r.Context(), p)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusCreated, res)
}

// DeleteEdge handles DELETE /edges/{id}.
func (h *Handler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.store.DeleteEdge(r.Context(), graph.EdgeID(id)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, map[string]any{"deleted": id})
}

// ─── View sessions ───────────────────────────────────────────────────────────

// View handles GET /ws: it builds the requested subgraph, upgrades to a
// WebSocket and runs an interactive view session until the client leaves.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	req, err := buildRequest(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	cfg, err := h.layoutConfig(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sub, err := h.builder.Build(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	sess, err := h.viewers.Open(sub, cfg)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.viewers.Release(sess)
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	// The server's read and write timeouts must not end a long-lived session.
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	if err := h.viewers.Serve(r.Context(), sess, conn); err != nil {
		h.logger.Warn("view session ended with error", zap.String("session_id", sess.ID()), zap.Error(err))
	}
}
