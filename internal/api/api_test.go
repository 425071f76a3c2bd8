package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
	"github.com/HendryAvila/knowgraph/internal/linker"
	"github.com/HendryAvila/knowgraph/internal/metrics"
	"github.com/HendryAvila/knowgraph/internal/server"
	"github.com/HendryAvila/knowgraph/internal/viewer"
)

// ─── Helpers ─────────────────────────────────────────────────────────────────

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
	Meta    *MetaInfo       `json:"meta"`
}

type testAPI struct {
	srv  *httptest.Server
	deps *server.Deps
}

func newTestAPI(t *testing.T, mutate func(*config.Config)) *testAPI {
	t.Helper()
	cfg := config.Default()
	cfg.Store.DataDir = t.TempDir()
	cfg.HTTP.RateLimit = 0
	cfg.Viewer.FrameInterval = 5 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}

	deps, cleanup, err := server.Open(cfg, zaptest.NewLogger(t), metrics.NewCollector("knowgraph"))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(NewRouter(deps, cfg))
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, deps: deps}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, header http.Header) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a *testAPI) createNode(t *testing.T, typ, title string) graph.Node {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/knowledge/nodes",
		map[string]any{"title": title, "node_type": typ}, nil)
	require.Equal(t, http.StatusCreated, status, "create node: %+v", env.Error)
	var n graph.Node
	require.NoError(t, json.Unmarshal(env.Data, &n))
	return n
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// ─── Envelope & errors ───────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	a := newTestAPI(t, nil)

	status, env := a.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.NotEmpty(t, env.Meta.RequestID)

	body := decode[map[string]string](t, env.Data)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, server.Version, body["version"])
}

func TestErrors_MapToStatus(t *testing.T) {
	a := newTestAPI(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing title", http.MethodPost, "/api/knowledge/nodes", map[string]any{"node_type": "concept"}, http.StatusBadRequest, "VALIDATION"},
		{"malformed json", http.MethodPost, "/api/knowledge/nodes", "{not json", http.StatusBadRequest, "VALIDATION"},
		{"bad id", http.MethodGet, "/api/knowledge/nodes/abc", nil, http.StatusBadRequest, "VALIDATION"},
		{"bad limit", http.MethodGet, "/api/knowledge/nodes?limit=-3", nil, http.StatusBadRequest, "VALIDATION"},
		{"infinite width", http.MethodGet, "/api/knowledge/graph/layout?width=Inf", nil, http.StatusBadRequest, "VALIDATION"},
		{"NaN height", http.MethodGet, "/api/knowledge/graph/layout?height=NaN", nil, http.StatusBadRequest, "VALIDATION"},
		{"unknown node", http.MethodGet, "/api/knowledge/nodes/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"delete unknown node", http.MethodDelete, "/api/knowledge/nodes/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"delete unknown edge", http.MethodDelete, "/api/knowledge/edges/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown route", http.MethodGet, "/api/knowledge/nope", nil, http.StatusNotFound, "NOT_FOUND"},
		{"connect unknown nodes", http.MethodPost, "/api/knowledge/connect",
			map[string]any{"source_id": 98, "target_id": 99, "relationship": "uses"}, http.StatusNotFound, "NOT_FOUND"},
		{"connect without relationship", http.MethodPost, "/api/knowledge/connect",
			map[string]any{"source_id": 1, "target_id": 2}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := a.do(t, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestRespondJSON_UnencodableIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/graph/layout", nil)

	respondJSON(rec, req, zaptest.NewLogger(t), http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INTERNAL", env.Error.Code)
}

// ─── Graph operations ────────────────────────────────────────────────────────

func TestAuthTokenScenario(t *testing.T) {
	a := newTestAPI(t, nil)

	auth := a.createNode(t, "concept", "Auth")
	token := a.createNode(t, "entity", "Token")

	status, env := a.do(t, http.MethodPost, "/api/knowledge/connect", map[string]any{
		"source_id": auth.ID, "target_id": token.ID, "relationship": "uses",
	}, nil)
	require.Equal(t, http.StatusCreated, status)
	edges := decode[map[string][]graph.Edge](t, env.Data)["edges"]
	require.Len(t, edges, 1)

	status, env = a.do(t, http.MethodGet, "/api/knowledge/graph", nil, nil)
	require.Equal(t, http.StatusOK, status)
	sub := decode[graph.Subgraph](t, env.Data)
	assert.ElementsMatch(t, []graph.NodeID{auth.ID, token.ID}, sub.NodeIDs())
	require.Len(t, sub.Edges, 1)
	assert.Equal(t, auth.ID, sub.Edges[0].SourceID)
	assert.Equal(t, token.ID, sub.Edges[0].TargetID)
	assert.Equal(t, "uses", sub.Edges[0].Relationship)

	status, _ = a.do(t, http.MethodDelete, fmt.Sprintf("/api/knowledge/nodes/%d", auth.ID), nil, nil)
	require.Equal(t, http.StatusOK, status)

	_, env = a.do(t, http.MethodGet, "/api/knowledge/graph", nil, nil)
	sub = decode[graph.Subgraph](t, env.Data)
	assert.Equal(t, []graph.NodeID{token.ID}, sub.NodeIDs())
	assert.Empty(t, sub.Edges)
}

func TestListNodes_Filters(t *testing.T) {
	a := newTestAPI(t, nil)
	a.createNode(t, "concept", "Authentication")
	a.createNode(t, "entity", "Session token")
	a.createNode(t, "concept", "Caching")

	_, env := a.do(t, http.MethodGet, "/api/knowledge/nodes?node_type=concept", nil, nil)
	nodes := decode[map[string][]graph.Node](t, env.Data)["nodes"]
	assert.Len(t, nodes, 2)

	_, env = a.do(t, http.MethodGet, "/api/knowledge/nodes?query=AUTH", nil, nil)
	nodes = decode[map[string][]graph.Node](t, env.Data)["nodes"]
	require.Len(t, nodes, 1)
	assert.Equal(t, "Authentication", nodes[0].Title)

	_, env = a.do(t, http.MethodGet, "/api/knowledge/nodes?limit=1", nil, nil)
	nodes = decode[map[string][]graph.Node](t, env.Data)["nodes"]
	assert.Len(t, nodes, 1)
}

func TestListNodes_EmptyIsArray(t *testing.T) {
	a := newTestAPI(t, nil)
	leaf := a.createNode(t, "concept", "Leaf")

	for _, path := range []string{
		"/api/knowledge/nodes?query=nothing",
		fmt.Sprintf("/api/knowledge/nodes/%d/children", leaf.ID),
	} {
		status, env := a.do(t, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, status, path)
		assert.JSONEq(t, `{"nodes":[]}`, string(env.Data), path)
	}
}

func TestConnectionsAndChildren(t *testing.T) {
	a := newTestAPI(t, nil)
	parent := a.createNode(t, "concept", "Security")
	a1 := a.createNode(t, "concept", "Auth")
	tok := a.createNode(t, "entity", "Token")

	status, env := a.do(t, http.MethodPost, "/api/knowledge/nodes",
		map[string]any{"title": "OAuth", "parent_id": parent.ID}, nil)
	require.Equal(t, http.StatusCreated, status)
	child := decode[graph.Node](t, env.Data)
	assert.Equal(t, graph.DefaultNodeType, child.Type)

	_, env = a.do(t, http.MethodGet, fmt.Sprintf("/api/knowledge/nodes/%d/children", parent.ID), nil, nil)
	children := decode[map[string][]graph.Node](t, env.Data)["nodes"]
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	status, _ = a.do(t, http.MethodPost, "/api/knowledge/connect", map[string]any{
		"source_id": a1.ID, "target_id": tok.ID, "relationship": "uses",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	_, env = a.do(t, http.MethodGet, fmt.Sprintf("/api/knowledge/nodes/%d/connections", tok.ID), nil, nil)
	resp := decode[connectionsResponse](t, env.Data)
	assert.Equal(t, tok.ID, resp.Node.ID)
	require.Len(t, resp.Connections, 1)
	assert.Equal(t, graph.DirectionIncoming, resp.Connections[0].Direction)
	assert.Equal(t, a1.ID, resp.Connections[0].Node.ID)

	_, env = a.do(t, http.MethodGet, fmt.Sprintf("/api/knowledge/nodes/%d/connections?direction=outgoing", tok.ID), nil, nil)
	resp = decode[connectionsResponse](t, env.Data)
	assert.Empty(t, resp.Connections)

	status, env = a.do(t, http.MethodGet, fmt.Sprintf("/api/knowledge/nodes/%d/connections?direction=sideways", tok.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestConnect_BidirectionalAndDeleteEdge(t *testing.T) {
	a := newTestAPI(t, nil)
	x := a.createNode(t, "concept", "X")
	y := a.createNode(t, "concept", "Y")

	_, env := a.do(t, http.MethodPost, "/api/knowledge/connect", map[string]any{
		"source_id": x.ID, "target_id": y.ID, "relationship": "related_to", "bidirectional": true,
	}, nil)
	edges := decode[map[string][]graph.Edge](t, env.Data)["edges"]
	require.Len(t, edges, 2)

	status, _ := a.do(t, http.MethodDelete, fmt.Sprintf("/api/knowledge/edges/%d", edges[0].ID), nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = a.do(t, http.MethodDelete, fmt.Sprintf("/api/knowledge/edges/%d", edges[0].ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestConnectEntities_ReusesProxies(t *testing.T) {
	a := newTestAPI(t, nil)
	n := a.createNode(t, "concept", "Auth")

	body := map[string]any{
		"source_type": "node", "source_id": n.ID,
		"target_type": "memory", "target_id": 42,
		"relationship": "documented_in",
	}
	status, env := a.do(t, http.MethodPost, "/api/knowledge/connect-entities", body, nil)
	require.Equal(t, http.StatusCreated, status)
	first := decode[linker.Result](t, env.Data)
	assert.Equal(t, 1, first.CreatedProxies)
	assert.Equal(t, graph.TypeMemoryRef, first.Target.Type)
	assert.Equal(t, "memory:42", first.Target.RefKey)

	_, env = a.do(t, http.MethodPost, "/api/knowledge/connect-entities", body, nil)
	second := decode[linker.Result](t, env.Data)
	assert.Equal(t, 0, second.CreatedProxies)
	assert.Equal(t, first.Target.ID, second.Target.ID)

	body["target_type"] = "spaceship"
	status, env = a.do(t, http.MethodPost, "/api/knowledge/connect-entities", body, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestStats(t *testing.T) {
	a := newTestAPI(t, nil)
	a.createNode(t, "concept", "A")
	a.createNode(t, "entity", "B")

	status, env := a.do(t, http.MethodGet, "/api/knowledge/stats", nil, nil)
	require.Equal(t, http.StatusOK, status)
	stats := decode[graph.Stats](t, env.Data)
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, 1, stats.NodesByType[graph.TypeConcept])
}

// ─── Layout ──────────────────────────────────────────────────────────────────

func TestGetLayout(t *testing.T) {
	a := newTestAPI(t, nil)
	x := a.createNode(t, "concept", "X")
	y := a.createNode(t, "concept", "Y")
	a.do(t, http.MethodPost, "/api/knowledge/connect", map[string]any{
		"source_id": x.ID, "target_id": y.ID, "relationship": "uses",
	}, nil)

	status, env := a.do(t, http.MethodGet, "/api/knowledge/graph/layout?width=400&height=300&iterations=20", nil, nil)
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	res := decode[layout.Result](t, env.Data)
	require.Len(t, res.Nodes, 2)
	require.Len(t, res.Edges, 1)
	for _, n := range res.Nodes {
		assert.GreaterOrEqual(t, n.X, n.Radius)
		assert.LessOrEqual(t, n.X, 400-n.Radius)
		assert.GreaterOrEqual(t, n.Y, n.Radius)
		assert.LessOrEqual(t, n.Y, 300-n.Radius)
	}

	_, again := a.do(t, http.MethodGet, "/api/knowledge/graph/layout?width=400&height=300&iterations=20", nil, nil)
	assert.JSONEq(t, string(env.Data), string(again.Data), "layout must be deterministic")

	status, env = a.do(t, http.MethodGet, "/api/knowledge/graph/layout?width=10", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

// ─── Auth ────────────────────────────────────────────────────────────────────

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	a := newTestAPI(t, func(c *config.Config) {
		c.Auth = config.AuthConfig{
			APIKeys:    []string{"key-1"},
			JWTSecret:  secret,
			JWTIssuer:  "knowgraph",
			BasicUsers: map[string]string{"ada": string(hash)},
		}
	})

	sign := func(key, issuer string, exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ada",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
		}})
		s, err := tok.SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	basic := func(user, pass string) http.Header {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth(user, pass)
		return req.Header
	}
	hour := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header http.Header
		status int
	}{
		{"no credentials", nil, http.StatusUnauthorized},
		{"api key", http.Header{"X-Api-Key": {"key-1"}}, http.StatusOK},
		{"wrong api key", http.Header{"X-Api-Key": {"key-2"}}, http.StatusUnauthorized},
		{"jwt", http.Header{"Authorization": {"Bearer " + sign(secret, "knowgraph", hour)}}, http.StatusOK},
		{"jwt wrong key", http.Header{"Authorization": {"Bearer " + sign("other", "knowgraph", hour)}}, http.StatusUnauthorized},
		{"jwt wrong issuer", http.Header{"Authorization": {"Bearer " + sign(secret, "someone", hour)}}, http.StatusUnauthorized},
		{"jwt expired", http.Header{"Authorization": {"Bearer " + sign(secret, "knowgraph", time.Now().Add(-time.Hour))}}, http.StatusUnauthorized},
		{"basic", basic("ada", "hunter2"), http.StatusOK},
		{"basic wrong password", basic("ada", "nope"), http.StatusUnauthorized},
		{"basic unknown user", basic("bob", "hunter2"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := a.do(t, http.MethodGet, "/api/knowledge/nodes", nil, tt.header)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusUnauthorized {
				require.NotNil(t, env.Error)
				assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
			}
		})
	}

	// Health stays public.
	status, _ := a.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthenticator_DisabledWithoutCredentials(t *testing.T) {
	a := NewAuthenticator(config.AuthConfig{APIKeys: []string{"  "}}, nil)
	assert.False(t, a.Enabled())

	called := false
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

// ─── Rate limiting & metrics ─────────────────────────────────────────────────

func TestRateLimit(t *testing.T) {
	a := newTestAPI(t, func(c *config.Config) {
		c.HTTP.RateLimit = 0.001
		c.HTTP.RateBurst = 2
	})

	for i := 0; i < 2; i++ {
		status, _ := a.do(t, http.MethodGet, "/api/knowledge/nodes", nil, nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, env := a.do(t, http.MethodGet, "/api/knowledge/nodes", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	// Health is outside the limited group.
	status, _ = a.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now := time.Now()
	assert.True(t, rl.allow("a", now))
	assert.False(t, rl.allow("a", now))

	later := now.Add(idleClientTTL + 2*time.Minute)
	assert.True(t, rl.allow("b", later))
	rl.mu.Lock()
	_, kept := rl.clients["a"]
	rl.mu.Unlock()
	assert.False(t, kept)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestAPI(t, nil)
	a.createNode(t, "concept", "A")
	a.do(t, http.MethodGet, "/api/knowledge/nodes/1", nil, nil)

	resp, err := a.srv.Client().Get(a.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "knowgraph_http_requests_total")
	assert.Contains(t, text, `route="/api/knowledge/nodes/{id}`)
	assert.NotContains(t, text, `route="/api/knowledge/nodes/1"`)
}

// ─── View sessions ───────────────────────────────────────────────────────────

func wsURL(a *testAPI, path string) string {
	return "ws" + strings.TrimPrefix(a.srv.URL, "http") + path
}

func readFrame(t *testing.T, conn *websocket.Conn) viewer.Outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out viewer.Outbound
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestView_SessionStreamsFrames(t *testing.T) {
	a := newTestAPI(t, nil)
	x := a.createNode(t, "concept", "X")
	a.createNode(t, "concept", "Y")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(a, "/api/knowledge/ws?width=400&height=300"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	first := readFrame(t, conn)
	assert.Equal(t, "frame", first.Type)
	assert.NotEmpty(t, first.SessionID)
	require.NotNil(t, first.Frame)
	assert.Len(t, first.Frame.Nodes, 2)

	require.NoError(t, conn.WriteJSON(viewer.Message{Type: viewer.MsgSelect, NodeID: x.ID}))
	var selected bool
	for i := 0; i < 50 && !selected; i++ {
		out := readFrame(t, conn)
		selected = out.Frame != nil && out.Frame.Selected == x.ID
	}
	assert.True(t, selected, "a frame with the selection should arrive")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "teleport"}))
	var gotError bool
	for i := 0; i < 50 && !gotError; i++ {
		gotError = readFrame(t, conn).Type == "error"
	}
	assert.True(t, gotError)
}

func TestView_SessionCapAndBadRequest(t *testing.T) {
	a := newTestAPI(t, func(c *config.Config) { c.Viewer.MaxSessions = 1 })
	a.createNode(t, "concept", "X")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(a, "/api/knowledge/ws"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(a, "/api/knowledge/ws"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(a, "/api/knowledge/ws?depth=x"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ─── Server ──────────────────────────────────────────────────────────────────

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Store.DataDir = t.TempDir()
	cfg.HTTP.Addr = "127.0.0.1:0"

	deps, cleanup, err := server.Open(cfg, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(deps, cfg).Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
