// Package api exposes the knowledge graph over HTTP: a JSON API under
// /api/knowledge, WebSocket view sessions, health and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/server"
	"github.com/HendryAvila/knowgraph/internal/viewer"
)

// NewRouter wires the middleware stack and every route. deps.Metrics and
// deps.Logger may be nil.
func NewRouter(deps *server.Deps, cfg *config.Config) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handler{
		store:   deps.Store,
		builder: deps.Builder,
		linker:  deps.Linker,
		layout:  cfg.Layout,
		viewers: viewer.NewManager(viewer.Options{
			FrameInterval: cfg.Viewer.FrameInterval,
			StepsPerFrame: cfg.Viewer.StepsPerFrame,
		}, cfg.Viewer.MaxSessions, logger, deps.Metrics),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin:      originChecker(cfg.HTTP.AllowedOrigins),
		},
		metrics: deps.Metrics,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger, deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, logger, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": server.Version,
		})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	auth := NewAuthenticator(cfg.Auth, logger)
	r.Route("/api/knowledge", func(r chi.Router) {
		if cfg.HTTP.RateLimit > 0 {
			r.Use(newRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst).Middleware)
		}
		r.Use(auth.Middleware)

		r.Get("/stats", h.GetStats)

		r.Route("/graph", func(r chi.Router) {
			r.Get("/", h.GetGraph)
			r.Get("/layout", h.GetLayout)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", h.ListNodes)
			r.Post("/", h.CreateNode)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetNode)
				r.Delete("/", h.DeleteNode)
				r.Get("/connections", h.GetConnections)
				r.Get("/children", h.GetChildren)
			})
		})

		r.Post("/connect", h.Connect)
		r.Post("/connect-entities", h.ConnectEntities)
		r.Delete("/edges/{id}", h.DeleteEdge)

		r.Get("/ws", h.View)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondStatus(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondStatus(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}

// originChecker accepts same-origin requests, requests without an Origin
// header, and origins on the allow list. "*" allows everything.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ─── Server ──────────────────────────────────────────────────────────────────

// Server is the HTTP front end.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer builds a Server listening on cfg.HTTP.Addr.
func NewServer(deps *server.Deps, cfg *config.Config) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      NewRouter(deps, cfg),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			ErrorLog:     zap.NewStdLog(logger),
		},
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully. View
// sessions are hijacked connections that Shutdown does not wait for; they
// end once in-flight requests have drained.
func (s *Server) Run(ctx context.Context) error {
	baseCtx, cancelSessions := context.WithCancel(context.Background())
	defer cancelSessions()
	s.srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
