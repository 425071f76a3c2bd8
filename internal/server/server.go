// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/builder"
	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/graphtools"
	"github.com/HendryAvila/knowgraph/internal/linker"
	"github.com/HendryAvila/knowgraph/internal/metrics"
	"github.com/HendryAvila/knowgraph/internal/prompts"
	"github.com/HendryAvila/knowgraph/internal/resources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Deps are the shared components behind every transport.
type Deps struct {
	Store   *graph.Store
	Builder *builder.Builder
	Linker  *linker.Linker
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// Open creates the shared components from cfg. The returned cleanup closes
// the graph store; it is always non-nil and safe to call on error paths.
func Open(cfg *config.Config, logger *zap.Logger, m *metrics.Collector) (*Deps, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := graph.New(cfg.GraphConfig())
	if err != nil {
		return nil, noop, fmt.Errorf("opening graph store: %w", err)
	}
	if m != nil {
		store.SetObserver(m.GraphObserver())
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("graph store close", zap.Error(err))
		}
	}

	return &Deps{
		Store:   store,
		Builder: builder.New(store, store.PageSize()),
		Linker:  linker.New(store, logger.Named("linker")),
		Metrics: m,
		Logger:  logger,
	}, cleanup, nil
}

// New creates and configures the MCP server with all tools, prompts and
// resources registered.
//
// The returned cleanup function closes the graph store and must be called
// on shutdown (typically via defer).
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	deps, cleanup, err := Open(cfg, logger, nil)
	if err != nil {
		return nil, cleanup, err
	}
	return NewWithDeps(deps, cfg), cleanup, nil
}

// NewWithDeps builds the MCP server over existing components.
func NewWithDeps(deps *Deps, cfg *config.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"knowgraph",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerGraphTools(s, deps, cfg)

	// --- Register prompts ---

	explorePrompt := prompts.NewExplorePrompt()
	s.AddPrompt(explorePrompt.Definition(), explorePrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(deps.Store)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)
	s.AddResource(resourceHandler.NodeTypesResource(), resourceHandler.HandleNodeTypes)

	return s
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// registerGraphTools registers the knowledge graph MCP tools.
func registerGraphTools(s *server.MCPServer, deps *Deps, cfg *config.Config) {
	// --- Nodes ---
	createNode := graphtools.NewCreateNodeTool(deps.Store)
	s.AddTool(createNode.Definition(), createNode.Handle)

	deleteNode := graphtools.NewDeleteNodeTool(deps.Store)
	s.AddTool(deleteNode.Definition(), deleteNode.Handle)

	searchNodes := graphtools.NewSearchNodesTool(deps.Store)
	s.AddTool(searchNodes.Definition(), searchNodes.Handle)

	// --- Connections ---
	connect := graphtools.NewConnectTool(deps.Store)
	s.AddTool(connect.Definition(), connect.Handle)

	connectEntities := graphtools.NewConnectEntitiesTool(deps.Linker)
	s.AddTool(connectEntities.Definition(), connectEntities.Handle)

	getConnections := graphtools.NewGetConnectionsTool(deps.Store)
	s.AddTool(getConnections.Definition(), getConnections.Handle)

	deleteConnection := graphtools.NewDeleteConnectionTool(deps.Store)
	s.AddTool(deleteConnection.Definition(), deleteConnection.Handle)

	// --- Graph & layout ---
	getGraph := graphtools.NewGetGraphTool(deps.Builder)
	s.AddTool(getGraph.Definition(), getGraph.Handle)

	layoutTool := graphtools.NewLayoutTool(deps.Builder, cfg.Layout, deps.Metrics)
	s.AddTool(layoutTool.Definition(), layoutTool.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use knowgraph effectively.
func serverInstructions() string {
	return `You have access to knowgraph, a knowledge graph shared between agents and people.

## WHAT IT HOLDS

Typed nodes (concept, entity, topic, reference, idea, question, or any custom type)
connected by labeled, directed edges. Reference nodes (memory_ref, artifact_ref,
project_ref, instruction_ref, conversation_ref) stand in for entities that live in
other systems.

## WHEN TO USE IT

- Before answering questions about the domain, search for existing nodes with
  knowledge_search_nodes and walk their neighborhood with knowledge_get_graph
  (center_id + depth).
- When you learn a durable fact, create a node with knowledge_create_node and
  connect it with knowledge_connect. Reuse existing nodes instead of duplicating.
- To tie a memory, artifact, project, instruction or conversation into the graph,
  use knowledge_connect_entities. It creates the reference node on first use and
  reuses it afterwards.

## RULES

- Titles are short labels; put detail in content.
- Relationship labels are snake_case verbs: depends_on, part_of, explains.
- Deleting a node removes all of its connections. Ask before deleting.
- knowledge_layout returns 2-D positions for display only; they are never stored.`
}
