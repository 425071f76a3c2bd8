// Package prompts implements MCP prompt handlers for the knowledge graph.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExplorePrompt handles the graph-explore MCP prompt.
// It guides the AI through searching the graph and walking a neighborhood.
type ExplorePrompt struct{}

// NewExplorePrompt creates an ExplorePrompt.
func NewExplorePrompt() *ExplorePrompt {
	return &ExplorePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ExplorePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("graph-explore",
		mcp.WithPromptDescription(
			"Explore what the knowledge graph knows about a topic: "+
				"find matching nodes, walk their neighborhood and summarize the connections.",
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What to look for, e.g. 'authentication'"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("depth",
			mcp.ArgumentDescription("How many hops to follow from the best match (1-5). Default: 2"),
		),
	)
}

// Handle processes the graph-explore prompt request.
func (p *ExplorePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	if topic == "" {
		return nil, fmt.Errorf("argument 'topic' is required")
	}

	depth := "2"
	if d, ok := req.Params.Arguments["depth"]; ok && d != "" {
		depth = d
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Explore the knowledge graph: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to understand what our knowledge graph says about %q.\n\n"+
						"1. Call `knowledge_search_nodes` with query %q and pick the most relevant node\n"+
						"2. Call `knowledge_get_graph` with that node as `center_id` and depth %s\n"+
						"3. For the most connected nodes, call `knowledge_get_connections` to see relationship labels and directions\n"+
						"4. Summarize the cluster: key concepts, how they relate, and any reference nodes pointing to memories, artifacts or conversations\n"+
						"5. Point out gaps: isolated nodes, missing relationships, or duplicates worth merging\n\n"+
						"If nothing matches, say so and suggest nodes I could create with `knowledge_create_node`.",
					topic, topic, depth,
				)),
			},
		},
	}, nil
}
