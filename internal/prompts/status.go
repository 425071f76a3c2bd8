package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the graph-status MCP prompt.
// It instructs the AI to read and present the graph statistics.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("graph-status",
		mcp.WithPromptDescription(
			"Check the state of the knowledge graph: "+
				"how many nodes and connections it holds and how they break down by type.",
		),
	)
}

// Handle processes the graph-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Knowledge Graph Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please read the `knowgraph://graph/stats` resource.\n\n" +
						"Then:\n" +
						"1. Show node and connection totals in a compact table\n" +
						"2. Break nodes down by type, listing reference types separately\n" +
						"3. Flag anything unusual, like many nodes with no connections or custom types\n" +
						"4. Suggest one or two next steps for growing or tidying the graph",
				),
			},
		},
	}, nil
}
