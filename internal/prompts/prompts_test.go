package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if len(r.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(r.Messages))
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", r.Messages[0].Content)
	}
	return tc.Text
}

func TestExplorePrompt(t *testing.T) {
	p := NewExplorePrompt()
	if p.Definition().Name != "graph-explore" {
		t.Errorf("name = %q", p.Definition().Name)
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"topic": "authentication", "depth": "3"}
	r, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := promptText(t, r)
	for _, want := range []string{`"authentication"`, "knowledge_search_nodes", "depth 3"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
}

func TestExplorePrompt_DefaultDepthAndMissingTopic(t *testing.T) {
	p := NewExplorePrompt()

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"topic": "billing"}
	r, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(promptText(t, r), "depth 2") {
		t.Error("default depth should be 2")
	}

	if _, err := p.Handle(context.Background(), mcp.GetPromptRequest{}); err == nil {
		t.Error("missing topic should fail")
	}
}

func TestStatusPrompt(t *testing.T) {
	p := NewStatusPrompt()
	if p.Definition().Name != "graph-status" {
		t.Errorf("name = %q", p.Definition().Name)
	}
	r, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(promptText(t, r), "knowgraph://graph/stats") {
		t.Error("status prompt should point at the stats resource")
	}
}
