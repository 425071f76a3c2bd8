package graph

import "strings"

// NodeType tags a node. The set below is what the engine knows how to style;
// other values are stored as-is and rendered with DefaultStyle.
type NodeType string

const (
	TypeConcept         NodeType = "concept"
	TypeEntity          NodeType = "entity"
	TypeTopic           NodeType = "topic"
	TypeReference       NodeType = "reference"
	TypeMemoryRef       NodeType = "memory_ref"
	TypeArtifactRef     NodeType = "artifact_ref"
	TypeProjectRef      NodeType = "project_ref"
	TypeInstructionRef  NodeType = "instruction_ref"
	TypeConversationRef NodeType = "conversation_ref"
	TypeIdea            NodeType = "idea"
	TypeQuestion        NodeType = "question"
)

// DefaultNodeType is used when a node is created without a type.
const DefaultNodeType = TypeConcept

// Style is how a node type is drawn.
type Style struct {
	Color string `json:"color"`
	Shape string `json:"shape"`
}

// DefaultStyle applies to unknown node types.
var DefaultStyle = Style{Color: "#9e9e9e", Shape: "circle"}

var styles = map[NodeType]Style{
	TypeConcept:         {Color: "#4f86f7", Shape: "circle"},
	TypeEntity:          {Color: "#2ebd85", Shape: "circle"},
	TypeTopic:           {Color: "#f5a623", Shape: "circle"},
	TypeReference:       {Color: "#8e6cef", Shape: "square"},
	TypeMemoryRef:       {Color: "#e85d75", Shape: "diamond"},
	TypeArtifactRef:     {Color: "#00a3bf", Shape: "diamond"},
	TypeProjectRef:      {Color: "#6b8e23", Shape: "diamond"},
	TypeInstructionRef:  {Color: "#d4a017", Shape: "diamond"},
	TypeConversationRef: {Color: "#c2185b", Shape: "diamond"},
	TypeIdea:            {Color: "#ffd54f", Shape: "circle"},
	TypeQuestion:        {Color: "#ff7043", Shape: "circle"},
}

// KnownNodeTypes lists the styled node types in declaration order.
func KnownNodeTypes() []NodeType {
	return []NodeType{
		TypeConcept, TypeEntity, TypeTopic, TypeReference,
		TypeMemoryRef, TypeArtifactRef, TypeProjectRef, TypeInstructionRef, TypeConversationRef,
		TypeIdea, TypeQuestion,
	}
}

// Known reports whether t has a dedicated style.
func (t NodeType) Known() bool {
	_, ok := styles[t]
	return ok
}

// Style returns the display style for t, falling back to DefaultStyle.
func (t NodeType) Style() Style {
	if s, ok := styles[t]; ok {
		return s
	}
	return DefaultStyle
}

// IsRef reports whether t is one of the proxy types that shadow foreign
// entities.
func (t NodeType) IsRef() bool {
	switch t {
	case TypeMemoryRef, TypeArtifactRef, TypeProjectRef, TypeInstructionRef, TypeConversationRef:
		return true
	}
	return false
}

// normalizeNodeType trims input and applies the default for empty values.
func normalizeNodeType(t NodeType) NodeType {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return DefaultNodeType
	}
	return NodeType(s)
}
