// knowgraph: a typed knowledge graph with force-directed layout.
//
// The graph is served to AI tools over MCP and to browsers and scripts over
// HTTP. The same SQLite store backs both.
//
// Usage:
//
//	knowgraph serve     # MCP server (stdio transport)
//	knowgraph http      # HTTP API, WebSocket viewer, /metrics
//	knowgraph nodes     # list nodes
//	knowgraph layout    # print a computed layout
//	knowgraph stats     # graph statistics
//	knowgraph version
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
