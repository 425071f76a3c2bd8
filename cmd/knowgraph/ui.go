package main

import (
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

var (
	bold   = color.New(color.Bold)
	subtle = color.New(color.FgHiBlack)
)

// typeColor renders text in the display color of node type t.
func typeColor(t graph.NodeType) *color.Color {
	r, g, b, ok := parseHex(t.Style().Color)
	if !ok {
		return color.New(color.Reset)
	}
	return color.RGB(r, g, b)
}

// parseHex reads a "#rrggbb" color.
func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
