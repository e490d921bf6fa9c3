package export

import (
	"bytes"
	"fmt"

	"github.com/cloudmap/cloudmap-backend/internal/graph/domain"
)

const (
	riskyFill   = "#fde2e1"
	riskyColor  = "#d93025"
	defaultFill = "#eef6ff"
)

// ToDOT renders the graph as a GraphViz DOT file. Nodes are boxes named by
// their display name; risky nodes and edges are red, external nodes dashed.
func ToDOT(g *domain.Graph, title string) []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];\n")
	if title != "" {
		fmt.Fprintf(&buf, "  labelloc=\"t\"; label=%q; fontname=\"Helvetica\";\n", title)
	}

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, nodeAttrs(n))
	}

	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, edgeAttrs(e))
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

func nodeAttrs(n domain.Node) string {
	style := "rounded,filled"
	if n.Properties.Flag(domain.PropIsExternal) {
		style = "rounded,filled,dashed"
	}

	fill, color := defaultFill, "black"
	if n.Properties.Flag(domain.PropIsRisky) {
		fill, color = riskyFill, riskyColor
	}

	return fmt.Sprintf("label=%q, tooltip=%q, style=%q, fillcolor=%q, color=%q",
		n.DisplayName(), n.Label, style, fill, color)
}

func edgeAttrs(e domain.Edge) string {
	attrs := fmt.Sprintf("label=%q, tooltip=%q", e.Type, e.ID)
	if e.Properties.Flag(domain.PropIsRisky) {
		attrs += fmt.Sprintf(", color=%q, fontcolor=%q, penwidth=2", riskyColor, riskyColor)
	}
	return attrs
}
