package domain

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record keys returned by the graph query.
const (
	KeySource       = "n"
	KeyRelationship = "r"
	KeyTarget       = "m"
)

// FormatNode converts a driver node: first label wins, "Node" when unlabeled.
func FormatNode(n neo4j.Node) Node {
	label := DefaultLabel
	if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	return Node{
		ID:         n.ElementId,
		Label:      label,
		Properties: copyProps(n.Props),
	}
}

// FormatEdge converts a driver relationship. Source and target are the
// element ids of the start and end nodes.
func FormatEdge(r neo4j.Relationship) Edge {
	return Edge{
		ID:         r.ElementId,
		Source:     r.StartElementId,
		Target:     r.EndElementId,
		Type:       r.Type,
		Properties: copyProps(r.Props),
	}
}

// Flatten folds rows of (n, r, m) into unique nodes and an edge list.
//
// Nodes are keyed by element id and keep the position where they were first
// seen; a later row carrying the same node overwrites its data. Every row
// with a relationship adds an edge, duplicates included. Edge endpoints are
// not checked against the node list.
func Flatten(records []*neo4j.Record) *Graph {
	g := NewGraph()
	index := make(map[string]int)

	upsert := func(n neo4j.Node) {
		node := FormatNode(n)
		if i, ok := index[node.ID]; ok {
			g.Nodes[i] = node
			return
		}
		index[node.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, node)
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		if n, ok := nodeAt(rec, KeySource); ok {
			upsert(n)
		}
		if m, ok := nodeAt(rec, KeyTarget); ok {
			upsert(m)
		}
		if r, ok := relationshipAt(rec, KeyRelationship); ok {
			g.Edges = append(g.Edges, FormatEdge(r))
		}
	}

	return g
}

func nodeAt(rec *neo4j.Record, key string) (neo4j.Node, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return neo4j.Node{}, false
	}
	n, ok := v.(neo4j.Node)
	return n, ok
}

func relationshipAt(rec *neo4j.Record, key string) (neo4j.Relationship, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return neo4j.Relationship{}, false
	}
	r, ok := v.(neo4j.Relationship)
	return r, ok
}

func copyProps(src map[string]any) Properties {
	out := make(Properties, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
