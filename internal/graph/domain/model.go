package domain

// DefaultLabel is used for nodes that carry no label at all.
const DefaultLabel = "Node"

// Property keys the frontend and the exporters understand.
const (
	PropName       = "name"
	PropID         = "id"
	PropIsRisky    = "isRisky"
	PropIsExternal = "isExternal"
)

// Properties is an open property map. Values are whatever the driver decoded:
// string, int64, float64, bool, []any, map[string]any, temporal and spatial types.
type Properties map[string]any

// Flag reads a boolean property, treating absent or non-bool values as false.
func (p Properties) Flag(key string) bool {
	v, ok := p[key].(bool)
	return ok && v
}

// String reads a string property.
func (p Properties) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok && v != ""
}

// Node is a graph node as served to the visualization.
type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Properties Properties `json:"properties"`
}

// DisplayName is the name shown for the node: name, then id property, then element id.
func (n Node) DisplayName() string {
	if s, ok := n.Properties.String(PropName); ok {
		return s
	}
	if s, ok := n.Properties.String(PropID); ok {
		return s
	}
	return n.ID
}

// Edge is a directed relationship between two nodes, referenced by element id.
type Edge struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
}

// Graph is the full response body of the graph endpoint.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph returns an empty graph that serializes as {"nodes":[],"edges":[]}.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}
