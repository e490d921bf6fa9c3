package seed

import "github.com/cloudmap/cloudmap-backend/internal/graph/domain"

// Relationship type used by the sample graph.
const ConnectsTo = "CONNECTS_TO"

// NodeFixture is one node of the sample graph. Key is the value of its
// "id" property, which relationships refer to.
type NodeFixture struct {
	Key   string
	Label string
	Props map[string]any
}

// RelFixture is a directed CONNECTS_TO relationship between two fixtures.
type RelFixture struct {
	From  string
	To    string
	Props map[string]any
}

func newNode(label, key string, flags ...string) NodeFixture {
	props := map[string]any{domain.PropID: key, domain.PropName: key}
	for _, f := range flags {
		props[f] = true
	}
	return NodeFixture{Key: key, Label: label, Props: props}
}

// Nodes returns the eight sample nodes.
func Nodes() []NodeFixture {
	return []NodeFixture{
		newNode("Task", "Task-01"),
		newNode("Task", "Task-02"),
		newNode("Task", "DynamoDB"),
		newNode("Task", "Task-04"),
		newNode("Cluster", "Cluster-Dev"),
		newNode("Cluster", "Cluster-Prod", domain.PropIsRisky),
		newNode("Endpoint", "Vercel-Dev", domain.PropIsExternal),
		newNode("Endpoint", "Vercel-Prod", domain.PropIsExternal, domain.PropIsRisky),
	}
}

// Relationships returns the seven sample relationships.
func Relationships() []RelFixture {
	risky := map[string]any{domain.PropIsRisky: true}
	return []RelFixture{
		{From: "Task-01", To: "Cluster-Prod", Props: risky},
		{From: "Task-01", To: "Cluster-Dev"},
		{From: "Task-02", To: "Task-01"},
		{From: "DynamoDB", To: "Task-02"},
		{From: "Task-04", To: "DynamoDB"},
		{From: "Cluster-Prod", To: "Vercel-Prod", Props: risky},
		{From: "Cluster-Dev", To: "Vercel-Dev"},
	}
}

// labelOf finds the label of the fixture node with the given key.
func labelOf(nodes []NodeFixture, key string) (string, bool) {
	for _, n := range nodes {
		if n.Key == key {
			return n.Label, true
		}
	}
	return "", false
}
