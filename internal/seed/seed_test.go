package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudmap/cloudmap-backend/internal/graph/domain"
	"github.com/cloudmap/cloudmap-backend/internal/logging"
)

func TestFixture_Shape(t *testing.T) {
	nodes := Nodes()
	rels := Relationships()

	require.Len(t, nodes, 8)
	require.Len(t, rels, 7)

	byLabel := map[string]int{}
	for _, n := range nodes {
		byLabel[n.Label]++
	}
	assert.Equal(t, map[string]int{"Task": 4, "Cluster": 2, "Endpoint": 2}, byLabel)

	flagged := func(key, flag string) bool {
		for _, n := range nodes {
			if n.Key == key {
				return domain.Properties(n.Props).Flag(flag)
			}
		}
		t.Fatalf("no node %s", key)
		return false
	}
	assert.True(t, flagged("Cluster-Prod", domain.PropIsRisky))
	assert.False(t, flagged("Cluster-Dev", domain.PropIsRisky))
	assert.True(t, flagged("Vercel-Dev", domain.PropIsExternal))
	assert.False(t, flagged("Vercel-Dev", domain.PropIsRisky))
	assert.True(t, flagged("Vercel-Prod", domain.PropIsExternal))
	assert.True(t, flagged("Vercel-Prod", domain.PropIsRisky))

	risky := 0
	for _, r := range rels {
		_, okFrom := labelOf(nodes, r.From)
		_, okTo := labelOf(nodes, r.To)
		assert.True(t, okFrom && okTo, "%s -> %s", r.From, r.To)
		if domain.Properties(r.Props).Flag(domain.PropIsRisky) {
			risky++
		}
	}
	assert.Equal(t, 2, risky)
}

// seededRecords mimics what the graph query returns against the seeded
// database: one row per outgoing relationship, one bare row per sink node.
func seededRecords() []*neo4j.Record {
	nodes := map[string]neo4j.Node{}
	for _, n := range Nodes() {
		nodes[n.Key] = neo4j.Node{ElementId: "4:seed:" + n.Key, Labels: []string{n.Label}, Props: n.Props}
	}

	var records []*neo4j.Record
	for _, n := range Nodes() {
		out := 0
		for i, r := range Relationships() {
			if r.From != n.Key {
				continue
			}
			out++
			records = append(records, &neo4j.Record{
				Keys: []string{"n", "r", "m"},
				Values: []any{
					nodes[r.From],
					neo4j.Relationship{
						ElementId:      "5:seed:" + string(rune('a'+i)),
						StartElementId: nodes[r.From].ElementId,
						EndElementId:   nodes[r.To].ElementId,
						Type:           ConnectsTo,
						Props:          r.Props,
					},
					nodes[r.To],
				},
			})
		}
		if out == 0 {
			records = append(records, &neo4j.Record{Keys: []string{"n", "r", "m"}, Values: []any{nodes[n.Key], nil, nil}})
		}
	}
	return records
}

func TestSeededGraphFlattensToEightNodesSevenEdges(t *testing.T) {
	g := domain.Flatten(seededRecords())

	require.Len(t, g.Nodes, 8)
	require.Len(t, g.Edges, 7)

	for _, e := range g.Edges {
		assert.Equal(t, ConnectsTo, e.Type)
	}

	risky := 0
	for _, e := range g.Edges {
		if e.Properties.Flag(domain.PropIsRisky) {
			risky++
		}
	}
	assert.Equal(t, 2, risky)
}

func mentions(st Statement, s string) bool {
	return strings.Contains(st.Query, s) || strings.Contains(fmt.Sprint(st.Params), s)
}

func TestStatements(t *testing.T) {
	stmts, err := Statements()
	require.NoError(t, err)

	require.Len(t, stmts, 1+8+7)
	assert.Equal(t, ClearQuery, stmts[0].Query)

	for i, n := range Nodes() {
		st := stmts[1+i]
		assert.NotEmpty(t, st.Query)
		assert.True(t, mentions(st, n.Key), "node statement %d should carry %s", i, n.Key)
		assert.Contains(t, st.Query, n.Label)
	}

	for i, r := range Relationships() {
		st := stmts[9+i]
		assert.Contains(t, st.Query, ConnectsTo)
		assert.True(t, mentions(st, r.From), "relationship %d should match %s", i, r.From)
		assert.True(t, mentions(st, r.To), "relationship %d should match %s", i, r.To)
	}
}

type fakeResult struct {
	neo4j.ResultWithContext
}

func (fakeResult) Consume(context.Context) (neo4j.ResultSummary, error) { return nil, nil }

type fakeTx struct {
	neo4j.ManagedTransaction
	queries []string
	failAt  int
}

func (f *fakeTx) Run(_ context.Context, cypher string, _ map[string]any) (neo4j.ResultWithContext, error) {
	f.queries = append(f.queries, cypher)
	if f.failAt > 0 && len(f.queries) == f.failAt {
		return nil, errors.New("constraint violation")
	}
	return fakeResult{}, nil
}

type fakeSession struct {
	neo4j.SessionWithContext
	tx     *fakeTx
	closed int
}

func (f *fakeSession) ExecuteWrite(_ context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	return work(f.tx)
}

func (f *fakeSession) Close(context.Context) error {
	f.closed++
	return nil
}

type fakeDriver struct {
	neo4j.DriverWithContext
	session *fakeSession
	mode    neo4j.AccessMode
}

func (f *fakeDriver) NewSession(_ context.Context, cfg neo4j.SessionConfig) neo4j.SessionWithContext {
	f.mode = cfg.AccessMode
	return f.session
}

type fakeSource struct{ driver neo4j.DriverWithContext }

func (f fakeSource) Get(context.Context) (neo4j.DriverWithContext, error) { return f.driver, nil }
func (f fakeSource) Database() string                                    { return "" }

func TestSeeder_Run(t *testing.T) {
	tx := &fakeTx{}
	session := &fakeSession{tx: tx}
	driver := &fakeDriver{session: session}

	err := NewSeeder(fakeSource{driver}, logging.Discard()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, neo4j.AccessModeWrite, driver.mode)
	require.Len(t, tx.queries, 16)
	assert.Equal(t, ClearQuery, tx.queries[0])
	assert.Equal(t, 1, session.closed)
}

func TestSeeder_RunStopsOnError(t *testing.T) {
	tx := &fakeTx{failAt: 3}
	session := &fakeSession{tx: tx}

	err := NewSeeder(fakeSource{&fakeDriver{session: session}}, logging.Discard()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")
	assert.Len(t, tx.queries, 3)
	assert.Equal(t, 1, session.closed)
}
