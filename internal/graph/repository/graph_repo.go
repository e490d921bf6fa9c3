package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/cloudmap/cloudmap-backend/internal/graph/domain"
)

// GraphQuery returns every node paired with each of its outgoing
// relationships; nodes without any still appear once with r and m null.
const GraphQuery = "MATCH (n) OPTIONAL MATCH (n)-[r]->(m) RETURN n, r, m"

// DriverSource yields the shared driver. *graphdb.Manager implements it.
type DriverSource interface {
	Get(ctx context.Context) (neo4j.DriverWithContext, error)
	Database() string
}

// GraphRepository reads the whole graph from Neo4j
type GraphRepository struct {
	source DriverSource
}

// NewGraphRepository creates a new GraphRepository
func NewGraphRepository(source DriverSource) *GraphRepository {
	return &GraphRepository{source: source}
}

// FetchGraph runs GraphQuery in its own read session and flattens the rows.
// The session is closed before returning, on success and on error.
func (r *GraphRepository) FetchGraph(ctx context.Context) (*domain.Graph, error) {
	driver, err := r.source.Get(ctx)
	if err != nil {
		return nil, err
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.source.Database(),
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, GraphQuery, nil)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch graph: %w", err)
	}

	records, _ := out.([]*neo4j.Record)
	return domain.Flatten(records), nil
}
