// Package seed resets the graph database to the fixed sample graph used for
// local development and demos.
package seed

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/cloudmap/cloudmap-backend/internal/graph/domain"
	"github.com/cloudmap/cloudmap-backend/internal/graph/repository"
)

// ClearQuery removes every node together with its relationships.
const ClearQuery = "MATCH (n) DETACH DELETE n"

// Statement is one parameterized Cypher statement.
type Statement struct {
	Query  string
	Params map[string]any
}

// Statements returns the clear statement followed by one CREATE per node
// and one MATCH/MATCH/CREATE per relationship.
func Statements() ([]Statement, error) {
	nodes := Nodes()
	rels := Relationships()
	stmts := make([]Statement, 0, 1+len(nodes)+len(rels))
	stmts = append(stmts, Statement{Query: ClearQuery})

	for _, n := range nodes {
		query, params, err := gocypher.NewQueryBuilder().
			Create(gocypher.N("n", n.Label).WithProperties(n.Props)).
			Build()
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", n.Key, err)
		}
		stmts = append(stmts, Statement{Query: query, Params: params})
	}

	for _, r := range rels {
		fromLabel, ok := labelOf(nodes, r.From)
		if !ok {
			return nil, fmt.Errorf("relationship from unknown node %q", r.From)
		}
		toLabel, ok := labelOf(nodes, r.To)
		if !ok {
			return nil, fmt.Errorf("relationship to unknown node %q", r.To)
		}

		query, params, err := gocypher.NewQueryBuilder().
			Match(gocypher.N("a", fromLabel).WithProperties(map[string]interface{}{domain.PropID: r.From})).
			Match(gocypher.N("b", toLabel).WithProperties(map[string]interface{}{domain.PropID: r.To})).
			Create(
				gocypher.N("a", ""),
				gocypher.R("r", ConnectsTo).To().WithProperties(r.Props),
				gocypher.N("b", ""),
			).
			Build()
		if err != nil {
			return nil, fmt.Errorf("build relationship %s->%s: %w", r.From, r.To, err)
		}
		stmts = append(stmts, Statement{Query: query, Params: params})
	}

	return stmts, nil
}

type Seeder struct {
	source repository.DriverSource
	logger *log.Logger
}

func NewSeeder(source repository.DriverSource, logger *log.Logger) *Seeder {
	return &Seeder{source: source, logger: logger}
}

// Run wipes the database and writes the sample graph in one write
// transaction, so a failure leaves the previous data in place.
func (s *Seeder) Run(ctx context.Context) error {
	stmts, err := Statements()
	if err != nil {
		return err
	}

	driver, err := s.source.Get(ctx)
	if err != nil {
		return err
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.source.Database(),
	})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for i, st := range stmts {
			s.logger.Debug("seed statement", "n", i, "query", st.Query)
			result, err := tx.Run(ctx, st.Query, st.Params)
			if err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("seed graph: %w", err)
	}

	s.logger.Info("Seeded sample graph", "nodes", len(Nodes()), "relationships", len(Relationships()))
	return nil
}
