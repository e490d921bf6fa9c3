package service

import (
	"context"

	"github.com/cloudmap/cloudmap-backend/internal/graph/domain"
	"github.com/cloudmap/cloudmap-backend/internal/graph/export"
)

const dotTitle = "Cluster map"

// GraphReader loads the full graph. *repository.GraphRepository implements it.
type GraphReader interface {
	FetchGraph(ctx context.Context) (*domain.Graph, error)
}

// GraphService serves the graph in the formats the API exposes
type GraphService struct {
	repo      GraphReader
	renderSVG func(ctx context.Context, dot []byte) ([]byte, error)
}

// NewGraphService creates a new GraphService
func NewGraphService(repo GraphReader) *GraphService {
	return &GraphService{
		repo:      repo,
		renderSVG: export.RenderSVG,
	}
}

// GetGraph returns the whole graph, rebuilt from the database on every call
func (s *GraphService) GetGraph(ctx context.Context) (*domain.Graph, error) {
	return s.repo.FetchGraph(ctx)
}

// GetDOT returns the graph as a GraphViz DOT document
func (s *GraphService) GetDOT(ctx context.Context) ([]byte, error) {
	g, err := s.repo.FetchGraph(ctx)
	if err != nil {
		return nil, err
	}
	return export.ToDOT(g, dotTitle), nil
}

// GetSVG returns the graph laid out by Graphviz as SVG
func (s *GraphService) GetSVG(ctx context.Context) ([]byte, error) {
	dot, err := s.GetDOT(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderSVG(ctx, dot)
}
