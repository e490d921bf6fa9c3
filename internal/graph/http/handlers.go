package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudmap/cloudmap-backend/internal/graph/domain"
	"github.com/cloudmap/cloudmap-backend/internal/graphdb"
	"github.com/cloudmap/cloudmap-backend/internal/logging"
)

// GraphProvider is what the handlers need from the graph service
type GraphProvider interface {
	GetGraph(ctx context.Context) (*domain.Graph, error)
	GetDOT(ctx context.Context) ([]byte, error)
	GetSVG(ctx context.Context) ([]byte, error)
}

type Handler struct {
	svc GraphProvider
}

func New(svc GraphProvider) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the graph routes on an /api/v1 group
func (h *Handler) Register(rg gin.IRouter) {
	rg.GET("/graph", h.GetGraph)
	rg.GET("/graph/dot", h.GetDOT)
	rg.GET("/graph/svg", h.GetSVG)
}

// GetGraph returns every node and relationship as {"nodes": [...], "edges": [...]}
func (h *Handler) GetGraph(c *gin.Context) {
	g, err := h.svc.GetGraph(c.Request.Context())
	if err != nil {
		h.fail(c, "get graph", err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetDOT returns the graph as GraphViz DOT source
func (h *Handler) GetDOT(c *gin.Context) {
	dot, err := h.svc.GetDOT(c.Request.Context())
	if err != nil {
		h.fail(c, "get graph dot", err)
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", dot)
}

// GetSVG returns the graph rendered as SVG
func (h *Handler) GetSVG(c *gin.Context) {
	svg, err := h.svc.GetSVG(c.Request.Context())
	if err != nil {
		h.fail(c, "get graph svg", err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// fail logs the cause and answers with a generic body; no partial graph is sent.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	logger := logging.FromContext(c.Request.Context())

	if errors.Is(err, graphdb.ErrUnavailable) || errors.Is(err, graphdb.ErrClosed) {
		logger.Error(op+" failed: database unavailable", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}

	logger.Error(op+" failed", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
