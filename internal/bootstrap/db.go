package bootstrap

import (
	"github.com/charmbracelet/log"

	"github.com/cloudmap/cloudmap-backend/config"
	"github.com/cloudmap/cloudmap-backend/internal/graphdb"
)

// NewGraphDB builds the lazily connecting Neo4j manager from config.
// Nothing is dialed until the first Get.
func NewGraphDB(cfg config.Neo4jConfig, logger *log.Logger) *graphdb.Manager {
	policy := graphdb.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.ConnectAttempts
	policy.Delay = cfg.ConnectDelay

	return graphdb.NewManager(
		graphdb.Settings{
			URI:      cfg.URI,
			Username: cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		},
		graphdb.WithRetryPolicy(policy),
		graphdb.WithLogger(logger.With("component", "neo4j")),
	)
}
