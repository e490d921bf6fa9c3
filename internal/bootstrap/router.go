package bootstrap

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/cloudmap/cloudmap-backend/internal/api/http"
	"github.com/cloudmap/cloudmap-backend/internal/api/http/middleware"
	graphhttp "github.com/cloudmap/cloudmap-backend/internal/graph/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *log.Logger
	DB             httpapi.Pinger
	Graph          graphhttp.GraphProvider
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(CORSConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(middleware.NewLimiter(dep.RateLimitRPS, dep.RateLimitBurst)))

	graphhttp.New(dep.Graph).Register(api)

	return r
}

// CORSConfig allows the given origins with credentials, any method and any header.
func CORSConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
