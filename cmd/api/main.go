package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudmap/cloudmap-backend/config"
	"github.com/cloudmap/cloudmap-backend/internal/bootstrap"
	"github.com/cloudmap/cloudmap-backend/internal/graph/repository"
	"github.com/cloudmap/cloudmap-backend/internal/graph/service"
	"github.com/cloudmap/cloudmap-backend/internal/heartbeat"
	"github.com/cloudmap/cloudmap-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info").Fatal("Failed to load configuration", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := bootstrap.NewGraphDB(cfg.Neo4j, logger)
	graphSvc := service.NewGraphService(repository.NewGraphRepository(db))

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.CORS.Origins(),
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Logger:         logger,
		DB:             db,
		Graph:          graphSvc,
	})

	var beat *heartbeat.Scheduler
	if cfg.Heartbeat.Schedule != "" {
		beat = heartbeat.NewScheduler(db, logger.With("component", "heartbeat"))
		if err := beat.Start(cfg.Heartbeat.Schedule); err != nil {
			logger.Fatal("Failed to start heartbeat", "schedule", cfg.Heartbeat.Schedule, "err", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port, "env", cfg.App.Environment, "origins", cfg.CORS.Origins())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", "err", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "err", err)
	}
	if beat != nil {
		beat.Stop()
	}
	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close Neo4j driver", "err", err)
	}
}
