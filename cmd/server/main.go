package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/scid-pd-engine/internal/api"
	"github.com/scid-pd-engine/internal/config"
	"github.com/scid-pd-engine/internal/logging"
	"github.com/scid-pd-engine/internal/setup"
)

func main() {
	configManager, err := config.NewManagerFromFile(os.Getenv("SCID_PD_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.New(cfg.Logging)

	if configManager.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	components, err := setup.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize engine")
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.WithError(err).Error("Failed to release storage")
		}
	}()

	server := api.NewServer(cfg.Server, api.Dependencies{
		Catalog:  components.Catalog,
		Sessions: components.Sessions,
		Profiles: components.Store,
		Reports:  components.Reports,
		Gatherer: components.Registry,
		Logger:   logger,
		Health:   components.Health,
	})

	logger.WithField("environment", cfg.Environment).Info("Starting SCID-PD assessment server")
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}
	logger.Info("Server stopped")
}
