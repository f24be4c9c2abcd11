package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/scid-pd-engine/internal/config"
	"github.com/scid-pd-engine/internal/logging"
	"github.com/scid-pd-engine/internal/mcp"
	"github.com/scid-pd-engine/internal/setup"
)

// stdout carries the MCP protocol, so every log line goes to stderr.
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	components, err := setup.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize engine")
	}
	defer components.Close()

	server := mcp.NewServer(cfg.MCP, mcp.Dependencies{
		Catalog:  components.Catalog,
		Sessions: components.Sessions,
		Profiles: components.Store,
		Reports:  components.Reports,
		Logger:   logger,
	})

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("MCP server stopped with error")
		return
	}
	logger.Info("SCID-PD MCP server stopped")
}
