// Package setup builds the engine's runtime components from configuration. The HTTP and MCP
// binaries share it, so both serve from the same storage stack.
package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/catalog"
	"github.com/scid-pd-engine/internal/config"
	"github.com/scid-pd-engine/internal/database"
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/service"
	"github.com/scid-pd-engine/internal/session"
	"github.com/scid-pd-engine/internal/storage"
)

const memoryCacheSize = 512

// Components is everything a surface needs to serve assessments.
type Components struct {
	Config   *domain.Config
	Logger   *logrus.Logger
	Catalog  *catalog.Catalog
	Store    storage.Store
	Sessions *session.Registry
	Metrics  *service.Metrics
	Registry *prometheus.Registry
	Reports  *service.ReportGenerator

	health  func(context.Context) error
	closers []func() error
}

// Build loads the catalog, opens storage and creates the session registry.
func Build(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*Components, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"catalog_version": cat.Version(),
		"modules":         len(cat.Modules()),
	}).Info("Module catalog loaded")

	c := &Components{
		Config:   cfg,
		Logger:   logger,
		Catalog:  cat,
		Registry: prometheus.NewRegistry(),
		Reports:  service.NewReportGenerator(),
	}
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = service.NewMetrics(c.Registry)

	if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.Sessions = session.NewRegistry(
		session.Config{MaxSessions: cfg.Sessions.MaxSessions, TTL: cfg.Sessions.TTL},
		cat,
		logger,
		session.WithStore(c.Store),
		session.WithMetrics(c.Metrics),
	)
	return c, nil
}

// Health checks the storage backend.
func (c *Components) Health(ctx context.Context) error {
	if c.health == nil {
		return nil
	}
	return c.health(ctx)
}

// Close releases storage in reverse order of acquisition.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Components) openStore(ctx context.Context) error {
	cfg := c.Config.Storage
	var base storage.Store

	switch cfg.Driver {
	case config.DriverMemory:
		base = storage.NewMemoryStore()

	case config.DriverSQLite:
		s, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		base = s

	case config.DriverPostgres:
		db, err := database.NewConnection(ctx, cfg, c.Logger)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		c.closers = append(c.closers, func() error { db.Close(); return nil })
		c.health = db.Health

		s, err := storage.NewPostgresStoreFromPool(db.Pool)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		base = s

	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}

	resilientCfg := storage.DefaultResilientConfig()
	if cfg.OperationTimeout > 0 {
		resilientCfg.OperationTimeout = cfg.OperationTimeout
	}
	store := storage.Store(storage.NewResilientStore(base, resilientCfg, c.Logger))

	if c.Config.Cache.Enabled {
		cached, err := c.cacheLayer(ctx, store)
		if err != nil {
			return err
		}
		store = cached
	}

	c.Store = store
	c.closers = append(c.closers, store.Close)

	c.Logger.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"cache":  c.Config.Cache.Enabled,
	}).Info("Profile storage ready")
	return nil
}

// cacheLayer wraps next with the LRU tier and, when Redis answers, the Redis tier.
func (c *Components) cacheLayer(ctx context.Context, next storage.Store) (storage.Store, error) {
	cacheCfg := c.Config.Cache
	client, err := storage.NewRedisClient(cacheCfg)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.WithFields(logrus.Fields{
			"redis_url": cacheCfg.RedisURL,
			"error":     err.Error(),
		}).Warn("Redis unreachable, using in-process cache only")
		client.Close()
		return storage.NewCachedStore(next, memoryCacheSize, nil, cacheCfg.DefaultTTL, c.Logger)
	}

	c.closers = append(c.closers, client.Close)
	return storage.NewCachedStore(next, memoryCacheSize, client, cacheCfg.DefaultTTL, c.Logger)
}
