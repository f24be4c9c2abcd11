// Package database manages the PostgreSQL connection pool and schema migrations used by the
// postgres storage driver.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/config"
	"github.com/scid-pd-engine/internal/domain"
)

// DB wraps the pgxpool.Pool with health and statistics helpers
type DB struct {
	Pool *pgxpool.Pool
	log  *logrus.Logger
}

// PoolStats is a loggable snapshot of the pool.
type PoolStats struct {
	TotalConns    int32         `json:"total_conns"`
	IdleConns     int32         `json:"idle_conns"`
	AcquiredConns int32         `json:"acquired_conns"`
	MaxConns      int32         `json:"max_conns"`
	AcquireCount  int64         `json:"acquire_count"`
	AcquireTime   time.Duration `json:"acquire_duration"`
}

// NewConnection creates a connection pool for the storage configuration and pings it.
func NewConnection(ctx context.Context, cfg domain.StorageConfig, logger *logrus.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.PostgresURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host":      cfg.Host,
		"port":      cfg.Port,
		"database":  cfg.Database,
		"max_conns": poolConfig.MaxConns,
		"min_conns": poolConfig.MinConns,
	}).Info("Database connection pool established")

	return &DB{
		Pool: pool,
		log:  logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.log.Info("Database connection pool closed")
	}
}

// Health checks the database connection health
func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Stats returns connection pool statistics
func (db *DB) Stats() PoolStats {
	s := db.Pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
		AcquireCount:  s.AcquireCount(),
		AcquireTime:   s.AcquireDuration(),
	}
}
