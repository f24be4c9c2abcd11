package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Catalog     CatalogConfig  `mapstructure:"catalog"`
	Storage     StorageConfig  `mapstructure:"storage"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Sessions    SessionsConfig `mapstructure:"sessions"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	MCP         MCPConfig      `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// CatalogConfig points at the module catalog. An empty path selects the embedded catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig represents profile persistence configuration
type StorageConfig struct {
	Driver           string        `mapstructure:"driver"` // sqlite, postgres, memory
	SQLitePath       string        `mapstructure:"sqlite_path"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Database         string        `mapstructure:"database"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsPath   string        `mapstructure:"migrations_path"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// CacheConfig represents the Redis profile cache configuration
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// SessionsConfig bounds the number and lifetime of in-flight assessments.
type SessionsConfig struct {
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MCPConfig represents the MCP server configuration
type MCPConfig struct {
	ServerName string `mapstructure:"server_name"`
	Version    string `mapstructure:"version"`
}
