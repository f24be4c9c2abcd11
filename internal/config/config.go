package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/scid-pd-engine/internal/domain"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	file   string
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	return NewManagerFromFile("")
}

// NewManagerFromFile creates a configuration manager that reads the given file instead of
// searching the default locations. An empty path falls back to the search.
func NewManagerFromFile(path string) (*Manager, error) {
	m := &Manager{file: path}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.file != "" {
		v.SetConfigFile(m.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/scid-pd-engine/")
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix("SCID_PD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || m.file != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)

	// Catalog defaults (empty path = embedded catalog)
	v.SetDefault("catalog.path", "")

	// Storage defaults
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "scid_pd.db")
	v.SetDefault("storage.host", "localhost")
	v.SetDefault("storage.port", 5432)
	v.SetDefault("storage.database", "scid_pd")
	v.SetDefault("storage.username", "postgres")
	v.SetDefault("storage.password", "")
	v.SetDefault("storage.ssl_mode", "disable")
	v.SetDefault("storage.max_conns", 25)
	v.SetDefault("storage.min_conns", 5)
	v.SetDefault("storage.conn_max_lifetime", "1h")
	v.SetDefault("storage.conn_max_idle_time", "30m")
	v.SetDefault("storage.migrations_path", "migrations")
	v.SetDefault("storage.operation_timeout", "5s")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_url", "redis://localhost:6379")
	v.SetDefault("cache.default_ttl", "24h")
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")

	// Session defaults
	v.SetDefault("sessions.max_sessions", 1000)
	v.SetDefault("sessions.ttl", "2h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// MCP defaults
	v.SetDefault("mcp.server_name", "scid-pd-engine")
	v.SetDefault("mcp.version", "1.0.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetStorageConfig returns storage configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	return Validate(m.config)
}

// Validate checks a configuration for values the services cannot run with.
func Validate(config *domain.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimitRPS < 0 || config.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	switch config.Storage.Driver {
	case DriverSQLite:
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DriverPostgres:
		if config.Storage.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Storage.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Storage.Username == "" {
			return fmt.Errorf("database username is required")
		}
		if config.Storage.MinConns > config.Storage.MaxConns {
			return fmt.Errorf("min_conns %d exceeds max_conns %d", config.Storage.MinConns, config.Storage.MaxConns)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", config.Storage.Driver)
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when the cache is enabled")
	}

	if config.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("sessions.max_sessions must be positive")
	}
	if config.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}

// GetPostgresConnectionString returns a postgres URL suitable for lib/pq, pgx and migrate.
func (m *Manager) GetPostgresConnectionString() string {
	return PostgresURL(m.config.Storage)
}

// PostgresURL formats the connection URL for a storage configuration.
func PostgresURL(s domain.StorageConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.Username, s.Password),
		Host:     fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:     "/" + s.Database,
		RawQuery: "sslmode=" + url.QueryEscape(s.SSLMode),
	}
	return u.String()
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}

var _ domain.ConfigManager = (*Manager)(nil)
