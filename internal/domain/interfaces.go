package domain

import (
	"context"
)

// ModuleCatalog provides read-only access to module definitions. Implementations must be
// safe for concurrent use.
type ModuleCatalog interface {
	Module(id string) (*Module, error)
	Modules() []*Module
	Summaries() []ModuleSummary
}

// ProfileStore persists finalized profiles.
type ProfileStore interface {
	SaveProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*Profile, error)
	CountProfiles(ctx context.Context) (int, error)
	DeleteProfile(ctx context.Context, id string) error
}

// ReportRenderer projects a profile into a human-readable document.
type ReportRenderer interface {
	Render(profile *Profile) string
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetStorageConfig() *StorageConfig
	Reload() error
	Validate() error
	GetPostgresConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
