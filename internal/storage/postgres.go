package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/scid-pd-engine/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
// It expects the profiles table to exist (created via migrations).
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore creates a new PostgreSQL profile store over an open database handle.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db, now: time.Now}, nil
}

// NewPostgresStoreFromURL opens a lib/pq connection and creates a store on it.
func NewPostgresStoreFromURL(databaseURL string, cfg domain.StorageConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	maxOpen := int(cfg.MaxConns)
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// NewPostgresStoreFromPool creates a store that shares a pgx connection pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}
	return NewPostgresStore(stdlib.OpenDBFromPool(pool))
}

// SaveProfile stores or replaces a finalized profile.
func (s *PostgresStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	if err := checkSavable(profile); err != nil {
		return err
	}
	data, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (
			id, started_at, completed_at, overall_severity, positive_count, data, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			completed_at = EXCLUDED.completed_at,
			overall_severity = EXCLUDED.overall_severity,
			positive_count = EXCLUDED.positive_count,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		profile.ID,
		profile.StartedAt,
		*profile.CompletedAt,
		string(profile.OverallSeverity),
		positiveCount(profile),
		string(data),
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by id.
func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM profiles WHERE id = $1", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return unmarshalProfile(data)
}

// ListProfiles returns profiles, most recently started first.
func (s *PostgresStore) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	query := `
		SELECT data FROM profiles
		ORDER BY started_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	result := []*domain.Profile{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		profile, err := unmarshalProfile(data)
		if err != nil {
			return nil, err
		}
		result = append(result, profile)
	}

	return result, rows.Err()
}

// CountProfiles returns the total number of stored profiles.
func (s *PostgresStore) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// DeleteProfile removes a profile by id.
func (s *PostgresStore) DeleteProfile(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// ExportJSON exports all profiles to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return exportJSON(ctx, s, writer, s.now())
}

// ImportJSON imports profiles from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importJSON(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
