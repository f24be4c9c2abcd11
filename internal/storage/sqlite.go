package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scid-pd-engine/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite profile store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSQLiteSchema creates the profile table and indexes.
func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		overall_severity TEXT NOT NULL DEFAULT '',
		positive_count INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_started_at ON profiles(started_at);
	CREATE INDEX IF NOT EXISTS idx_profiles_severity ON profiles(overall_severity);
	`

	_, err := db.Exec(schema)
	return err
}

// sqliteTimeLayout is fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func sortableTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// SaveProfile stores or replaces a finalized profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	if err := checkSavable(profile); err != nil {
		return err
	}
	data, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, started_at, completed_at, overall_severity, positive_count, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed_at = excluded.completed_at,
			overall_severity = excluded.overall_severity,
			positive_count = excluded.positive_count,
			data = excluded.data,
			updated_at = excluded.updated_at
	`,
		profile.ID,
		sortableTime(profile.StartedAt),
		sortableTime(*profile.CompletedAt),
		string(profile.OverallSeverity),
		positiveCount(profile),
		string(data),
		sortableTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by id.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM profiles WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return unmarshalProfile([]byte(data))
}

// ListProfiles returns profiles, most recently started first.
func (s *SQLiteStore) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM profiles
		ORDER BY started_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	result := []*domain.Profile{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		profile, err := unmarshalProfile([]byte(data))
		if err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

// CountProfiles returns the total number of stored profiles.
func (s *SQLiteStore) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count)
	return count, err
}

// DeleteProfile removes a profile by id.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// ExportJSON exports all profiles to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return exportJSON(ctx, s, writer, time.Now())
}

// ImportJSON imports profiles from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importJSON(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
