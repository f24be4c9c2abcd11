package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// MigrationRunner applies the SQL files under migrations/ to a postgres database
type MigrationRunner struct {
	migrate *migrate.Migrate
	log     *logrus.Logger
}

// NewMigrationRunner creates a runner for the database URL and migrations directory
func NewMigrationRunner(databaseURL, migrationsPath string, logger *logrus.Logger) (*MigrationRunner, error) {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("resolving migrations path: %w", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(abs), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating migration instance: %w", err)
	}

	return &MigrationRunner{
		migrate: m,
		log:     logger,
	}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (mr *MigrationRunner) Up() error {
	mr.log.Info("Applying profile schema migrations")

	err := mr.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mr.log.Info("Profile schema already current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("running migrations up: %w", err)
	}

	mr.logVersion("Profile schema migrated")
	return nil
}

// Down rolls back the most recent migration.
func (mr *MigrationRunner) Down() error {
	return mr.Steps(-1)
}

// Steps moves the schema n migrations forward (n > 0) or back (n < 0). Rolling back past the
// first migration stops at an empty schema.
func (mr *MigrationRunner) Steps(n int) error {
	if n == 0 {
		return nil
	}
	mr.log.WithField("steps", n).Info("Stepping profile schema")

	err := mr.migrate.Steps(n)
	var short migrate.ErrShortLimit
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mr.log.Info("Profile schema unchanged")
		return nil
	case errors.As(err, &short):
		mr.log.WithField("missing_steps", short.Short).Info("Ran out of migrations before completing all steps")
	case err != nil:
		return fmt.Errorf("stepping migrations by %d: %w", n, err)
	}

	mr.logVersion("Profile schema stepped")
	return nil
}

// Version returns the current migration version. A database without migrations reports 0.
func (mr *MigrationRunner) Version() (uint, bool, error) {
	version, dirty, err := mr.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mr *MigrationRunner) logVersion(msg string) {
	version, dirty, err := mr.Version()
	if err != nil {
		mr.log.WithError(err).Warn("Could not read migration version")
		return
	}
	mr.log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info(msg)
}

// Close closes the migration runner
func (mr *MigrationRunner) Close() error {
	sourceErr, dbErr := mr.migrate.Close()
	if sourceErr != nil {
		return fmt.Errorf("closing migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing migration database: %w", dbErr)
	}
	return nil
}
