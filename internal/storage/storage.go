// Package storage persists finalized assessment profiles. It provides SQLite, PostgreSQL and
// in-memory stores plus decorators for circuit breaking and Redis read-through caching.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/scid-pd-engine/internal/domain"
)

// Store defines the interface for profile storage operations.
type Store interface {
	domain.ProfileStore

	// ExportJSON writes every stored profile to writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON reads an export and saves profiles whose id is not stored yet.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// ProfileExport represents the JSON export format.
type ProfileExport struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Count      int               `json:"count"`
	Profiles   []*domain.Profile `json:"profiles"`
}

const exportVersion = "1.0"

// maxExportLimit is the maximum number of profiles exported at once.
const maxExportLimit = 1000000

// checkSavable rejects profiles that may not be persisted.
func checkSavable(profile *domain.Profile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("%w: profile id is required", domain.ErrValidation)
	}
	if !profile.Completed {
		return &domain.StateError{Operation: "save profile", State: "in progress"}
	}
	if profile.CompletedAt == nil {
		return fmt.Errorf("%w: profile %s has no completion time", domain.ErrValidation, profile.ID)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
}

func marshalProfile(profile *domain.Profile) ([]byte, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return data, nil
}

func unmarshalProfile(data []byte) (*domain.Profile, error) {
	profile := &domain.Profile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return profile, nil
}

// exportJSON writes every profile of s as a ProfileExport.
func exportJSON(ctx context.Context, s domain.ProfileStore, writer io.Writer, now time.Time) error {
	all, err := s.ListProfiles(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	export := &ProfileExport{
		Version:    exportVersion,
		ExportedAt: now,
		Count:      len(all),
		Profiles:   all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// importJSON saves every exported profile whose id s does not know yet.
func importJSON(ctx context.Context, s domain.ProfileStore, reader io.Reader) (imported int, skipped int, err error) {
	var export ProfileExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, profile := range export.Profiles {
		_, err := s.GetProfile(ctx, profile.ID)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if err := s.SaveProfile(ctx, profile); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// positiveCount is stored alongside each profile so listings can be filtered without decoding.
func positiveCount(profile *domain.Profile) int {
	return len(profile.PositiveDiagnoses())
}
