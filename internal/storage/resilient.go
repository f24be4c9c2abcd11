package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/scid-pd-engine/internal/domain"
)

// ErrUnavailable is returned while the circuit breaker rejects calls to the backing store.
var ErrUnavailable = errors.New("profile storage unavailable")

// ResilientConfig tunes the circuit breaker and per-operation timeout of a ResilientStore.
type ResilientConfig struct {
	Name             string
	OperationTimeout time.Duration
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	MinRequests      uint32
	FailureRatio     float64
}

// DefaultResilientConfig mirrors the breaker settings used for outbound dependencies.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Name:             "profile-store",
		OperationTimeout: 5 * time.Second,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		OpenTimeout:      60 * time.Second,
		MinRequests:      3,
		FailureRatio:     0.6,
	}
}

// ResilientStore wraps a Store with a circuit breaker and a timeout on every operation.
// Domain outcomes such as not-found or validation errors do not count as failures.
type ResilientStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *logrus.Logger
}

// NewResilientStore wraps next.
func NewResilientStore(next Store, cfg ResilientConfig, logger *logrus.Logger) *ResilientStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: isBackendHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	return &ResilientStore{next: next, breaker: breaker, timeout: cfg.OperationTimeout, logger: logger}
}

// isBackendHealthy reports whether err leaves the backend's health untouched.
func isBackendHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidState)
}

// State exposes the breaker state for health reporting.
func (s *ResilientStore) State() gobreaker.State {
	return s.breaker.State()
}

func execute[T any](s *ResilientStore, ctx context.Context, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.WithFields(logrus.Fields{"operation": op}).Warn("Profile store call rejected by circuit breaker")
		var zero T
		return zero, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// SaveProfile stores a profile through the breaker.
func (s *ResilientStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	_, err := execute(s, ctx, "save profile", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.SaveProfile(ctx, profile)
	})
	return err
}

// GetProfile retrieves a profile through the breaker.
func (s *ResilientStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return execute(s, ctx, "get profile", func(ctx context.Context) (*domain.Profile, error) {
		return s.next.GetProfile(ctx, id)
	})
}

// ListProfiles lists profiles through the breaker.
func (s *ResilientStore) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	return execute(s, ctx, "list profiles", func(ctx context.Context) ([]*domain.Profile, error) {
		return s.next.ListProfiles(ctx, limit, offset)
	})
}

// CountProfiles counts profiles through the breaker.
func (s *ResilientStore) CountProfiles(ctx context.Context) (int, error) {
	return execute(s, ctx, "count profiles", func(ctx context.Context) (int, error) {
		return s.next.CountProfiles(ctx)
	})
}

// DeleteProfile deletes a profile through the breaker.
func (s *ResilientStore) DeleteProfile(ctx context.Context, id string) error {
	_, err := execute(s, ctx, "delete profile", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.DeleteProfile(ctx, id)
	})
	return err
}

// ExportJSON exports through the wrapped operations.
func (s *ResilientStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return exportJSON(ctx, s, writer, time.Now())
}

// ImportJSON imports through the wrapped operations.
func (s *ResilientStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	return importJSON(ctx, s, reader)
}

// Close closes the wrapped store.
func (s *ResilientStore) Close() error {
	return s.next.Close()
}

var _ Store = (*ResilientStore)(nil)
