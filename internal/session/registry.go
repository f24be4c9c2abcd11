// Package session keeps the in-flight assessments served by the HTTP and MCP surfaces. Each
// session owns one administrator and serializes access to it.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/service"
)

// Session is one assessment in progress or recently completed.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	admin    *service.Administrator
	lastUsed time.Time
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID       string                     `json:"id"`
	State    service.AdministratorState `json:"state"`
	Profile  *domain.Profile            `json:"profile"`
	LastUsed time.Time                  `json:"last_used"`
}

// Config bounds the registry.
type Config struct {
	MaxSessions int
	TTL         time.Duration
}

// Registry maps session ids to sessions. Idle sessions expire after the TTL and the least
// recently used session is evicted once the capacity is reached.
type Registry struct {
	// mu orders lookups that refresh a session's TTL against removals.
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
	catalog  domain.ModuleCatalog
	store    domain.ProfileStore
	metrics  *service.Metrics
	logger   *logrus.Logger
	now      func() time.Time
}

// Option customizes a Registry.
type Option func(*Registry)

// WithStore persists profiles when their assessment completes.
func WithStore(store domain.ProfileStore) Option {
	return func(r *Registry) { r.store = store }
}

// WithMetrics passes m to every administrator the registry creates.
func WithMetrics(m *service.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, catalog domain.ModuleCatalog, logger *logrus.Logger, opts ...Option) *Registry {
	r := &Registry{
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sessions = expirable.NewLRU[string, *Session](cfg.MaxSessions, r.onEvict, cfg.TTL)
	return r
}

func (r *Registry) onEvict(id string, _ *Session) {
	r.logger.WithField("session_id", id).Debug("Assessment session evicted")
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Start opens a new assessment. The session id is the profile id.
func (r *Registry) Start() (*Snapshot, error) {
	admin := service.NewAdministrator(r.logger,
		service.WithMetrics(r.metrics),
		service.WithClock(r.now),
	)
	profile, err := admin.Start()
	if err != nil {
		return nil, err
	}

	now := r.now()
	s := &Session{
		ID:        profile.ID,
		CreatedAt: now,
		admin:     admin,
		lastUsed:  now,
	}
	r.sessions.Add(s.ID, s)

	r.logger.WithFields(logrus.Fields{
		"session_id":    s.ID,
		"live_sessions": r.sessions.Len(),
	}).Info("Assessment session started")

	return &Snapshot{ID: s.ID, State: admin.State(), Profile: profile, LastUsed: now}, nil
}

// Get returns a snapshot of the session.
func (r *Registry) Get(id string) (*Snapshot, error) {
	var snap *Snapshot
	err := r.with(id, func(s *Session) error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// Administer scores one module for the session.
func (r *Registry) Administer(id, moduleID string, responses domain.Responses) (*domain.ModuleResult, error) {
	module, err := r.catalog.Module(moduleID)
	if err != nil {
		return nil, err
	}

	var result *domain.ModuleResult
	err = r.with(id, func(s *Session) error {
		var err error
		result, err = s.admin.AdministerModule(module, responses)
		return err
	})
	return result, err
}

// SetNotes attaches clinician notes to the session's active profile.
func (r *Registry) SetNotes(id, notes string) error {
	return r.with(id, func(s *Session) error {
		return s.admin.SetClinicianNotes(notes)
	})
}

// Complete finalizes the session's profile and saves it when a store is configured. The
// session stays readable until it expires so a failed save can be inspected.
func (r *Registry) Complete(ctx context.Context, id string) (*domain.Profile, error) {
	var profile *domain.Profile
	err := r.with(id, func(s *Session) error {
		var err error
		profile, err = s.admin.Complete()
		return err
	})
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.SaveProfile(ctx, profile); err != nil {
			r.logger.WithFields(logrus.Fields{
				"session_id": id,
				"error":      err.Error(),
			}).Error("Failed to persist completed profile")
			return profile, fmt.Errorf("persist profile %s: %w", id, err)
		}
	}
	return profile, nil
}

// Remove discards a session. It reports whether the session existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Remove(id)
}

// with runs fn under the session's lock and refreshes its expiry.
func (r *Registry) with(id string, fn func(*Session) error) error {
	s, ok := r.touch(id)
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = r.now()
	return fn(s)
}

// touch looks a session up and re-adds it to slide its TTL.
func (r *Registry) touch(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(id)
	if ok {
		r.sessions.Add(id, s)
	}
	return s, ok
}

func (s *Session) snapshot() *Snapshot {
	return &Snapshot{
		ID:       s.ID,
		State:    s.admin.State(),
		Profile:  s.admin.Profile(),
		LastUsed: s.lastUsed,
	}
}
