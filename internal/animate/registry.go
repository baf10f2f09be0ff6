package animate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"animator/internal/domain"
	"animator/internal/infra"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRegistryFull is returned by Create when every session is generating.
	ErrRegistryFull = errors.New("session registry full")
)

// Factory builds the controller for a freshly created session.
type Factory func(id string) (*Controller, error)

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keeps sessions in memory, one per page load, and evicts them
// after an idle TTL. Evicting a session resets it, which cancels polling.
type Registry struct {
	factory Factory
	ttl     time.Duration
	max     int
	logger  infra.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Factory Factory
	TTL     time.Duration
	Max     int
	Logger  *infra.Logger
	Now     func() time.Time
}

func NewRegistry(opts RegistryOptions) *Registry {
	r := &Registry{
		factory:  opts.Factory,
		ttl:      opts.TTL,
		max:      opts.Max,
		now:      opts.Now,
		sessions: make(map[string]*entry),
	}
	if r.ttl <= 0 {
		r.ttl = 30 * time.Minute
	}
	if r.max <= 0 {
		r.max = 256
	}
	if r.now == nil {
		r.now = time.Now
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	} else {
		r.logger = infra.NopLogger()
	}
	return r
}

// Create registers a new session, evicting the least recently used one when
// full. Sessions with a generation in flight are never evicted.
func (r *Registry) Create() (*Controller, error) {
	id := uuid.NewString()
	ctrl, err := r.factory(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	var evicted *Controller
	if len(r.sessions) >= r.max {
		evicted = r.evictOldestLocked()
		if evicted == nil {
			r.mu.Unlock()
			r.logger.Warn().Int("max", r.max).Msg("animate: registry full, every session is generating")
			return nil, ErrRegistryFull
		}
	}
	r.sessions[id] = &entry{ctrl: ctrl, lastSeen: r.now()}
	sessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if evicted != nil {
		evicted.Reset()
		r.logger.Info().Str("session_id", evicted.ID()).Msg("animate: session evicted, registry full")
	}
	return ctrl, nil
}

// Get returns a session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.ctrl, nil
}

// Remove drops a session and resets it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	sessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	if ok {
		e.ctrl.Reset()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	var expired []*Controller

	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.ctrl)
			delete(r.sessions, id)
		}
	}
	sessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Reset()
	}
	if len(expired) > 0 {
		r.logger.Debug().Int("count", len(expired)).Msg("animate: idle sessions evicted")
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then resets every session.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close resets and drops every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	sessionsActive.Set(0)
	r.mu.Unlock()
	for _, e := range sessions {
		e.ctrl.Reset()
	}
}

func (r *Registry) evictOldestLocked() *Controller {
	var (
		oldestID string
		oldest   *entry
	)
	for id, e := range r.sessions {
		if e.ctrl.State() == domain.StateGenerating {
			continue
		}
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, e
		}
	}
	if oldest == nil {
		return nil
	}
	delete(r.sessions, oldestID)
	return oldest.ctrl
}
