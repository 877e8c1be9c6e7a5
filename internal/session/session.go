// Package session tracks who the current actor is for a single-user client.
//
// A Manager starts Pending, resolves to Authenticated or Unauthenticated
// once Restore has read the persisted slot, and moves between those two
// states on Login and Logout. Gated callers must Wait before trusting
// Current.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/solarops/solarops/internal/identity"
)

// StorageKey is the fixed slot name the identity is persisted under.
const StorageKey = "solar_user_v2"

var (
	ErrNoSession = errors.New("no persisted session")
	errCorrupt   = errors.New("persisted session is corrupt")
)

type State int

const (
	StatePending State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store persists one serialized identity.
type Store interface {
	// Load returns ErrNoSession when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

type snapshot struct {
	state    State
	identity *identity.Identity
}

type Manager struct {
	resolver   identity.Resolver
	store      Store
	logger     *slog.Logger
	loginDelay time.Duration

	// mu serialises transitions; snap is what readers see.
	mu        sync.Mutex
	snap      atomic.Pointer[snapshot]
	ready     chan struct{}
	readyOnce sync.Once
}

type Option func(*Manager)

// WithLoginDelay makes Login wait d before resolving the handle.
func WithLoginDelay(d time.Duration) Option {
	return func(m *Manager) { m.loginDelay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewManager(resolver identity.Resolver, store Store, opts ...Option) *Manager {
	m := &Manager{
		resolver: resolver,
		store:    store,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.snap.Store(&snapshot{state: StatePending})
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.snap.Load().state
}

// Current returns a copy of the authenticated identity, or nil.
func (m *Manager) Current() *identity.Identity {
	s := m.snap.Load()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// Wait blocks until the manager has left Pending or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restore reads the persisted slot and resolves the Pending state. It never
// fails: anything other than a well-formed identity leaves the manager
// Unauthenticated. Calling it after the state has left Pending does nothing.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State() != StatePending {
		return
	}

	id, err := m.load(ctx)
	switch {
	case err == nil:
		m.publish(StateAuthenticated, &id)
		m.logger.Info("session restored", "user_id", id.ID)
		return
	case errors.Is(err, ErrNoSession):
	case errors.Is(err, errCorrupt):
		m.logger.Warn("discarding persisted session", "error", err)
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.logger.Warn("clearing persisted session", "error", cerr)
		}
	default:
		m.logger.Warn("reading persisted session", "error", err)
	}
	m.publish(StateUnauthenticated, nil)
}

// Login resolves handle against the directory. An unknown handle reports
// false with a nil error; an established session survives the miss. The
// error is non-nil only if ctx ends during the login delay or the identity
// cannot be persisted, and in both cases the state is unchanged.
func (m *Manager) Login(ctx context.Context, handle string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loginDelay > 0 {
		t := time.NewTimer(m.loginDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		}
	}

	id, err := m.resolver.Resolve(handle)
	if err != nil {
		if !errors.Is(err, identity.ErrNotFound) {
			return false, fmt.Errorf("resolving handle: %w", err)
		}
		if m.State() != StateAuthenticated {
			m.publish(StateUnauthenticated, nil)
		}
		m.logger.Info("login rejected", "handle", handle)
		return false, nil
	}

	data, err := json.Marshal(id)
	if err != nil {
		return false, fmt.Errorf("encoding identity: %w", err)
	}
	if err := m.store.Save(ctx, data); err != nil {
		return false, fmt.Errorf("persisting session: %w", err)
	}

	m.publish(StateAuthenticated, &id)
	m.logger.Info("login succeeded", "user_id", id.ID)
	return true, nil
}

// Logout clears the identity and the persisted slot. It is idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clearing persisted session", "error", err)
	}
	m.publish(StateUnauthenticated, nil)
}

func (m *Manager) load(ctx context.Context) (identity.Identity, error) {
	var id identity.Identity

	data, err := m.store.Load(ctx)
	if err != nil {
		return id, err
	}

	if err := decodeStrict(data, &id); err != nil {
		return id, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	if err := id.Validate(); err != nil {
		return id, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return id, nil
}

func (m *Manager) publish(state State, id *identity.Identity) {
	m.snap.Store(&snapshot{state: state, identity: id})
	if state != StatePending {
		m.readyOnce.Do(func() { close(m.ready) })
	}
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after identity")
	}
	return nil
}
