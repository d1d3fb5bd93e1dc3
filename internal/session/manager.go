// Package session tracks whether a user is authenticated and owns the
// transition from anonymous local-only mode to identified cloud-synced
// mode, including the one-time migration of pre-existing local records.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/persist"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrAuth                 = errors.New("authentication failed")
)

// Authenticator resolves a login credential into an identity. It is the
// external provider boundary: no partial identity ever leaves it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (core.Identity, error)
}

// LocalAdapter is the pre-login staging store: a persistence adapter whose
// keys can be wiped once migration is confirmed committed remotely.
type LocalAdapter interface {
	persist.Adapter
	persist.Clearer
}

// RemoteAdapter is the identity-scoped document store, which additionally
// carries the profile document.
type RemoteAdapter interface {
	persist.Adapter
	LoadProfile(ctx context.Context) (core.Profile, error)
	SaveProfile(ctx context.Context, p core.Profile) error
}

// RemoteFactory builds the remote adapter for a resolved identity.
type RemoteFactory func(ctx context.Context, ident core.Identity) (RemoteAdapter, error)

type Manager struct {
	mu           sync.Mutex
	state        State
	identity     core.Identity
	profile      core.Profile
	migrationErr error

	store   *finance.Store
	local   LocalAdapter
	remote  RemoteAdapter
	auth    Authenticator
	factory RemoteFactory

	migrationConcurrency int
}

func NewManager(store *finance.Store, local LocalAdapter, auth Authenticator, factory RemoteFactory) *Manager {
	return &Manager{
		state:   StateUnauthenticated,
		store:   store,
		local:   local,
		auth:    auth,
		factory: factory,
	}
}

// SetMigrationConcurrency bounds the parallel record copies during the
// local-to-remote migration. Zero keeps the default.
func (m *Manager) SetMigrationConcurrency(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrationConcurrency = n
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the resolved identity, or false while anonymous.
func (m *Manager) Identity() (core.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, m.state == StateAuthenticated
}

func (m *Manager) Profile() core.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// MigrationErr reports the retryable migration failure of the latest
// login, if any. Local data is preserved until a retry succeeds.
func (m *Manager) MigrationErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrationErr
}

// Login drives the Unauthenticated -> Authenticating -> Authenticated
// transition: resolve the identity, connect the remote store, merge the
// profile, run the one-time migration if local data exists at this moment,
// then swap the record store onto the remote adapter.
//
// Provider failure or cancellation returns to Unauthenticated. A failed
// migration does not fail the login; it is surfaced via MigrationErr and
// can be retried while local data stays intact.
func (m *Manager) Login(ctx context.Context, token string) (core.Identity, error) {
	m.mu.Lock()
	if m.state != StateUnauthenticated {
		m.mu.Unlock()
		return core.Identity{}, ErrAlreadyAuthenticated
	}
	m.state = StateAuthenticating
	concurrency := m.migrationConcurrency
	m.mu.Unlock()

	ident, err := m.auth.Authenticate(ctx, token)
	if err != nil {
		m.toUnauthenticated()
		return core.Identity{}, fmt.Errorf("%w: %s", ErrAuth, err)
	}
	if ident.UID == "" {
		m.toUnauthenticated()
		return core.Identity{}, fmt.Errorf("%w: provider returned no uid", ErrAuth)
	}

	remote, err := m.factory(ctx, ident)
	if err != nil {
		m.toUnauthenticated()
		return core.Identity{}, fmt.Errorf("connect remote store: %w", err)
	}

	stored, err := remote.LoadProfile(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Profile load failed, starting from identity only",
			"uid", ident.UID, "error", err, "component", "session")
	}
	merged := MergeProfile(ident, stored)

	var migrationErr error
	if err := NewMigrator(m.local, remote, concurrency).Run(ctx); err != nil {
		migrationErr = err
		slog.ErrorContext(ctx, "Local migration failed, local data preserved",
			"uid", ident.UID, "error", err, "component", "session")
	}

	if err := m.store.UseAdapter(ctx, remote, true); err != nil {
		_ = remote.Close(ctx)
		m.toUnauthenticated()
		return core.Identity{}, fmt.Errorf("activate remote store: %w", err)
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.identity = ident
	m.profile = merged
	m.remote = remote
	m.migrationErr = migrationErr
	m.mu.Unlock()

	slog.InfoContext(ctx, "Session authenticated",
		"uid", ident.UID, "migrated", migrationErr == nil, "component", "session")
	return ident, nil
}

// Logout clears the in-memory collections and reinstates the local
// adapter without re-seeding from local storage. Remote data is never
// deleted.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	remote := m.remote
	m.state = StateUnauthenticated
	m.identity = core.Identity{}
	m.profile = core.Profile{}
	m.remote = nil
	m.migrationErr = nil
	m.mu.Unlock()

	m.store.Reset(m.local)

	if remote != nil {
		if err := remote.Close(ctx); err != nil {
			slog.WarnContext(ctx, "Remote store close failed", "error", err, "component", "session")
		}
	}

	slog.InfoContext(ctx, "Session logged out", "component", "session")
	return nil
}

// RetryMigration re-runs the migration after a failed login-time attempt.
// Safe to call repeatedly: record writes are idempotent and local keys are
// only cleared on full success.
func (m *Manager) RetryMigration(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	remote := m.remote
	concurrency := m.migrationConcurrency
	m.mu.Unlock()

	if err := NewMigrator(m.local, remote, concurrency).Run(ctx); err != nil {
		m.mu.Lock()
		m.migrationErr = err
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.migrationErr = nil
	m.mu.Unlock()

	// Pick up the migrated records.
	return m.store.UseAdapter(ctx, remote, true)
}

// UpdateProfile merges the given fields into the remote profile document.
func (m *Manager) UpdateProfile(ctx context.Context, p core.Profile) error {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	remote := m.remote
	ident := m.identity
	m.mu.Unlock()

	if err := remote.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	stored, err := remote.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("reload profile: %w", err)
	}

	m.mu.Lock()
	m.profile = MergeProfile(ident, stored)
	m.mu.Unlock()
	return nil
}

func (m *Manager) toUnauthenticated() {
	m.mu.Lock()
	m.state = StateUnauthenticated
	m.identity = core.Identity{}
	m.mu.Unlock()
}
