package session

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/persist"
	"fintrack/internal/persist/memory"
)

type authFunc func(ctx context.Context, token string) (core.Identity, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (core.Identity, error) {
	return f(ctx, token)
}

func okAuth(ident core.Identity) Authenticator {
	return authFunc(func(context.Context, string) (core.Identity, error) {
		return ident, nil
	})
}

func fixture(t *testing.T, auth Authenticator) (*Manager, *memory.Store, *memory.Store, *finance.Store) {
	t.Helper()
	local := memory.New()
	remote := memory.NewRemote()

	store := finance.NewStore(local, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := store.Start(ctx); err != nil {
		t.Fatalf("start store: %v", err)
	}

	factory := func(context.Context, core.Identity) (RemoteAdapter, error) {
		return remote, nil
	}
	return NewManager(store, local, auth, factory), local, remote, store
}

func TestLoginHappyPath(t *testing.T) {
	ident := core.Identity{UID: "u1", Name: "Ada"}
	m, _, remote, store := fixture(t, okAuth(ident))
	ctx := context.Background()

	got, err := m.Login(ctx, "token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got != ident || m.State() != StateAuthenticated {
		t.Fatalf("state after login: %s, ident %+v", m.State(), got)
	}

	// The store now writes through the remote adapter.
	if _, err := store.AddExpense(ctx, finance.TransactionInput{Amount: "10", Label: "Food"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	snap, _ := remote.Load(ctx)
	if len(snap.Expenses) != 1 {
		t.Fatalf("expense must land in the remote store, got %+v", snap.Expenses)
	}
}

func TestLoginFailureReturnsToUnauthenticated(t *testing.T) {
	failing := authFunc(func(context.Context, string) (core.Identity, error) {
		return core.Identity{}, errors.New("cancelled")
	})
	m, _, _, _ := fixture(t, failing)

	if _, err := m.Login(context.Background(), "token"); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("state after failed login: %s", m.State())
	}
	if _, ok := m.Identity(); ok {
		t.Fatalf("no partial identity may be exposed")
	}
}

func TestLoginRejectsEmptyUID(t *testing.T) {
	m, _, _, _ := fixture(t, okAuth(core.Identity{Name: "no uid"}))
	if _, err := m.Login(context.Background(), "token"); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestLoginMigratesStagedLocalData(t *testing.T) {
	m, local, remote, store := fixture(t, okAuth(core.Identity{UID: "u1"}))
	ctx := context.Background()

	// Stage anonymous data before login.
	if _, err := store.AddExpense(ctx, finance.TransactionInput{Amount: "12.50", Label: "Food"}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	eur, _ := core.CurrencyByCode("EUR")
	if err := store.SetCurrency(ctx, eur); err != nil {
		t.Fatalf("stage currency: %v", err)
	}

	if _, err := m.Login(ctx, "token"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.MigrationErr(); err != nil {
		t.Fatalf("migration: %v", err)
	}

	remoteSnap, _ := remote.Load(ctx)
	if len(remoteSnap.Expenses) != 1 || remoteSnap.Expenses[0].AmountCents != 1250 {
		t.Fatalf("record not migrated: %+v", remoteSnap.Expenses)
	}
	if remoteSnap.Currency == nil || remoteSnap.Currency.Code != "EUR" {
		t.Fatalf("currency not migrated: %+v", remoteSnap.Currency)
	}

	// Local keys cleared so the migration never repeats.
	localSnap, _ := local.Load(ctx)
	if !localSnap.Empty() {
		t.Fatalf("local keys must be cleared after migration: %+v", localSnap)
	}

	// The store reloaded from remote and still shows the record.
	if got := store.Expenses(); len(got) != 1 {
		t.Fatalf("store after reload: %+v", got)
	}
}

func TestMigrationFailurePreservesLocalData(t *testing.T) {
	m, local, remote, store := fixture(t, okAuth(core.Identity{UID: "u1"}))
	ctx := context.Background()

	if _, err := store.AddExpense(ctx, finance.TransactionInput{Amount: "10", Label: "Food"}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	remote.FailWrites = errors.New("network flake")
	if _, err := m.Login(ctx, "token"); err != nil {
		t.Fatalf("login itself must succeed: %v", err)
	}
	if m.MigrationErr() == nil {
		t.Fatalf("expected a retryable migration error")
	}

	localSnap, _ := local.Load(ctx)
	if len(localSnap.Expenses) != 1 {
		t.Fatalf("local data must be preserved on failure: %+v", localSnap)
	}

	// Retry after the network recovers.
	remote.FailWrites = nil
	if err := m.RetryMigration(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if m.MigrationErr() != nil {
		t.Fatalf("migration error must clear after retry")
	}
	localSnap, _ = local.Load(ctx)
	if !localSnap.Empty() {
		t.Fatalf("local keys must be cleared after successful retry")
	}
	if got := store.Expenses(); len(got) != 1 {
		t.Fatalf("store must show migrated records, got %+v", got)
	}
}

func TestSecondMigrationIsNoop(t *testing.T) {
	local := memory.New()
	remote := memory.NewRemote()
	ctx := context.Background()

	if _, err := local.AppendRecord(ctx, persist.Expenses, persist.Item{ID: "a", AmountCents: 100, Label: "Food", Date: "2025-06-01"}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	mig := NewMigrator(local, remote, 0)
	if err := mig.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := mig.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	snap, _ := remote.Load(ctx)
	if len(snap.Expenses) != 1 {
		t.Fatalf("second run must not duplicate, got %d records", len(snap.Expenses))
	}
}

func TestLogoutClearsSessionNotRemote(t *testing.T) {
	m, local, remote, store := fixture(t, okAuth(core.Identity{UID: "u1"}))
	ctx := context.Background()

	if _, err := m.Login(ctx, "token"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := store.AddIncome(ctx, finance.TransactionInput{Amount: "100", Label: "Salary"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("state after logout: %s", m.State())
	}
	if len(store.Income()) != 0 {
		t.Fatalf("collections must be cleared on logout")
	}

	// Remote data survives; local storage is not used as a cache of it.
	snap, _ := remote.Load(ctx)
	if len(snap.Income) != 1 {
		t.Fatalf("logout must not delete remote data")
	}
	localSnap, _ := local.Load(ctx)
	if !localSnap.Empty() {
		t.Fatalf("logout must not copy remote data into local storage")
	}

	if err := m.Logout(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("double logout: %v", err)
	}
}

func TestMergeProfile(t *testing.T) {
	ident := core.Identity{UID: "u1", Name: "Provider Name", PhotoURL: "provider.png"}

	// Stored profile fields override identity-derived defaults.
	got := MergeProfile(ident, core.Profile{Name: "Custom", Job: "Engineer"})
	if got.Name != "Custom" || got.Job != "Engineer" || got.PhotoURL != "provider.png" {
		t.Fatalf("merge: %+v", got)
	}

	// Empty stored profile falls back to identity fields.
	got = MergeProfile(ident, core.Profile{})
	if got.Name != "Provider Name" || got.PhotoURL != "provider.png" {
		t.Fatalf("fallback merge: %+v", got)
	}
}
