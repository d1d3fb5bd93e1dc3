// Package finance implements the record store: the single source of truth
// for the expense, income and subscription collections plus the savings
// goal and currency preference, for the lifetime of a session.
//
// Every mutation is mediated through the active persistence adapter. Under
// the local adapter writes are synchronous and a durability failure only
// raises a notice; under the remote adapter writes are awaited, because
// there is no local fallback copy. Authoritative pushes from the adapter's
// watch channel replace collections wholesale.
package finance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/persist"
)

// Publisher mirrors record changes to an external channel (AMQP in
// production). A nil publisher disables mirroring; a failed publish never
// fails the mutation.
type Publisher interface {
	RecordChanged(ctx context.Context, collection, op, id string) error
}

// Notice is an asynchronous error surfaced on the session-wide
// notification channel: typically a local durability failure that did not
// block the in-memory update.
type Notice struct {
	Op         string
	Collection string
	Err        error
	At         time.Time
}

// DefaultGoal seeds a fresh session before the user edits the goal.
var DefaultGoal = core.SavingsGoal{Target: core.Money{Cents: 1000000}}

type Store struct {
	mu       sync.RWMutex
	adapter  persist.Adapter
	expenses []core.Transaction
	income   []core.Transaction
	subs     []core.Subscription
	goal     core.SavingsGoal
	currency core.Currency

	relay   Publisher
	notices chan Notice

	runCtx      context.Context
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// NewStore builds a record store over the given adapter. The relay may be
// nil.
func NewStore(adapter persist.Adapter, relay Publisher) *Store {
	return &Store{
		adapter:  adapter,
		relay:    relay,
		goal:     DefaultGoal,
		currency: core.DefaultCurrency,
		notices:  make(chan Notice, 16),
	}
}

// Start loads the durable state into memory and begins consuming the
// adapter's watch channel. ctx bounds the store's whole lifetime.
func (s *Store) Start(ctx context.Context) error {
	s.runCtx = ctx

	adapter := s.currentAdapter()
	snap, err := adapter.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	s.applySnapshot(snap)

	return s.startWatch(adapter)
}

// UseAdapter swaps the active persistence adapter, optionally reloading
// all collections from it. Called by the session manager on login.
func (s *Store) UseAdapter(ctx context.Context, adapter persist.Adapter, reload bool) error {
	s.stopWatch()

	s.mu.Lock()
	s.adapter = adapter
	s.mu.Unlock()

	if reload {
		snap, err := adapter.Load(ctx)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		s.applySnapshot(snap)
	}

	return s.startWatch(adapter)
}

// Reset clears every in-memory collection and reinstates the given
// adapter WITHOUT loading from it. Called on logout: local storage is a
// pre-login staging area, not a cache of remote data.
func (s *Store) Reset(adapter persist.Adapter) {
	s.stopWatch()

	s.mu.Lock()
	s.adapter = adapter
	s.expenses = nil
	s.income = nil
	s.subs = nil
	s.goal = DefaultGoal
	s.currency = core.DefaultCurrency
	s.mu.Unlock()

	if err := s.startWatch(adapter); err != nil {
		slog.Error("Watch restart failed after reset", "error", err, "component", "store")
	}
}

// Notifications is the session-wide channel for asynchronous failures.
// Sends never block; when nobody is draining, notices are dropped after
// being logged.
func (s *Store) Notifications() <-chan Notice {
	return s.notices
}

func (s *Store) Close(ctx context.Context) error {
	s.stopWatch()
	return s.currentAdapter().Close(ctx)
}

func (s *Store) currentAdapter() persist.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adapter
}

func (s *Store) remote() bool {
	return s.currentAdapter().Kind() == persist.KindRemote
}

func (s *Store) startWatch(adapter persist.Adapter) error {
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
		s.runCtx = ctx
	}
	wctx, cancel := context.WithCancel(ctx)

	ch, err := adapter.Watch(wctx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch: %w", err)
	}

	done := make(chan struct{})
	s.watchCancel = cancel
	s.watchDone = done

	go func() {
		defer close(done)
		for ev := range ch {
			s.applyEvent(ev)
		}
	}()
	return nil
}

func (s *Store) stopWatch() {
	if s.watchCancel == nil {
		return
	}
	s.watchCancel()
	<-s.watchDone
	s.watchCancel = nil
	s.watchDone = nil
}

// applyEvent replaces the named collection wholesale: pushes are
// authoritative, last-writer-wins at collection granularity.
func (s *Store) applyEvent(ev persist.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Collection {
	case persist.Expenses:
		s.expenses = transactions(ev.Items)
	case persist.Income:
		s.income = transactions(ev.Items)
	case persist.Subscriptions:
		s.subs = subscriptions(ev.Items)
	}
}

func (s *Store) applySnapshot(snap persist.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses = transactions(snap.Expenses)
	s.income = transactions(snap.Income)
	s.subs = subscriptions(snap.Subscriptions)
	if snap.Goal != nil {
		s.goal = snap.Goal.Goal()
	}
	if snap.Currency != nil {
		s.currency = snap.Currency.Currency()
	}
}

func (s *Store) notify(op, collection string, err error) {
	n := Notice{Op: op, Collection: collection, Err: err, At: time.Now()}
	select {
	case s.notices <- n:
	default:
		slog.Warn("Notification dropped, channel full",
			"operation", op, "collection", collection, "error", err, "component", "store")
	}
}

func (s *Store) publish(ctx context.Context, collection, op, id string) {
	if s.relay == nil {
		return
	}
	if err := s.relay.RecordChanged(ctx, collection, op, id); err != nil {
		// Mirroring is best effort; the mutation already succeeded.
		slog.WarnContext(ctx, "Failed to publish change event",
			"collection", collection, "operation", op, "id", id, "error", err,
			"component", "store")
	}
}

func transactions(items []persist.Item) []core.Transaction {
	out := make([]core.Transaction, len(items))
	for i, it := range items {
		out[i] = it.Transaction()
	}
	return out
}

func subscriptions(items []persist.Item) []core.Subscription {
	out := make([]core.Subscription, len(items))
	for i, it := range items {
		out[i] = it.Subscription()
	}
	return out
}
