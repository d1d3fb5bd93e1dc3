// Package persist defines the ports between the record store and the
// durable backends. An Adapter owns no financial state of its own beyond
// transport: the record store is the single source of truth for a session
// and every mutation flows through the active adapter.
package persist

import "context"

// Collection names one of the three record sets.
type Collection string

const (
	Expenses      Collection = "expenses"
	Income        Collection = "income"
	Subscriptions Collection = "subscriptions"
)

// Collections lists all record collections in a stable order.
var Collections = []Collection{Expenses, Income, Subscriptions}

// Kind distinguishes adapter variants. The record store awaits durable
// writes under KindRemote (there is no local fallback copy) and reports
// write failures asynchronously under the other kinds.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
	KindMemory Kind = "memory"
)

// Local storage keys. The sqlite and memory backends store one JSON blob
// per key; KeyUser is legacy and only ever cleared.
const (
	KeyExpenses = "finance_expenses"
	KeyIncome   = "finance_income"
	KeySubs     = "finance_subs"
	KeyGoal     = "finance_goal"
	KeyCurrency = "finance_currency"
	KeyUser     = "finance_user"
)

// Event is an authoritative snapshot push: the named collection has been
// replaced wholesale. The record store is the sole subscriber and applies
// events last-writer-wins at collection granularity, no field-level merge.
type Event struct {
	Collection Collection
	Items      []Item
}

// Snapshot is the full durable state as loaded from a backend. Goal and
// Currency are nil when the backend holds no value for them.
type Snapshot struct {
	Expenses      []Item
	Income        []Item
	Subscriptions []Item
	Goal          *SavedGoal
	Currency      *SavedCurrency
}

// Empty reports whether the snapshot carries no records and no scalars.
func (s Snapshot) Empty() bool {
	return len(s.Expenses) == 0 && len(s.Income) == 0 && len(s.Subscriptions) == 0 &&
		s.Goal == nil && s.Currency == nil
}

// Records returns the items of the named collection.
func (s Snapshot) Records(c Collection) []Item {
	switch c {
	case Expenses:
		return s.Expenses
	case Income:
		return s.Income
	case Subscriptions:
		return s.Subscriptions
	}
	return nil
}

// Adapter is the capability contract every persistence variant satisfies.
type Adapter interface {
	// Kind identifies the variant so callers can pick await semantics.
	Kind() Kind

	// Load reads the full durable state.
	Load(ctx context.Context) (Snapshot, error)

	// SaveCollection replaces the named collection wholesale.
	SaveCollection(ctx context.Context, c Collection, items []Item) error

	// AppendRecord durably adds one record and returns its id. When the
	// item already carries an id the backend must keep it, making retries
	// idempotent.
	AppendRecord(ctx context.Context, c Collection, item Item) (string, error)

	// DeleteRecord removes the record with the given id. Missing ids are
	// not an error.
	DeleteRecord(ctx context.Context, c Collection, id string) error

	// SaveGoal and SaveCurrency persist the two scalars.
	SaveGoal(ctx context.Context, g SavedGoal) error
	SaveCurrency(ctx context.Context, cur SavedCurrency) error

	// Watch returns the channel on which the backend pushes authoritative
	// collection snapshots. Single-writer backends return a channel that
	// never fires; it is closed when ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)

	Close(ctx context.Context) error
}

// Clearer is satisfied by local backends whose keys can be wiped after a
// successful migration to the remote store.
type Clearer interface {
	Clear(ctx context.Context) error
}
