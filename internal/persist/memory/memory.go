// Package memory is the map-backed persistence variant used in tests and
// as the default dev backend. It can impersonate either adapter kind and
// lets tests inject write failures and push authoritative snapshots.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/persist"
)

type Store struct {
	mu       sync.Mutex
	kind     persist.Kind
	records  map[persist.Collection][]persist.Item
	goal     *persist.SavedGoal
	currency *persist.SavedCurrency
	profile  core.Profile

	watchers []chan persist.Event

	// FailWrites, when set, is returned by every mutating operation.
	// Tests use it to exercise durability-error paths.
	FailWrites error
}

var _ persist.Adapter = (*Store)(nil)
var _ persist.Clearer = (*Store)(nil)

func New() *Store {
	return &Store{
		kind:    persist.KindMemory,
		records: make(map[persist.Collection][]persist.Item),
	}
}

// NewRemote returns a memory store that reports the remote kind, standing
// in for the document store in tests.
func NewRemote() *Store {
	s := New()
	s.kind = persist.KindRemote
	return s
}

func (s *Store) Kind() persist.Kind { return s.kind }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) Load(context.Context) (persist.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persist.Snapshot{
		Expenses:      append([]persist.Item(nil), s.records[persist.Expenses]...),
		Income:        append([]persist.Item(nil), s.records[persist.Income]...),
		Subscriptions: append([]persist.Item(nil), s.records[persist.Subscriptions]...),
		Goal:          s.goal,
		Currency:      s.currency,
	}, nil
}

func (s *Store) SaveCollection(_ context.Context, c persist.Collection, items []persist.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.records[c] = append([]persist.Item(nil), items...)
	return nil
}

func (s *Store) AppendRecord(_ context.Context, c persist.Collection, item persist.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return "", s.FailWrites
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	// Keeping a pre-assigned id makes retried appends idempotent.
	for i, existing := range s.records[c] {
		if existing.ID == item.ID {
			s.records[c][i] = item
			return item.ID, nil
		}
	}
	s.records[c] = append([]persist.Item{item}, s.records[c]...)
	return item.ID, nil
}

func (s *Store) DeleteRecord(_ context.Context, c persist.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	items := s.records[c]
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.records[c] = kept
	return nil
}

func (s *Store) SaveGoal(_ context.Context, g persist.SavedGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.goal = &g
	return nil
}

func (s *Store) SaveCurrency(_ context.Context, c persist.SavedCurrency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.currency = &c
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan persist.Event, error) {
	ch := make(chan persist.Event, 8)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Push delivers an authoritative snapshot to every watcher, simulating the
// remote backend's server-push model.
func (s *Store) Push(c persist.Collection, items []persist.Item) {
	s.mu.Lock()
	s.records[c] = append([]persist.Item(nil), items...)
	watchers := append([]chan persist.Event(nil), s.watchers...)
	s.mu.Unlock()

	for _, w := range watchers {
		w <- persist.Event{Collection: c, Items: items}
	}
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.records = make(map[persist.Collection][]persist.Item)
	s.goal = nil
	s.currency = nil
	return nil
}

// LoadProfile and SaveProfile mirror the remote profile document so the
// session tests can run against memory stores.
func (s *Store) LoadProfile(context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	// Merge semantics: empty fields never overwrite stored ones.
	if p.Name != "" {
		s.profile.Name = p.Name
	}
	if p.Birthday != "" {
		s.profile.Birthday = p.Birthday
	}
	if p.Job != "" {
		s.profile.Job = p.Job
	}
	if p.Bio != "" {
		s.profile.Bio = p.Bio
	}
	if p.PhotoURL != "" {
		s.profile.PhotoURL = p.PhotoURL
	}
	return nil
}
