// Package sqlite implements the local persistence variant: durable
// key-value storage scoped to the device, one JSON blob per finance key.
// It is the single-writer staging area used before login; no network, no
// conflict, and its watch channel never fires.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/persist"
)

type Store struct {
	db *sql.DB
}

var _ persist.Adapter = (*Store)(nil)
var _ persist.Clearer = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Kind() persist.Kind { return persist.KindLocal }

func (s *Store) Close(context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func collectionKey(c persist.Collection) string {
	switch c {
	case persist.Expenses:
		return persist.KeyExpenses
	case persist.Income:
		return persist.KeyIncome
	case persist.Subscriptions:
		return persist.KeySubs
	}
	return ""
}

func (s *Store) Load(ctx context.Context) (persist.Snapshot, error) {
	var snap persist.Snapshot

	for _, c := range persist.Collections {
		items, err := s.readItems(ctx, collectionKey(c))
		if err != nil {
			return persist.Snapshot{}, fmt.Errorf("load %s: %w", c, err)
		}
		switch c {
		case persist.Expenses:
			snap.Expenses = items
		case persist.Income:
			snap.Income = items
		case persist.Subscriptions:
			snap.Subscriptions = items
		}
	}

	raw, err := s.get(ctx, persist.KeyGoal)
	if err != nil {
		return persist.Snapshot{}, fmt.Errorf("load goal: %w", err)
	}
	if raw != "" {
		var g persist.SavedGoal
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return persist.Snapshot{}, fmt.Errorf("decode goal: %w", err)
		}
		snap.Goal = &g
	}

	raw, err = s.get(ctx, persist.KeyCurrency)
	if err != nil {
		return persist.Snapshot{}, fmt.Errorf("load currency: %w", err)
	}
	if raw != "" {
		var c persist.SavedCurrency
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return persist.Snapshot{}, fmt.Errorf("decode currency: %w", err)
		}
		snap.Currency = &c
	}

	return snap, nil
}

func (s *Store) SaveCollection(ctx context.Context, c persist.Collection, items []persist.Item) error {
	return s.writeItems(ctx, collectionKey(c), items)
}

// AppendRecord prepends the record so reverse-chronological display needs
// no sort when records arrive in real time.
func (s *Store) AppendRecord(ctx context.Context, c persist.Collection, item persist.Item) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	key := collectionKey(c)
	items, err := s.readItems(ctx, key)
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c, err)
	}
	items = append([]persist.Item{item}, items...)
	if err := s.writeItems(ctx, key, items); err != nil {
		return "", fmt.Errorf("append to %s: %w", c, err)
	}

	slog.DebugContext(ctx, "Record appended locally", "collection", string(c), "id", item.ID)
	return item.ID, nil
}

func (s *Store) DeleteRecord(ctx context.Context, c persist.Collection, id string) error {
	key := collectionKey(c)
	items, err := s.readItems(ctx, key)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c, err)
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil // absent id is a no-op
	}
	return s.writeItems(ctx, key, kept)
}

func (s *Store) SaveGoal(ctx context.Context, g persist.SavedGoal) error {
	return s.putJSON(ctx, persist.KeyGoal, g)
}

func (s *Store) SaveCurrency(ctx context.Context, c persist.SavedCurrency) error {
	return s.putJSON(ctx, persist.KeyCurrency, c)
}

// Watch satisfies the adapter contract; the local store is single-writer
// so the channel never carries an event.
func (s *Store) Watch(ctx context.Context) (<-chan persist.Event, error) {
	ch := make(chan persist.Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Clear removes every finance key, including the legacy user blob. Called
// once after a migration is confirmed committed remotely.
func (s *Store) Clear(ctx context.Context) error {
	keys := []string{
		persist.KeyExpenses, persist.KeyIncome, persist.KeySubs,
		persist.KeyGoal, persist.KeyCurrency, persist.KeyUser,
	}
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}
	slog.InfoContext(ctx, "Local finance keys cleared", "component", "persist")
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.put(ctx, key, string(b))
}

func (s *Store) readItems(ctx context.Context, key string) ([]persist.Item, error) {
	raw, err := s.get(ctx, key)
	if err != nil || raw == "" {
		return nil, err
	}
	var items []persist.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func (s *Store) writeItems(ctx context.Context, key string, items []persist.Item) error {
	if items == nil {
		items = []persist.Item{}
	}
	return s.putJSON(ctx, key, items)
}
