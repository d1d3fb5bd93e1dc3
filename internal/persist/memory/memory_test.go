package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/persist"
)

func TestAppendAssignsAndKeepsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.AppendRecord(ctx, persist.Expenses, persist.Item{AmountCents: 100, Label: "Food"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == "" {
		t.Fatalf("expected assigned id")
	}

	// A pre-assigned id survives and a retry replaces instead of duplicating.
	if _, err := s.AppendRecord(ctx, persist.Expenses, persist.Item{ID: "fixed", AmountCents: 200, Label: "Food"}); err != nil {
		t.Fatalf("append fixed: %v", err)
	}
	if _, err := s.AppendRecord(ctx, persist.Expenses, persist.Item{ID: "fixed", AmountCents: 200, Label: "Food"}); err != nil {
		t.Fatalf("retry fixed: %v", err)
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Expenses) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap.Expenses))
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := New()
	if err := s.DeleteRecord(context.Background(), persist.Income, "nope"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestFailWrites(t *testing.T) {
	s := New()
	boom := errors.New("quota exceeded")
	s.FailWrites = boom

	if _, err := s.AppendRecord(context.Background(), persist.Expenses, persist.Item{}); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if err := s.SaveGoal(context.Background(), persist.SavedGoal{TargetCents: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
}

func TestWatchPush(t *testing.T) {
	s := NewRemote()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	s.Push(persist.Income, []persist.Item{{ID: "a", AmountCents: 500, Label: "Salary"}})

	ev := <-ch
	if ev.Collection != persist.Income || len(ev.Items) != 1 || ev.Items[0].ID != "a" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
