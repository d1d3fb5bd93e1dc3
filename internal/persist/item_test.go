package persist

import (
	"testing"

	"fintrack/internal/core"
)

func TestTransactionEnvelope(t *testing.T) {
	tx := core.Transaction{
		ID:     "abc",
		Amount: core.Money{Cents: 1234},
		Label:  "Food",
		Note:   "groceries",
		Date:   core.NewDate(2025, 6, 1),
	}
	got := FromTransaction(tx).Transaction()
	if got != tx {
		t.Fatalf("round trip: got %+v, want %+v", got, tx)
	}
}

func TestSubscriptionEnvelope(t *testing.T) {
	sub := core.Subscription{
		ID:      "s1",
		Name:    "Netflix",
		Amount:  core.Money{Cents: 1599},
		Cycle:   core.Monthly,
		NextDue: core.NewDate(2025, 7, 1),
	}
	got := FromSubscription(sub).Subscription()
	if got != sub {
		t.Fatalf("round trip: got %+v, want %+v", got, sub)
	}
}

func TestItemBadDateBecomesZero(t *testing.T) {
	it := Item{ID: "x", AmountCents: 100, Label: "Food", Date: "not-a-date"}
	if !it.Transaction().Date.IsZero() {
		t.Fatalf("unparseable date must map to the zero date")
	}
}

func TestSnapshotEmpty(t *testing.T) {
	if !(Snapshot{}).Empty() {
		t.Fatalf("zero snapshot must be empty")
	}
	if (Snapshot{Expenses: []Item{{ID: "1"}}}).Empty() {
		t.Fatalf("snapshot with records must not be empty")
	}
	if (Snapshot{Currency: &SavedCurrency{Code: "USD"}}).Empty() {
		t.Fatalf("snapshot with a scalar must not be empty")
	}
}
