package core

import (
	"encoding/json"
	"testing"
)

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(2026, 8, 28)
	if got := d.ISO(); got != "2026-08-28" {
		t.Fatalf("ISO: got %q", got)
	}
	if got := d.MonthKey(); got != "2026-08" {
		t.Fatalf("MonthKey: got %q", got)
	}
	parsed, err := ParseDate("2026-08-28")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Fatalf("parsed %v != %v", parsed, d)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 1, 2))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-01-02"` {
		t.Fatalf("got %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`""`), &d); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("expected zero date")
	}
	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Fatalf("expected error for garbage date")
	}
}

func TestValidateExpense(t *testing.T) {
	good := Transaction{Amount: Money{Cents: 1250}, Label: "Food", Date: NewDate(2025, 6, 1)}
	if err := good.ValidateExpense(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"negative amount", Transaction{Amount: Money{Cents: -1}, Label: "Food", Date: NewDate(2025, 6, 1)}, ErrInvalidAmount},
		{"empty label", Transaction{Amount: Money{Cents: 100}, Label: "  ", Date: NewDate(2025, 6, 1)}, ErrEmptyLabel},
		{"unknown category", Transaction{Amount: Money{Cents: 100}, Label: "Yachts", Date: NewDate(2025, 6, 1)}, ErrUnknownCategory},
		{"missing date", Transaction{Amount: Money{Cents: 100}, Label: "Food"}, ErrMissingDate},
	}
	for _, tc := range cases {
		if err := tc.tx.ValidateExpense(); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestValidateIncomeAllowsFreeFormSource(t *testing.T) {
	tx := Transaction{Amount: Money{Cents: 500000}, Label: "Freelance gig", Date: NewDate(2025, 6, 1)}
	if err := tx.ValidateIncome(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidateSubscription(t *testing.T) {
	good := Subscription{Name: "Netflix", Amount: Money{Cents: 1599}, Cycle: Monthly, NextDue: NewDate(2025, 7, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := []Subscription{
		{Name: "", Amount: Money{Cents: 1}, Cycle: Monthly, NextDue: NewDate(2025, 7, 1)},
		{Name: "x", Amount: Money{Cents: -1}, Cycle: Monthly, NextDue: NewDate(2025, 7, 1)},
		{Name: "x", Amount: Money{Cents: 1}, Cycle: "weekly", NextDue: NewDate(2025, 7, 1)},
		{Name: "x", Amount: Money{Cents: 1}, Cycle: Yearly},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthlyAmount(t *testing.T) {
	yearly := Subscription{Cycle: Yearly, Amount: Money{Cents: 120000}}
	if got := yearly.MonthlyAmount(); got.Cents != 10000 {
		t.Fatalf("yearly 1200.00 should contribute 100.00, got %d cents", got.Cents)
	}
	monthly := Subscription{Cycle: Monthly, Amount: Money{Cents: 1599}}
	if got := monthly.MonthlyAmount(); got.Cents != 1599 {
		t.Fatalf("monthly amount must pass through, got %d cents", got.Cents)
	}
}

func TestCategoryLookups(t *testing.T) {
	if !IsCategory("Housing") || IsCategory("housing") {
		t.Fatalf("category match must be exact")
	}
	if CategoryColor("Food") == "" {
		t.Fatalf("known category must have a color")
	}
	if _, ok := CurrencyByCode("EUR"); !ok {
		t.Fatalf("EUR must be in the catalogue")
	}
	if _, ok := CurrencyByCode("XXX"); ok {
		t.Fatalf("XXX must not be in the catalogue")
	}
}
