package assistant

import (
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

func sampleView() finance.View {
	expenses := []core.Transaction{
		{ID: "e1", Amount: core.Money{Cents: 120050}, Label: "Housing", Note: "Rent", Date: core.NewDate(2026, 8, 1)},
		{ID: "e2", Amount: core.Money{Cents: 4500}, Label: "Food", Note: "Groceries", Date: core.NewDate(2026, 8, 3)},
		{ID: "e3", Amount: core.Money{Cents: 2000}, Label: "Food", Note: "Lunch", Date: core.NewDate(2026, 8, 5)},
	}
	income := []core.Transaction{
		{ID: "i1", Amount: core.Money{Cents: 500000}, Label: "Salary", Date: core.NewDate(2026, 8, 1)},
	}
	subs := []core.Subscription{
		{ID: "s1", Name: "Streaming", Amount: core.Money{Cents: 1500}, Cycle: core.Monthly},
	}
	return finance.View{
		Expenses:      expenses,
		Income:        income,
		Subscriptions: subs,
		Goal:          core.SavingsGoal{Target: core.Money{Cents: 1000000}},
		Currency:      core.DefaultCurrency,
		Totals:        core.Summarize(expenses, income, subs),
	}
}

func TestContextIncludesTotals(t *testing.T) {
	got := Context(sampleView())

	for _, want := range []string{
		"- Total Income: $5,000.00",
		"- Total Expenses: $1,265.50",
		"- Net Savings: $3,734.50",
		"- Monthly Subscriptions: $15.00",
		"- Savings Goal: $10,000.00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
}

func TestContextOrdersCategoriesByAmount(t *testing.T) {
	got := Context(sampleView())

	housing := strings.Index(got, "Housing: $1,200.50")
	food := strings.Index(got, "Food: $65.00")
	if housing < 0 || food < 0 {
		t.Fatalf("breakdown entries missing:\n%s", got)
	}
	if housing > food {
		t.Errorf("categories not ordered by amount:\n%s", got)
	}
}

func TestContextListsRecentTransactions(t *testing.T) {
	got := Context(sampleView())

	if !strings.Contains(got, "2026-08-01: Housing -$1,200.50") {
		t.Errorf("recent transactions missing rent entry:\n%s", got)
	}
}

func TestContextEmptyView(t *testing.T) {
	v := finance.View{Currency: core.DefaultCurrency}
	got := Context(v)

	if strings.Contains(got, "Top Expense Categories") {
		t.Errorf("empty view should omit breakdown:\n%s", got)
	}
	if strings.Contains(got, "Recent Transactions") {
		t.Errorf("empty view should omit transactions:\n%s", got)
	}
	if !strings.Contains(got, "- Total Income: $0.00") {
		t.Errorf("empty view should still render totals:\n%s", got)
	}
}
