// Package assistant exposes the engine's read model to the external chat
// service: a read-only context string derived from the live financial
// snapshot, and a thin client for the chat completions API. Transport
// failures and response parsing beyond the reply text are the caller's
// concern, not the engine's.
package assistant

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

const (
	topCategories      = 5
	recentTransactions = 3
)

// Context renders the financial snapshot as the context block injected
// into the conversational request. All amounts go through the active
// currency preference.
func Context(v finance.View) string {
	cur := v.Currency

	var b strings.Builder
	b.WriteString("Current Financial Context:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", cur.Format(v.Totals.Income))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", cur.Format(v.Totals.Expenses))
	fmt.Fprintf(&b, "- Net Savings: %s\n", cur.Format(v.Totals.Net))
	fmt.Fprintf(&b, "- Monthly Subscriptions: %s\n", cur.Format(v.Totals.MonthlySubscriptions))
	fmt.Fprintf(&b, "- Savings Goal: %s (Current: %s)\n",
		cur.Format(v.Goal.Target), cur.Format(v.Totals.Net))

	if cats := topExpenseCategories(v.Expenses); len(cats) > 0 {
		parts := make([]string, len(cats))
		for i, c := range cats {
			parts[i] = fmt.Sprintf("%s: %s", c.Name, cur.Format(c.Amount))
		}
		fmt.Fprintf(&b, "- Top Expense Categories: %s\n", strings.Join(parts, ", "))
	}

	if len(v.Expenses) > 0 {
		n := recentTransactions
		if len(v.Expenses) < n {
			n = len(v.Expenses)
		}
		parts := make([]string, n)
		for i, e := range v.Expenses[:n] {
			parts[i] = fmt.Sprintf("%s: %s -%s", e.Date.ISO(), e.Label, cur.Format(e.Amount))
		}
		fmt.Fprintf(&b, "- Recent Transactions: %s\n", strings.Join(parts, ", "))
	}

	return b.String()
}

// topExpenseCategories returns the category breakdown ordered by summed
// amount, largest first, capped to the context budget.
func topExpenseCategories(expenses []core.Transaction) []core.CategoryAmount {
	cats := core.CategoryBreakdown(expenses)
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Amount.Cents > cats[j].Amount.Cents
	})
	if len(cats) > topCategories {
		cats = cats[:topCategories]
	}
	return cats
}
