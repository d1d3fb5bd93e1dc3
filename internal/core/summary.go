package core

import "time"

// Totals are the derived aggregates over the three collections. They are
// recomputed from the live records on every call and never stored.
type Totals struct {
	Income               Money `json:"income"`
	Expenses             Money `json:"expenses"`
	Net                  Money `json:"net"`
	MonthlySubscriptions Money `json:"monthly_subscriptions"`
}

// CategoryAmount is one slice of the expense breakdown.
type CategoryAmount struct {
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Amount Money  `json:"amount"`
}

// MonthBucket is one entry of the trailing monthly series.
type MonthBucket struct {
	Key      string `json:"key"`   // year-month, e.g. 2026-08
	Label    string `json:"label"` // short month name, e.g. Aug
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
	Net      Money  `json:"net"`
}

// Summarize computes the derived totals. Sums are commutative over record
// order; yearly subscription amounts are normalized to monthly figures.
func Summarize(expenses, income []Transaction, subs []Subscription) Totals {
	var t Totals
	for _, e := range expenses {
		t.Expenses = t.Expenses.Add(e.Amount)
	}
	for _, i := range income {
		t.Income = t.Income.Add(i.Amount)
	}
	for _, s := range subs {
		t.MonthlySubscriptions = t.MonthlySubscriptions.Add(s.MonthlyAmount())
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// CategoryBreakdown groups expenses by category label, summing amounts.
// Entries keep the insertion order of first appearance and categories whose
// sum is not positive are dropped, so the result feeds a proportional chart
// directly.
func CategoryBreakdown(expenses []Transaction) []CategoryAmount {
	sums := make(map[string]int64)
	var order []string
	for _, e := range expenses {
		if _, seen := sums[e.Label]; !seen {
			order = append(order, e.Label)
		}
		sums[e.Label] += e.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		if sums[name] <= 0 {
			continue
		}
		out = append(out, CategoryAmount{
			Name:   name,
			Color:  CategoryColor(name),
			Amount: Money{Cents: sums[name]},
		})
	}
	return out
}

// MonthlySeries buckets income and expense records by year-month over the
// trailing window ending at the month of now, inclusive. It always returns
// exactly window entries in chronological order, zero-filled where no
// records fall. Records outside the window, or with a missing date, are
// skipped.
func MonthlySeries(expenses, income []Transaction, now time.Time, window int) []MonthBucket {
	if window <= 0 {
		window = 6
	}
	buckets := make([]MonthBucket, window)
	index := make(map[string]*MonthBucket, window)
	for i := 0; i < window; i++ {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, i-(window-1), 0)
		buckets[i] = MonthBucket{
			Key:   m.Format("2006-01"),
			Label: m.Format("Jan"),
		}
		index[buckets[i].Key] = &buckets[i]
	}
	for _, t := range income {
		if b, ok := index[t.Date.MonthKey()]; ok {
			b.Income = b.Income.Add(t.Amount)
		}
	}
	for _, t := range expenses {
		if b, ok := index[t.Date.MonthKey()]; ok {
			b.Expenses = b.Expenses.Add(t.Amount)
		}
	}
	for i := range buckets {
		buckets[i].Net = buckets[i].Income.Sub(buckets[i].Expenses)
	}
	return buckets
}

// SavingsProgress returns net/target as a percentage clamped to [0, 100].
// A zero or negative target yields 0, never a division by zero.
func SavingsProgress(net Money, goal SavingsGoal) float64 {
	if goal.Target.Cents <= 0 {
		return 0
	}
	p := float64(net.Cents) / float64(goal.Target.Cents) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
