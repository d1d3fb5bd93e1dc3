package finance

import (
	"time"

	"fintrack/internal/core"
)

// View is a copy-on-read snapshot of the whole read model, consumed by the
// presentation layer and the assistant context builder. Totals are derived
// at snapshot time, never cached.
type View struct {
	Expenses      []core.Transaction  `json:"expenses"`
	Income        []core.Transaction  `json:"income"`
	Subscriptions []core.Subscription `json:"subscriptions"`
	Goal          core.SavingsGoal    `json:"goal"`
	Currency      core.Currency       `json:"currency"`
	Totals        core.Totals         `json:"totals"`
}

func (s *Store) Expenses() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.expenses...)
}

func (s *Store) Income() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.income...)
}

func (s *Store) Subscriptions() []core.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Subscription(nil), s.subs...)
}

func (s *Store) Goal() core.SavingsGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goal
}

func (s *Store) Currency() core.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// Totals recomputes the derived aggregates from the live collections.
func (s *Store) Totals() core.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(s.expenses, s.income, s.subs)
}

// Breakdown groups expenses by category for proportional visualization.
func (s *Store) Breakdown() []core.CategoryAmount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CategoryBreakdown(s.expenses)
}

// Series buckets the trailing months ending at the current month.
func (s *Store) Series(window int) []core.MonthBucket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.MonthlySeries(s.expenses, s.income, time.Now().UTC(), window)
}

// Progress is the savings progress percentage, derived from net savings
// against the goal target.
func (s *Store) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	net := core.Summarize(s.expenses, s.income, s.subs).Net
	return core.SavingsProgress(net, s.goal)
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Expenses:      append([]core.Transaction(nil), s.expenses...),
		Income:        append([]core.Transaction(nil), s.income...),
		Subscriptions: append([]core.Subscription(nil), s.subs...),
		Goal:          s.goal,
		Currency:      s.currency,
		Totals:        core.Summarize(s.expenses, s.income, s.subs),
	}
}
