package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/persist"
)

// TransactionInput carries the raw caller-supplied fields of a new expense
// or income record. Amount is a decimal string; Note and Date may be empty
// and default to the label and today's date.
type TransactionInput struct {
	Amount string `json:"amount"`
	Label  string `json:"label"`
	Note   string `json:"note"`
	Date   string `json:"date"`
}

// SubscriptionInput carries the raw fields of a new subscription.
type SubscriptionInput struct {
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Cycle   string `json:"cycle"`
	NextDue string `json:"next_due"`
}

// AddExpense validates, assigns an id and defaults, prepends the record
// and delegates the durable write to the active adapter.
func (s *Store) AddExpense(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx, err := s.buildTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := tx.ValidateExpense(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.appendTransaction(ctx, persist.Expenses, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) AddIncome(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx, err := s.buildTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := tx.ValidateIncome(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.appendTransaction(ctx, persist.Income, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) AddSubscription(ctx context.Context, in SubscriptionInput) (core.Subscription, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Subscription{}, err
	}
	due, err := core.ParseDate(in.NextDue)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("%w: %s", core.ErrMissingDate, in.NextDue)
	}
	sub := core.Subscription{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Amount:  amount,
		Cycle:   core.Cycle(strings.ToLower(strings.TrimSpace(in.Cycle))),
		NextDue: due,
	}
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	item := persist.FromSubscription(sub)
	if err := s.durableAppend(ctx, persist.Subscriptions, item, func() {
		s.subs = append([]core.Subscription{sub}, s.subs...)
	}); err != nil {
		return core.Subscription{}, err
	}
	s.publish(ctx, string(persist.Subscriptions), "add", sub.ID)
	return sub, nil
}

func (s *Store) RemoveExpense(ctx context.Context, id string) error {
	return s.removeTransaction(ctx, persist.Expenses, id)
}

func (s *Store) RemoveIncome(ctx context.Context, id string) error {
	return s.removeTransaction(ctx, persist.Income, id)
}

// RemoveSubscription removes the subscription with the given id; absent
// ids are a no-op, not an error.
func (s *Store) RemoveSubscription(ctx context.Context, id string) error {
	apply := func() {
		kept := s.subs[:0]
		for _, sub := range s.subs {
			if sub.ID != id {
				kept = append(kept, sub)
			}
		}
		s.subs = kept
	}
	if err := s.durableDelete(ctx, persist.Subscriptions, id, apply); err != nil {
		return err
	}
	s.publish(ctx, string(persist.Subscriptions), "remove", id)
	return nil
}

// SetGoal replaces the savings goal wholesale; there is no partial-field
// merge at this layer.
func (s *Store) SetGoal(ctx context.Context, g core.SavingsGoal) error {
	if g.Target.Cents <= 0 {
		return core.ErrInvalidAmount
	}

	saved := persist.FromGoal(g)
	err := s.durableScalar(ctx, "goal", func(ctx context.Context, a persist.Adapter) error {
		return a.SaveGoal(ctx, saved)
	}, func() {
		s.goal = g
	})
	if err != nil {
		return err
	}
	s.publish(ctx, "goal", "set", "")
	return nil
}

// SetCurrency replaces the display preference. Stored amounts are never
// rewritten; the switch is presentation-only.
func (s *Store) SetCurrency(ctx context.Context, c core.Currency) error {
	if c.Code == "" || c.Symbol == "" {
		return fmt.Errorf("currency preference requires code and symbol")
	}

	saved := persist.FromCurrency(c)
	err := s.durableScalar(ctx, "currency", func(ctx context.Context, a persist.Adapter) error {
		return a.SaveCurrency(ctx, saved)
	}, func() {
		s.currency = c
	})
	if err != nil {
		return err
	}
	s.publish(ctx, "currency", "set", c.Code)
	return nil
}

func (s *Store) buildTransaction(in TransactionInput) (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	label := strings.TrimSpace(in.Label)
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = label
	}

	date := core.Today()
	if strings.TrimSpace(in.Date) != "" {
		date, err = core.ParseDate(in.Date)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrMissingDate, in.Date)
		}
	}

	return core.Transaction{
		ID:     uuid.NewString(),
		Amount: amount,
		Label:  label,
		Note:   note,
		Date:   date,
	}, nil
}

func (s *Store) appendTransaction(ctx context.Context, c persist.Collection, tx core.Transaction) error {
	item := persist.FromTransaction(tx)
	apply := func() {
		switch c {
		case persist.Expenses:
			s.expenses = append([]core.Transaction{tx}, s.expenses...)
		case persist.Income:
			s.income = append([]core.Transaction{tx}, s.income...)
		}
	}
	if err := s.durableAppend(ctx, c, item, apply); err != nil {
		return err
	}
	s.publish(ctx, string(c), "add", tx.ID)
	return nil
}

func (s *Store) removeTransaction(ctx context.Context, c persist.Collection, id string) error {
	apply := func() {
		target := &s.expenses
		if c == persist.Income {
			target = &s.income
		}
		kept := (*target)[:0]
		for _, tx := range *target {
			if tx.ID != id {
				kept = append(kept, tx)
			}
		}
		*target = kept
	}
	if err := s.durableDelete(ctx, c, id, apply); err != nil {
		return err
	}
	s.publish(ctx, string(c), "remove", id)
	return nil
}

// durableAppend runs one append with the adapter-kind semantics: remote
// writes are awaited before the in-memory update, local write failures are
// surfaced on the notification channel without blocking the update.
func (s *Store) durableAppend(ctx context.Context, c persist.Collection, item persist.Item, apply func()) error {
	adapter := s.currentAdapter()

	if adapter.Kind() == persist.KindRemote {
		if _, err := adapter.AppendRecord(ctx, c, item); err != nil {
			return fmt.Errorf("append %s: %w", c, err)
		}
		s.mu.Lock()
		apply()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	apply()
	s.mu.Unlock()

	if _, err := adapter.AppendRecord(ctx, c, item); err != nil {
		slog.ErrorContext(ctx, "Local durable write failed, in-memory state kept",
			"collection", string(c), "id", item.ID, "error", err, "component", "store")
		s.notify("append", string(c), err)
	}
	return nil
}

func (s *Store) durableDelete(ctx context.Context, c persist.Collection, id string, apply func()) error {
	adapter := s.currentAdapter()

	if adapter.Kind() == persist.KindRemote {
		if err := adapter.DeleteRecord(ctx, c, id); err != nil {
			return fmt.Errorf("delete from %s: %w", c, err)
		}
		s.mu.Lock()
		apply()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	apply()
	s.mu.Unlock()

	if err := adapter.DeleteRecord(ctx, c, id); err != nil {
		slog.ErrorContext(ctx, "Local durable delete failed, in-memory state kept",
			"collection", string(c), "id", id, "error", err, "component", "store")
		s.notify("delete", string(c), err)
	}
	return nil
}

func (s *Store) durableScalar(ctx context.Context, name string, write func(context.Context, persist.Adapter) error, apply func()) error {
	adapter := s.currentAdapter()

	if adapter.Kind() == persist.KindRemote {
		if err := write(ctx, adapter); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		s.mu.Lock()
		apply()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	apply()
	s.mu.Unlock()

	if err := write(ctx, adapter); err != nil {
		slog.ErrorContext(ctx, "Local durable write failed, in-memory state kept",
			"scalar", name, "error", err, "component", "store")
		s.notify("save", name, err)
	}
	return nil
}
