package persist

import "fintrack/internal/core"

// Item is the flat record envelope shared by all backends. Transactions
// fill Label/Note/Date, subscriptions fill Name/Cycle/NextDue; amounts are
// integer cents and dates ISO 8601 calendar dates.
type Item struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	AmountCents int64  `json:"amount_cents" bson:"amountCents"`
	Label       string `json:"label,omitempty" bson:"label,omitempty"`
	Note        string `json:"note,omitempty" bson:"note,omitempty"`
	Date        string `json:"date,omitempty" bson:"date,omitempty"`
	Name        string `json:"name,omitempty" bson:"name,omitempty"`
	Cycle       string `json:"cycle,omitempty" bson:"cycle,omitempty"`
	NextDue     string `json:"next_due,omitempty" bson:"nextDue,omitempty"`
}

// SavedGoal is the stored form of the savings goal scalar.
type SavedGoal struct {
	TargetCents  int64  `json:"target_cents" bson:"targetCents"`
	Deadline     string `json:"deadline,omitempty" bson:"deadline,omitempty"`
	CurrentCents int64  `json:"current_cents" bson:"currentCents"`
}

// SavedCurrency is the stored form of the currency preference.
type SavedCurrency struct {
	Code   string  `json:"code" bson:"code"`
	Symbol string  `json:"symbol" bson:"symbol"`
	Rate   float64 `json:"rate" bson:"rate"`
}

func FromTransaction(t core.Transaction) Item {
	return Item{
		ID:          t.ID,
		AmountCents: t.Amount.Cents,
		Label:       t.Label,
		Note:        t.Note,
		Date:        t.Date.ISO(),
	}
}

func FromSubscription(s core.Subscription) Item {
	return Item{
		ID:          s.ID,
		AmountCents: s.Amount.Cents,
		Name:        s.Name,
		Cycle:       string(s.Cycle),
		NextDue:     s.NextDue.ISO(),
	}
}

// Transaction converts the envelope back to the domain type. An
// unparseable date becomes the zero date rather than an error so one bad
// stored record cannot poison a whole collection load.
func (i Item) Transaction() core.Transaction {
	d, _ := core.ParseDate(i.Date)
	return core.Transaction{
		ID:     i.ID,
		Amount: core.Money{Cents: i.AmountCents},
		Label:  i.Label,
		Note:   i.Note,
		Date:   d,
	}
}

func (i Item) Subscription() core.Subscription {
	d, _ := core.ParseDate(i.NextDue)
	return core.Subscription{
		ID:      i.ID,
		Amount:  core.Money{Cents: i.AmountCents},
		Name:    i.Name,
		Cycle:   core.Cycle(i.Cycle),
		NextDue: d,
	}
}

func FromGoal(g core.SavingsGoal) SavedGoal {
	return SavedGoal{
		TargetCents:  g.Target.Cents,
		Deadline:     g.Deadline.ISO(),
		CurrentCents: g.Current.Cents,
	}
}

func (g SavedGoal) Goal() core.SavingsGoal {
	d, _ := core.ParseDate(g.Deadline)
	return core.SavingsGoal{
		Target:   core.Money{Cents: g.TargetCents},
		Deadline: d,
		Current:  core.Money{Cents: g.CurrentCents},
	}
}

func FromCurrency(c core.Currency) SavedCurrency {
	return SavedCurrency{Code: c.Code, Symbol: c.Symbol, Rate: c.Rate}
}

func (c SavedCurrency) Currency() core.Currency {
	return core.Currency{Code: c.Code, Symbol: c.Symbol, Rate: c.Rate}
}
