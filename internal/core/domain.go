package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly Cycle = "monthly"
	Yearly  Cycle = "yearly"
)

type (
	// Cycle is the billing period of a subscription.
	Cycle string

	// Date is a calendar date with no time component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single expense or income record. Expenses and income
	// share the shape but live in disjoint collections: Label is a closed-set
	// category for expenses and a free-form source for income.
	Transaction struct {
		ID     string `json:"id"`
		Amount Money  `json:"amount"`
		Label  string `json:"label"`
		Note   string `json:"note,omitempty"`
		Date   Date   `json:"date"`
	}

	// Subscription is a recurring commitment, not a historical event. It has
	// no date of occurrence, only a forward-looking due date.
	Subscription struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Amount  Money  `json:"amount"`
		Cycle   Cycle  `json:"cycle"`
		NextDue Date   `json:"next_due"`
	}

	// SavingsGoal holds the savings target. Current is informational only:
	// progress is always derived from net savings, never from this field.
	SavingsGoal struct {
		Target   Money `json:"target"`
		Deadline Date  `json:"deadline"`
		Current  Money `json:"current"`
	}

	// Identity is the resolved authentication identity. Its fields come from
	// the auth provider and are never overridden by profile data.
	Identity struct {
		UID      string `json:"uid"`
		Name     string `json:"name"`
		Email    string `json:"email,omitempty"`
		PhotoURL string `json:"photo_url,omitempty"`
	}

	// Profile holds the optional user-editable fields stored alongside the
	// currency and goal in the remote profile document.
	Profile struct {
		Name     string `json:"name,omitempty"`
		Birthday string `json:"birthday,omitempty"`
		Job      string `json:"job,omitempty"`
		Bio      string `json:"bio,omitempty"`
		PhotoURL string `json:"photo_url,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyLabel      = errors.New("empty label")
	ErrUnknownCategory = errors.New("unknown expense category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidCycle    = errors.New("invalid cycle")
	ErrMissingDate     = errors.New("missing date")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO 8601 calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO renders the date as 2006-01-02, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthKey returns the year-month prefix (2006-01) used for series
// bucketing, or "" for the zero date.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (c Cycle) Valid() bool {
	return c == Monthly || c == Yearly
}

// MonthlyAmount normalizes the subscription cost to a monthly figure:
// yearly amounts are divided by 12 with half-up rounding.
func (s Subscription) MonthlyAmount() Money {
	if s.Cycle == Yearly {
		return Money{Cents: (s.Amount.Cents + 6) / 12}
	}
	return s.Amount
}

// ValidateExpense checks a transaction destined for the expense collection.
// The label must belong to the category enumeration.
func (t Transaction) ValidateExpense() error {
	if err := t.validateCommon(); err != nil {
		return err
	}
	if !IsCategory(t.Label) {
		return ErrUnknownCategory
	}
	return nil
}

// ValidateIncome checks a transaction destined for the income collection.
// The label is a free-form source.
func (t Transaction) ValidateIncome() error {
	return t.validateCommon()
}

func (t Transaction) validateCommon() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrEmptyLabel
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (s Subscription) Validate() error {
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !s.Cycle.Valid() {
		return ErrInvalidCycle
	}
	if s.NextDue.IsZero() {
		return ErrMissingDate
	}
	return nil
}
