package core

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var formatPrinter = message.NewPrinter(language.English)

// Format renders m using this currency's symbol, two fixed decimal places
// and locale-aware thousands grouping: Money{Cents: 123450} with "$"
// becomes "$1,234.50".
//
// The rate is applied as a display-time multiplier only; the stored amount
// is never touched.
func (c Currency) Format(m Money) string {
	rate := c.Rate
	if rate <= 0 {
		rate = 1
	}
	v := m.Float() * rate
	return formatPrinter.Sprintf("%s%v", c.Symbol,
		number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
