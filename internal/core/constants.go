package core

// Category is an expense category with its chart color. The set is closed:
// expense labels must match one of these names. Income sources are free-form
// and never checked against this table.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Categories lists the expense categories in display order.
var Categories = []Category{
	{Name: "Housing", Color: "#FF6B6B"},
	{Name: "Food", Color: "#FFD166"},
	{Name: "Transport", Color: "#06D6A0"},
	{Name: "Health", Color: "#118AB2"},
	{Name: "Entertainment", Color: "#EF476F"},
	{Name: "Personal", Color: "#9D4EDD"},
	{Name: "Other", Color: "#8892B0"},
}

// IsCategory reports whether name belongs to the expense category set.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CategoryColor returns the chart color for a category name, or "" when the
// name is not part of the set.
func CategoryColor(name string) string {
	for _, c := range Categories {
		if c.Name == name {
			return c.Color
		}
	}
	return ""
}

// Currency is the active display preference. Exactly one is active at a
// time; switching it never rewrites stored amounts, which stay in the
// implicit base unit. Rate is a presentation multiplier (1 = base unit).
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
}

// Currencies is the selectable currency catalogue.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Rate: 1},
	{Code: "EUR", Symbol: "€", Rate: 1},
	{Code: "GBP", Symbol: "£", Rate: 1},
	{Code: "JPY", Symbol: "¥", Rate: 1},
	{Code: "INR", Symbol: "₹", Rate: 1},
	{Code: "LKR", Symbol: "Rs", Rate: 1},
	{Code: "AUD", Symbol: "A$", Rate: 1},
	{Code: "CAD", Symbol: "C$", Rate: 1},
}

// DefaultCurrency is the preference used before the user picks one.
var DefaultCurrency = Currencies[0]

// CurrencyByCode looks a currency up in the catalogue.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}
