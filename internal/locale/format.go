package locale

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
)

// FormatNumber formats an integer with the grouping rules of the language.
func (t Translator) FormatNumber(n int64) string {
	return message.NewPrinter(t.lang.Tag()).Sprintf("%d", n)
}

// FormatPercent renders an integer percentage.
func (t Translator) FormatPercent(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// FormatBudget renders a rupee amount rounded to whole rupees.
func (t Translator) FormatBudget(amount decimal.Decimal) string {
	return "₹" + t.FormatNumber(amount.Round(0).IntPart())
}

// FormatHours renders a duration in hours with one decimal, e.g. "2.5 hrs".
func (t Translator) FormatHours(hours float64) string {
	return message.NewPrinter(t.lang.Tag()).Sprintf("%.1f", hours) + " " + t.T("units.hours")
}

// FormatDays renders a duration in days with one decimal.
func (t Translator) FormatDays(days float64) string {
	return message.NewPrinter(t.lang.Tag()).Sprintf("%.1f", days) + " " + t.T("units.days")
}

// CategoryKey turns a backend category name into its dictionary slug:
// "Road Damage" and "road-damage" both become "road_damage".
func CategoryKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(name)
}

// Category returns the display name of a backend category. Dictionary entries
// win; otherwise non-English languages go through the machine translator when
// one is attached. The raw name is returned when nothing else applies.
func (t Translator) Category(ctx context.Context, name string) string {
	key := "categories." + CategoryKey(name)
	if s, ok := lookup(tables[t.lang], key); ok {
		return s
	}
	if t.lang == English || t.machine == nil {
		return name
	}
	return t.machine.Translate(ctx, name, t.lang)
}
