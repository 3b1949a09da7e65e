// Package calendar defines the school-year month cycle: an ordered list of
// regular billing months followed by one terminal deposit month.
package calendar

import (
	"fmt"
	"strings"

	"github.com/mmynk/feeledger/internal/models"
)

// DefaultRegularMonths are the billing months of a school year, in order.
var DefaultRegularMonths = []string{
	"Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre",
}

// DefaultDepositMonth closes the school year and accepts partial payments.
const DefaultDepositMonth = "Diciembre"

// Calendar is the month cycle of one school year. It is immutable once built.
type Calendar struct {
	year    string
	regular []string
	deposit string
	ordinal map[string]int
}

// New returns the default cycle for the given year label, e.g. "2025".
func New(year string) *Calendar {
	cal, err := NewWithMonths(year, DefaultRegularMonths, DefaultDepositMonth)
	if err != nil {
		// the defaults are valid for any year label
		panic(err)
	}
	return cal
}

// NewWithMonths builds a custom cycle. Month names must be non-empty and unique.
func NewWithMonths(year string, regular []string, deposit string) (*Calendar, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		return nil, fmt.Errorf("year label cannot be empty")
	}
	if len(regular) == 0 {
		return nil, fmt.Errorf("calendar needs at least one regular month")
	}

	c := &Calendar{
		year:    year,
		regular: make([]string, len(regular)),
		ordinal: make(map[string]int, len(regular)+1),
	}
	for i, name := range regular {
		label, err := c.label(name)
		if err != nil {
			return nil, err
		}
		if _, dup := c.ordinal[label]; dup {
			return nil, fmt.Errorf("duplicate month %q", name)
		}
		c.regular[i] = label
		c.ordinal[label] = i
	}

	label, err := c.label(deposit)
	if err != nil {
		return nil, err
	}
	if _, dup := c.ordinal[label]; dup {
		return nil, fmt.Errorf("deposit month %q is also a regular month", deposit)
	}
	c.deposit = label
	c.ordinal[label] = len(regular)

	return c, nil
}

func (c *Calendar) label(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("month name cannot be empty")
	}
	return name + " " + c.year, nil
}

// Year returns the year label the calendar was built for.
func (c *Calendar) Year() string { return c.year }

// RegularMonths returns the regular month labels in billing order.
func (c *Calendar) RegularMonths() []string {
	out := make([]string, len(c.regular))
	copy(out, c.regular)
	return out
}

// DepositMonth returns the label of the terminal deposit month.
func (c *Calendar) DepositMonth() string { return c.deposit }

// FirstRegular returns the first regular month label.
func (c *Calendar) FirstRegular() string { return c.regular[0] }

// LastRegular returns the last regular month label.
func (c *Calendar) LastRegular() string { return c.regular[len(c.regular)-1] }

// Ordinal returns the position of label in the cycle, or -1 if the label is
// not part of this calendar. The deposit month sorts after every regular month.
func (c *Calendar) Ordinal(label string) int {
	if i, ok := c.ordinal[label]; ok {
		return i
	}
	return -1
}

// IsRegular reports whether label is one of the regular months.
func (c *Calendar) IsRegular(label string) bool {
	i := c.Ordinal(label)
	return i >= 0 && i < len(c.regular)
}

// IsDeposit reports whether label is the deposit month.
func (c *Calendar) IsDeposit(label string) bool {
	return label == c.deposit
}

// KindOf classifies label. Unknown labels are reported as regular.
func (c *Calendar) KindOf(label string) models.PaymentKind {
	if c.IsDeposit(label) {
		return models.PaymentKindDeposit
	}
	return models.PaymentKindRegular
}

// MonthsFrom returns the regular months from label through the last regular
// month, inclusive. It returns nil when label is not a regular month.
func (c *Calendar) MonthsFrom(label string) []string {
	if !c.IsRegular(label) {
		return nil
	}
	return c.RegularMonths()[c.Ordinal(label):]
}
