package calculator

import "github.com/shopspring/decimal"

// Tolerances are the rounding allowances used when comparing money.
// They are independent: regular months tolerate a larger gap than the
// deposit month.
type Tolerances struct {
	// RegularMonth is how far below the price a regular month may be and
	// still count as settled.
	RegularMonth decimal.Decimal

	// Deposit is the largest deposit balance still considered settled. It
	// is also the threshold above which a student counts as a debtor.
	Deposit decimal.Decimal

	// Overpay is how far a deposit may exceed the family's deposit debt
	// before it is rejected.
	Overpay decimal.Decimal
}

// DefaultTolerances returns 0.1 for regular months, 0.01 for the deposit
// month and 0.1 for deposit overpayment.
func DefaultTolerances() Tolerances {
	return Tolerances{
		RegularMonth: decimal.RequireFromString("0.1"),
		Deposit:      decimal.RequireFromString("0.01"),
		Overpay:      decimal.RequireFromString("0.1"),
	}
}

var cent = decimal.New(1, -2)

// floorCents truncates a non-negative amount to whole cents.
func floorCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(2)
}
