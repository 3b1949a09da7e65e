package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/models"
)

// MonthStatus is one regular month of a student's ledger.
type MonthStatus struct {
	Month   string
	Paid    decimal.Decimal
	Settled bool

	// Outstanding is price minus Paid for an unsettled month, zero otherwise.
	// It is below the price when a month was paid before a price raise.
	Outstanding decimal.Decimal

	// NextSequence is the sequence the next paid record of this month must carry.
	NextSequence int
}

// StudentLedger is the settlement state of one student for one school year.
type StudentLedger struct {
	StudentID string
	Price     decimal.Decimal

	// Months holds every regular month in calendar order.
	Months []MonthStatus

	// NextDueMonth is the first unsettled regular month. Empty when Current.
	NextDueMonth string
	Current      bool

	// MonthsRemaining counts regular months from NextDueMonth through the
	// last regular month, inclusive. Zero when Current.
	MonthsRemaining int

	TotalDeposited decimal.Decimal
	DepositBalance decimal.Decimal
	DepositSettled bool
}

// Month returns the status of a regular month.
func (l StudentLedger) Month(label string) (MonthStatus, bool) {
	for _, m := range l.Months {
		if m.Month == label {
			return m, true
		}
	}
	return MonthStatus{}, false
}

// ComputeLedger derives a student's ledger from their price and payments.
// Payments of other students and non-paid records are ignored. The result
// only depends on per-month sums, so payment order does not matter.
func ComputeLedger(cal *calendar.Calendar, student models.Student, payments []models.PaymentRecord, tol Tolerances) StudentLedger {
	tallies := make(map[string]monthTally)
	for _, p := range payments {
		if p.StudentID != student.ID || !p.Counts() {
			continue
		}
		tallies[p.MonthLabel] = tallies[p.MonthLabel].add(p)
	}
	return ledgerFromTallies(cal, student, tallies, tol)
}

// ComputeLedgers computes the ledger of every student, indexing payments once.
func ComputeLedgers(cal *calendar.Calendar, students []models.Student, payments []models.PaymentRecord, tol Tolerances) map[string]StudentLedger {
	tallies := make(map[string]map[string]monthTally, len(students))
	for _, p := range payments {
		if !p.Counts() {
			continue
		}
		byMonth, ok := tallies[p.StudentID]
		if !ok {
			byMonth = make(map[string]monthTally)
			tallies[p.StudentID] = byMonth
		}
		byMonth[p.MonthLabel] = byMonth[p.MonthLabel].add(p)
	}

	ledgers := make(map[string]StudentLedger, len(students))
	for _, s := range students {
		ledgers[s.ID] = ledgerFromTallies(cal, s, tallies[s.ID], tol)
	}
	return ledgers
}

// monthTally accumulates the paid records of one student and month.
type monthTally struct {
	paid decimal.Decimal
	next int
}

func (t monthTally) add(p models.PaymentRecord) monthTally {
	t.paid = t.paid.Add(p.Amount)
	if p.Kind != models.PaymentKindDeposit && p.Sequence >= t.next {
		t.next = p.Sequence + 1
	}
	return t
}

func ledgerFromTallies(cal *calendar.Calendar, student models.Student, tallies map[string]monthTally, tol Tolerances) StudentLedger {
	price := student.MonthlyPrice
	free := !price.IsPositive()
	threshold := price.Sub(tol.RegularMonth)

	months := cal.RegularMonths()
	ledger := StudentLedger{
		StudentID: student.ID,
		Price:     price,
		Months:    make([]MonthStatus, len(months)),
		Current:   true,
	}

	for i, month := range months {
		tally := tallies[month]
		settled := free || tally.paid.GreaterThanOrEqual(threshold)
		ledger.Months[i] = MonthStatus{
			Month:        month,
			Paid:         tally.paid,
			Settled:      settled,
			Outstanding:  decimal.Zero,
			NextSequence: tally.next,
		}
		if !settled {
			ledger.Months[i].Outstanding = price.Sub(tally.paid)
		}

		if !settled && ledger.Current {
			ledger.Current = false
			ledger.NextDueMonth = month
			ledger.MonthsRemaining = len(months) - i
		}
	}

	ledger.TotalDeposited = tallies[cal.DepositMonth()].paid
	balance := price.Sub(ledger.TotalDeposited)
	if free || balance.IsNegative() {
		balance = decimal.Zero
	}
	ledger.DepositBalance = balance
	ledger.DepositSettled = balance.LessThanOrEqual(tol.Deposit)

	return ledger
}
