package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/models"
)

// PlannedPayment is a payment record that has been computed but not yet persisted.
type PlannedPayment struct {
	StudentID   string
	StudentName string
	MonthLabel  string
	Kind        models.PaymentKind
	Amount      decimal.Decimal
	Sequence    int
}

// Record converts the plan into a paid record ready for the repository.
func (p PlannedPayment) Record(paidAt int64, recordedBy string) *models.PaymentRecord {
	return &models.PaymentRecord{
		StudentID:  p.StudentID,
		Amount:     p.Amount,
		MonthLabel: p.MonthLabel,
		Kind:       p.Kind,
		Status:     models.PaymentStatusPaid,
		Sequence:   p.Sequence,
		PaidAt:     paidAt,
		RecordedBy: recordedBy,
	}
}

// PlanTotal sums the amounts of a plan.
func PlanTotal(plan []PlannedPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plan {
		total = total.Add(p.Amount)
	}
	return total
}

// regularPayment plans what is still owed on one regular month: the full
// price for an unpaid month, the difference for one paid before a price raise.
func regularPayment(m Member, status MonthStatus) PlannedPayment {
	return PlannedPayment{
		StudentID:   m.Student.ID,
		StudentName: m.Student.DisplayName,
		MonthLabel:  status.Month,
		Kind:        models.PaymentKindRegular,
		Amount:      status.Outstanding,
		Sequence:    status.NextSequence,
	}
}

// PlanOneMonth emits one record for each member whose next due month is the
// family's common due month, for the amount still owed on it. A current
// family yields nothing.
func PlanOneMonth(fam Family) []PlannedPayment {
	if fam.Current {
		return nil
	}

	var plan []PlannedPayment
	for _, m := range fam.Members {
		if m.Ledger.Current || m.Ledger.NextDueMonth != fam.CommonNextDueMonth {
			continue
		}
		status, ok := m.Ledger.Month(fam.CommonNextDueMonth)
		if !ok {
			continue
		}
		plan = append(plan, regularPayment(m, status))
	}
	return plan
}

// PlanFullYear emits, for each member that is behind, one record per
// unsettled regular month from the member's next due month through the last
// regular month. Months already settled ahead of time are skipped. Records
// are ordered by member, then by calendar, so a sequential executor commits
// earlier months first.
func PlanFullYear(fam Family, cal *calendar.Calendar) []PlannedPayment {
	var plan []PlannedPayment
	for _, m := range fam.Members {
		if m.Ledger.Current {
			continue
		}
		for _, month := range cal.MonthsFrom(m.Ledger.NextDueMonth) {
			status, ok := m.Ledger.Month(month)
			if !ok || status.Settled {
				continue
			}
			plan = append(plan, regularPayment(m, status))
		}
	}
	return plan
}
