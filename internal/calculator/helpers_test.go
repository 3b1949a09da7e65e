package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/models"
)

var testCal = calendar.New("2025")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func student(id, payer, price string) models.Student {
	return models.Student{
		ID:           id,
		DisplayName:  "Student " + id,
		PayerName:    payer,
		MonthlyPrice: dec(price),
		Active:       true,
	}
}

func paid(studentID, month, amount string) models.PaymentRecord {
	return models.PaymentRecord{
		StudentID:  studentID,
		MonthLabel: month,
		Amount:     dec(amount),
		Status:     models.PaymentStatusPaid,
	}
}

// paidThrough returns full-price payments for every regular month before upTo.
func paidThrough(studentID, price, upTo string) []models.PaymentRecord {
	var out []models.PaymentRecord
	for _, m := range testCal.RegularMonths() {
		if m == upTo {
			break
		}
		out = append(out, paid(studentID, m, price))
	}
	return out
}

func familyOf(students []models.Student, payments []models.PaymentRecord) Family {
	ledgers := ComputeLedgers(testCal, students, payments, DefaultTolerances())
	fams, _ := AggregateFamilies(testCal, students, ledgers, DefaultTolerances())
	return fams[0]
}

// memberWithBalance builds a member owing balance on the deposit month.
func memberWithBalance(id, balance string) Member {
	return Member{
		Student: models.Student{ID: id, DisplayName: "Student " + id, MonthlyPrice: dec(balance), Active: true},
		Ledger:  StudentLedger{StudentID: id, Price: dec(balance), DepositBalance: dec(balance)},
	}
}

func familyWithBalances(balances ...string) Family {
	fam := Family{Key: "name:test", DepositDebtTotal: decimal.Zero}
	for i, b := range balances {
		m := memberWithBalance(string(rune('a'+i)), b)
		fam.Members = append(fam.Members, m)
		fam.DepositDebtTotal = fam.DepositDebtTotal.Add(m.Ledger.DepositBalance)
	}
	return fam
}
