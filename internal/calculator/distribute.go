package calculator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/models"
)

// DistributionMode selects how a deposit is split among siblings.
type DistributionMode string

const (
	// ModeSinglePass splits once: every debtor but the last gets at most the
	// equal share, the last gets what remains. When an early debtor's balance
	// is below the equal share the unused part is not handed to anyone else,
	// so less than the deposit may be allocated.
	ModeSinglePass DistributionMode = "single-pass"

	// ModeRedistribute caps every debtor at the equal share, then re-splits
	// whatever is left among debtors that still owe, until the deposit or
	// the debt runs out.
	ModeRedistribute DistributionMode = "redistribute"
)

// ParseDistributionMode parses a mode name. Empty selects ModeSinglePass.
func ParseDistributionMode(s string) (DistributionMode, error) {
	switch DistributionMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSinglePass:
		return ModeSinglePass, nil
	case ModeRedistribute:
		return ModeRedistribute, nil
	default:
		return "", fmt.Errorf("unknown distribution mode %q", s)
	}
}

// Allocation is one debtor's share of a deposit.
type Allocation struct {
	StudentID     string
	StudentName   string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Distribution is the result of splitting one deposit across a family.
type Distribution struct {
	Mode           DistributionMode
	Requested      decimal.Decimal
	IdealShare     decimal.Decimal
	Allocations    []Allocation
	TotalAllocated decimal.Decimal

	// Shortfall is the part of the request that was not allocated.
	Shortfall decimal.Decimal
}

// Plan turns the allocations into deposit-month records.
func (d Distribution) Plan(cal *calendar.Calendar) []PlannedPayment {
	plan := make([]PlannedPayment, 0, len(d.Allocations))
	for _, a := range d.Allocations {
		plan = append(plan, PlannedPayment{
			StudentID:   a.StudentID,
			StudentName: a.StudentName,
			MonthLabel:  cal.DepositMonth(),
			Kind:        models.PaymentKindDeposit,
			Amount:      a.Amount,
		})
	}
	return plan
}

type debtor struct {
	member  Member
	balance decimal.Decimal
	share   decimal.Decimal
}

// DistributeDeposit splits amount across the family members that still owe
// on the deposit month. No debtor ever receives more than their own balance
// and the total never exceeds amount.
func DistributeDeposit(fam Family, amount decimal.Decimal, mode DistributionMode, tol Tolerances) (Distribution, error) {
	if !amount.IsPositive() {
		return Distribution{}, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if limit := fam.DepositDebtTotal.Add(tol.Overpay); amount.GreaterThan(limit) {
		return Distribution{}, &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("%s exceeds the family deposit debt of %s", amount.StringFixed(2), fam.DepositDebtTotal.StringFixed(2)),
		}
	}

	var debtors []*debtor
	for _, m := range fam.Members {
		if m.Ledger.DepositBalance.GreaterThan(tol.Deposit) {
			debtors = append(debtors, &debtor{member: m, balance: m.Ledger.DepositBalance, share: decimal.Zero})
		}
	}
	if len(debtors) == 0 {
		return Distribution{}, &ValidationError{Field: "amount", Reason: "no member has a deposit balance"}
	}

	ideal := floorCents(amount.Div(decimal.NewFromInt(int64(len(debtors)))))

	switch mode {
	case ModeRedistribute:
		redistribute(debtors, amount, ideal)
	default:
		mode = ModeSinglePass
		singlePass(debtors, amount, ideal)
	}

	dist := Distribution{
		Mode:           mode,
		Requested:      amount,
		IdealShare:     ideal,
		TotalAllocated: decimal.Zero,
	}
	for _, d := range debtors {
		if !d.share.IsPositive() {
			continue
		}
		dist.Allocations = append(dist.Allocations, Allocation{
			StudentID:     d.member.Student.ID,
			StudentName:   d.member.Student.DisplayName,
			Amount:        d.share,
			BalanceBefore: d.balance,
			BalanceAfter:  d.balance.Sub(d.share),
		})
		dist.TotalAllocated = dist.TotalAllocated.Add(d.share)
	}
	dist.Shortfall = amount.Sub(dist.TotalAllocated)

	if dist.Shortfall.GreaterThanOrEqual(cent) {
		slog.Warn("Deposit not fully allocated",
			"family", fam.Key,
			"mode", mode,
			"requested", amount.StringFixed(2),
			"allocated", dist.TotalAllocated.StringFixed(2),
			"shortfall", dist.Shortfall.StringFixed(2),
		)
	}

	return dist, nil
}

// singlePass is the greedy split: min(ideal, remaining, balance) for every
// debtor but the last, min(remaining, balance) for the last one.
func singlePass(debtors []*debtor, amount, ideal decimal.Decimal) {
	remaining := amount
	last := len(debtors) - 1
	for i, d := range debtors {
		var share decimal.Decimal
		if i < last {
			share = decimal.Min(ideal, remaining, d.balance)
		} else {
			share = decimal.Min(remaining, d.balance)
		}
		share = floorCents(share)
		if !share.IsPositive() {
			continue
		}
		d.share = share
		remaining = remaining.Sub(share)
	}
}

// redistribute caps each debtor at min(ideal, balance) and then keeps
// re-splitting the leftover among debtors below their balance. When the
// leftover is too small to split, it goes out one cent at a time in
// enrollment order.
func redistribute(debtors []*debtor, amount, ideal decimal.Decimal) {
	leftover := amount
	for _, d := range debtors {
		d.share = floorCents(decimal.Min(ideal, d.balance))
		leftover = leftover.Sub(d.share)
	}

	for leftover.GreaterThanOrEqual(cent) {
		var open []*debtor
		for _, d := range debtors {
			if d.balance.Sub(d.share).GreaterThanOrEqual(cent) {
				open = append(open, d)
			}
		}
		if len(open) == 0 {
			return
		}

		each := floorCents(leftover.Div(decimal.NewFromInt(int64(len(open)))))
		if each.LessThan(cent) {
			each = cent
		}
		for _, d := range open {
			if leftover.LessThan(cent) {
				return
			}
			give := floorCents(decimal.Min(each, d.balance.Sub(d.share), leftover))
			if !give.IsPositive() {
				continue
			}
			d.share = d.share.Add(give)
			leftover = leftover.Sub(give)
		}
	}
}
