package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/storage"
)

// PayOneMonth settles the family's common due month for every member due in
// that month. A family that is already current produces an empty result.
func (e *Engine) PayOneMonth(ctx context.Context, familyKey, operator string) (*BatchResult, error) {
	fam, err := e.Family(ctx, familyKey)
	if err != nil {
		return nil, err
	}

	plan := calculator.PlanOneMonth(*fam)
	slog.Info("Planned one month",
		"family", fam.Key,
		"month", fam.CommonNextDueMonth,
		"records", len(plan),
		"amount", calculator.PlanTotal(plan).StringFixed(2),
	)
	return e.execute(ctx, OpPayOneMonth, fam.Key, operator, plan)
}

// PayFullYear settles every remaining regular month of every member that is behind.
// FullYearOffered is advisory: with one month left the result equals PayOneMonth.
func (e *Engine) PayFullYear(ctx context.Context, familyKey, operator string) (*BatchResult, error) {
	fam, err := e.Family(ctx, familyKey)
	if err != nil {
		return nil, err
	}

	plan := calculator.PlanFullYear(*fam, e.cal)
	slog.Info("Planned full year",
		"family", fam.Key,
		"from", fam.CommonNextDueMonth,
		"records", len(plan),
		"amount", calculator.PlanTotal(plan).StringFixed(2),
		"quoted", fam.TotalRemainingYear.StringFixed(2),
	)
	return e.execute(ctx, OpPayFullYear, fam.Key, operator, plan)
}

// DepositResult is a deposit batch together with the split that produced it.
type DepositResult struct {
	*BatchResult
	Distribution calculator.Distribution
}

// DistributeDeposit splits amount across the members that still owe on the
// deposit month and records one deposit payment per non-zero share. An empty
// mode uses the engine default. Validation errors are returned before any write.
func (e *Engine) DistributeDeposit(ctx context.Context, familyKey string, amount decimal.Decimal, mode calculator.DistributionMode, operator string) (*DepositResult, error) {
	if mode == "" {
		mode = e.mode
	}

	fam, err := e.Family(ctx, familyKey)
	if err != nil {
		return nil, err
	}

	dist, err := calculator.DistributeDeposit(*fam, amount, mode, e.tol)
	if err != nil {
		return nil, err
	}
	e.metrics.Shortfall(string(dist.Mode), dist.Shortfall.InexactFloat64())

	batch, err := e.execute(ctx, OpDistributeDeposit, fam.Key, operator, dist.Plan(e.cal))
	return &DepositResult{BatchResult: batch, Distribution: dist}, err
}

// ReversalResult lists the records removed by ReverseMonth.
type ReversalResult struct {
	Family  string
	Month   string
	Deleted []string
	Total   decimal.Decimal
}

// ReverseMonth deletes every record of month for the family's members, one
// at a time. Like the create batches it stops at the first failure and keeps
// what was already deleted.
func (e *Engine) ReverseMonth(ctx context.Context, familyKey, month string) (*ReversalResult, error) {
	if e.cal.Ordinal(month) < 0 {
		return nil, &calculator.ValidationError{Field: "month", Reason: fmt.Sprintf("%q is not a month of %s", month, e.cal.Year())}
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	fam, ok := snap.Family(familyKey)
	if !ok {
		return nil, fmt.Errorf("family %s: %w", familyKey, storage.ErrNotFound)
	}

	members := make(map[string]bool, len(fam.Members))
	for _, m := range fam.Members {
		members[m.Student.ID] = true
	}

	result := &ReversalResult{Family: fam.Key, Month: month, Total: decimal.Zero}
	var targets []int
	for i, p := range snap.Payments {
		if members[p.StudentID] && p.MonthLabel == month {
			targets = append(targets, i)
		}
	}

	ctx = context.WithoutCancel(ctx)
	for n, i := range targets {
		p := snap.Payments[i]
		if err := e.store.DeletePayment(ctx, p.ID); err != nil {
			e.metrics.BatchFailed(OpReverseMonth)
			slog.Error("Reversal aborted",
				"family", fam.Key,
				"month", month,
				"failed_at", n,
				"deleted", len(result.Deleted),
				"payment_id", p.ID,
				"error", err,
			)
			return result, &BatchError{
				Operation: OpReverseMonth,
				Family:    fam.Key,
				Attempted: len(targets),
				Committed: len(result.Deleted),
				FailedAt:  n,
				Err:       err,
			}
		}
		e.metrics.PaymentDeleted(OpReverseMonth)
		result.Deleted = append(result.Deleted, p.ID)
		result.Total = result.Total.Add(p.Amount)
	}

	slog.Info("Month reversed",
		"family", fam.Key,
		"month", month,
		"deleted", len(result.Deleted),
		"total", result.Total.StringFixed(2),
	)
	return result, nil
}
