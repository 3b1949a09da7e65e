package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/models"
)

// BatchError reports a batch that stopped at its first failing repository
// call. Records committed before the failure stay persisted; nothing is
// rolled back or retried.
type BatchError struct {
	Operation string
	Family    string

	// Attempted is the number of records the batch intended to write.
	Attempted int

	// Committed is how many writes succeeded before the failure.
	Committed int

	// Created holds the records persisted before the failure (create batches only).
	Created []models.PaymentRecord

	// FailedAt is the zero-based position of the failing write.
	FailedAt int

	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s for %s aborted at record %d of %d (%d committed): %v",
		e.Operation, e.Family, e.FailedAt+1, e.Attempted, e.Committed, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Partial reports whether some writes were committed before the failure.
func (e *BatchError) Partial() bool { return e.Committed > 0 }

// BatchResult describes a completed batch.
type BatchResult struct {
	Operation string
	Family    string
	Planned   []calculator.PlannedPayment
	Created   []models.PaymentRecord
	Total     decimal.Decimal
}

// execute persists the plan one record at a time, in order, waiting for
// each write before issuing the next. The writes ignore cancellation of ctx
// so a started batch runs to completion or to its first repository error.
func (e *Engine) execute(ctx context.Context, op, family, operator string, plan []calculator.PlannedPayment) (*BatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	paidAt := e.now().Unix()

	result := &BatchResult{
		Operation: op,
		Family:    family,
		Planned:   plan,
		Total:     decimal.Zero,
	}

	for i, p := range plan {
		rec := p.Record(paidAt, operator)
		if err := e.store.CreatePayment(ctx, rec); err != nil {
			e.metrics.BatchFailed(op)
			slog.Error("Batch aborted",
				"operation", op,
				"family", family,
				"failed_at", i,
				"committed", len(result.Created),
				"attempted", len(plan),
				"student_id", p.StudentID,
				"month", p.MonthLabel,
				"error", err,
			)
			return result, &BatchError{
				Operation: op,
				Family:    family,
				Attempted: len(plan),
				Committed: len(result.Created),
				Created:   result.Created,
				FailedAt:  i,
				Err:       err,
			}
		}
		e.metrics.PaymentCreated(op)
		result.Created = append(result.Created, *rec)
		result.Total = result.Total.Add(rec.Amount)
	}

	slog.Info("Batch committed",
		"operation", op,
		"family", family,
		"records", len(result.Created),
		"total", result.Total.StringFixed(2),
		"recorded_by", operator,
	)
	return result, nil
}
