package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/feeledger/internal/models"
	"github.com/mmynk/feeledger/internal/storage"
)

// ListPayments returns every payment record ordered by creation.
func (s *SQLiteStore) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, amount, month_label, kind, status, sequence, paid_at, recorded_by, created_at
		 FROM payments ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Amount, &p.MonthLabel, &p.Kind, &p.Status,
			&p.Sequence, &p.PaidAt, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// CreatePayment persists a new payment record.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.PaymentRecord) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if payment.CreatedAt == 0 {
		payment.CreatedAt = now
	}
	if payment.PaidAt == 0 {
		payment.PaidAt = now
	}
	if payment.Kind == "" {
		payment.Kind = models.PaymentKindRegular
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPaid
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, student_id, amount, month_label, kind, status, sequence, paid_at, recorded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.StudentID, payment.Amount, payment.MonthLabel, payment.Kind, payment.Status,
		payment.Sequence, payment.PaidAt, payment.RecordedBy, payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("student %s, %s #%d: %w", payment.StudentID, payment.MonthLabel, payment.Sequence, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// DeletePayment removes a payment record by ID.
func (s *SQLiteStore) DeletePayment(ctx context.Context, paymentID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return expectOneRow(result, "payment", paymentID)
}
