// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/feeledger/internal/models"
)

var (
	// ErrNotFound is returned when a student or payment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a paid regular-month record with the same
	// student, month and sequence already exists.
	ErrConflict = errors.New("payment already recorded for this student and month")
)

// Store is the payment repository the billing engine reads from and writes to.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine.
type Store interface {
	// ListStudents returns every student, active or not, in enrollment order.
	ListStudents(ctx context.Context) ([]models.Student, error)

	// GetStudent retrieves a student by ID. Returns ErrNotFound if missing.
	GetStudent(ctx context.Context, studentID string) (*models.Student, error)

	// CreateStudent persists a new student. ID and EnrolledAt are populated
	// by the store when empty.
	CreateStudent(ctx context.Context, student *models.Student) error

	// UpdateStudent replaces the editable fields of an existing student.
	UpdateStudent(ctx context.Context, student *models.Student) error

	// DeactivateStudent marks a student inactive. Students are never deleted.
	DeactivateStudent(ctx context.Context, studentID string) error

	// ListPayments returns every payment record.
	ListPayments(ctx context.Context) ([]models.PaymentRecord, error)

	// CreatePayment persists a payment record. ID and CreatedAt are
	// populated by the store. Returns ErrConflict when a paid
	// regular record of the same student, month and sequence exists.
	CreatePayment(ctx context.Context, payment *models.PaymentRecord) error

	// DeletePayment removes a payment record. Returns ErrNotFound if missing.
	DeletePayment(ctx context.Context, paymentID string) error

	// Close releases any resources held by the store.
	Close() error
}
