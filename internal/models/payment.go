package models

import "github.com/shopspring/decimal"

// PaymentKind tells regular-month records apart from deposit-month records.
type PaymentKind string

const (
	PaymentKindRegular PaymentKind = "regular"
	PaymentKindDeposit PaymentKind = "deposit"
)

// PaymentStatus is the settlement status of a record.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// PaymentRecord is one payment toward one student's month.
// There is no family-level record: a family payment is a batch of these.
type PaymentRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// StudentID is the student this payment settles.
	StudentID string

	// Amount is the amount paid. Regular months are paid in full,
	// deposit months may receive several partial amounts.
	Amount decimal.Decimal

	// MonthLabel is the month this payment applies to, e.g. "Marzo 2025".
	MonthLabel string

	// Kind is regular or deposit, derived from the calendar when planned.
	Kind PaymentKind

	// Status is paid or pending. Only paid records count toward settlement.
	Status PaymentStatus

	// PaidAt is the Unix timestamp of the payment.
	PaidAt int64

	// Sequence numbers the paid regular records of one student and month,
	// starting at 0. A top-up after a price raise carries the next number.
	// Always 0 for deposit records.
	Sequence int

	// RecordedBy is the operator ID that created the record, if known.
	RecordedBy string

	// CreatedAt is the Unix timestamp when the record was persisted.
	CreatedAt int64
}

// Counts reports whether the record contributes to settlement.
func (p PaymentRecord) Counts() bool {
	return p.Status == PaymentStatusPaid
}
