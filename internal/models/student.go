package models

import "github.com/shopspring/decimal"

// Student is a dependent billed for the recurring service.
// Students are created by enrollment and only ever deactivated.
type Student struct {
	// ID is the unique identifier for the student (UUID format).
	ID string

	// DisplayName is the student's full name as shown to operators.
	DisplayName string

	// PayerID is the stable identifier of the paying party.
	// Empty for legacy rows that only carry a payer name.
	PayerID string

	// PayerName is the tutor's name. Families fall back to grouping
	// on this exact string when PayerID is empty.
	PayerName string

	// PayerContact is a phone or email for the paying party.
	PayerContact string

	// MonthlyPrice is the fixed amount due each regular month. Never negative.
	MonthlyPrice decimal.Decimal

	// GradeLabel is the school grade, e.g. "3ro B".
	GradeLabel string

	// VehicleRef references the route vehicle assigned to the student.
	VehicleRef string

	// Active is false once the student has been deactivated.
	Active bool

	// EnrolledAt is the Unix timestamp of enrollment. It defines the
	// stable member order inside a family.
	EnrolledAt int64
}
