package api

import "github.com/shopspring/decimal"

type Student struct {
	ID           string          `json:"id"`
	DisplayName  string          `json:"display_name"`
	PayerID      string          `json:"payer_id,omitempty"`
	PayerName    string          `json:"payer_name"`
	PayerContact string          `json:"payer_contact,omitempty"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	GradeLabel   string          `json:"grade_label,omitempty"`
	VehicleRef   string          `json:"vehicle_ref,omitempty"`
	Active       bool            `json:"active"`
	EnrolledAt   int64           `json:"enrolled_at"`
}

type MonthStatus struct {
	Month       string          `json:"month"`
	Paid        decimal.Decimal `json:"paid"`
	Settled     bool            `json:"settled"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type StudentLedger struct {
	StudentID       string          `json:"student_id"`
	Price           decimal.Decimal `json:"price"`
	Months          []MonthStatus   `json:"months"`
	NextDueMonth    string          `json:"next_due_month,omitempty"`
	Current         bool            `json:"current"`
	MonthsRemaining int             `json:"months_remaining"`
	TotalDeposited  decimal.Decimal `json:"total_deposited"`
	DepositBalance  decimal.Decimal `json:"deposit_balance"`
	DepositSettled  bool            `json:"deposit_settled"`
}

type FamilyMember struct {
	Student Student       `json:"student"`
	Ledger  StudentLedger `json:"ledger"`
}

type Family struct {
	Key                string          `json:"key"`
	PayerID            string          `json:"payer_id,omitempty"`
	PayerName          string          `json:"payer_name"`
	Contact            string          `json:"contact,omitempty"`
	Members            []FamilyMember  `json:"members"`
	TotalMonthly       decimal.Decimal `json:"total_monthly"`
	DepositDebtTotal   decimal.Decimal `json:"deposit_debt_total"`
	CommonNextDueMonth string          `json:"common_next_due_month,omitempty"`
	Current            bool            `json:"current"`
	CommonDueAmount    decimal.Decimal `json:"common_due_amount"`
	TotalRemainingYear decimal.Decimal `json:"total_remaining_year"`
	MaxMonthsRemaining int             `json:"max_months_remaining"`
	FullYearOffered    bool            `json:"full_year_offered"`
}

type PayerCollision struct {
	Kind      string   `json:"kind"`
	PayerName string   `json:"payer_name,omitempty"`
	PayerID   string   `json:"payer_id,omitempty"`
	Families  []string `json:"families"`
}

type PaymentRecord struct {
	ID         string          `json:"id"`
	StudentID  string          `json:"student_id"`
	Amount     decimal.Decimal `json:"amount"`
	MonthLabel string          `json:"month_label"`
	Kind       string          `json:"kind"`
	Status     string          `json:"status"`
	Sequence   int             `json:"sequence"`
	PaidAt     int64           `json:"paid_at"`
	RecordedBy string          `json:"recorded_by,omitempty"`
}

type Allocation struct {
	StudentID     string          `json:"student_id"`
	StudentName   string          `json:"student_name"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

type ListFamiliesRequest struct{}

type ListFamiliesResponse struct {
	SchoolYear    string           `json:"school_year"`
	RegularMonths []string         `json:"regular_months"`
	DepositMonth  string           `json:"deposit_month"`
	Families      []Family         `json:"families"`
	Collisions    []PayerCollision `json:"collisions,omitempty"`
}

type GetFamilyRequest struct {
	FamilyKey string `json:"family_key"`
}

type GetFamilyResponse struct {
	Family Family `json:"family"`
}

type GetStudentLedgerRequest struct {
	StudentID string `json:"student_id"`
}

type GetStudentLedgerResponse struct {
	Student Student       `json:"student"`
	Ledger  StudentLedger `json:"ledger"`
}

type PayOneMonthRequest struct {
	FamilyKey string `json:"family_key"`
}

type PayFullYearRequest struct {
	FamilyKey string `json:"family_key"`
}

// BatchResponse lists the records a batch created.
type BatchResponse struct {
	Operation string          `json:"operation"`
	FamilyKey string          `json:"family_key"`
	Created   []PaymentRecord `json:"created"`
	Total     decimal.Decimal `json:"total"`
}

type DistributeDepositRequest struct {
	FamilyKey string          `json:"family_key"`
	Amount    decimal.Decimal `json:"amount"`
	// Mode is "single-pass" or "redistribute"; empty uses the server default.
	Mode string `json:"mode,omitempty"`
}

type DistributeDepositResponse struct {
	Batch          BatchResponse   `json:"batch"`
	Mode           string          `json:"mode"`
	IdealShare     decimal.Decimal `json:"ideal_share"`
	Allocations    []Allocation    `json:"allocations"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	Shortfall      decimal.Decimal `json:"shortfall"`
}

type ReverseMonthRequest struct {
	FamilyKey string `json:"family_key"`
	Month     string `json:"month"`
}

type ReverseMonthResponse struct {
	FamilyKey string          `json:"family_key"`
	Month     string          `json:"month"`
	Deleted   []string        `json:"deleted"`
	Total     decimal.Decimal `json:"total"`
}

type ListStudentsRequest struct {
	IncludeInactive bool `json:"include_inactive"`
}

type ListStudentsResponse struct {
	Students []Student `json:"students"`
}

type EnrollStudentRequest struct {
	Student Student `json:"student"`
}

type EnrollStudentResponse struct {
	Student Student `json:"student"`
}

type UpdateStudentRequest struct {
	Student Student `json:"student"`
}

type UpdateStudentResponse struct {
	Student Student `json:"student"`
}

type DeactivateStudentRequest struct {
	StudentID string `json:"student_id"`
}

type DeactivateStudentResponse struct{}
