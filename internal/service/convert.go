package service

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/feeledger/internal/billing"
	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/models"
	"github.com/mmynk/feeledger/internal/storage"
	"github.com/mmynk/feeledger/pkg/api"
)

// toConnectError maps engine and storage errors onto Connect codes.
func toConnectError(err error) error {
	var (
		validation *calculator.ValidationError
		batch      *billing.BatchError
	)
	switch {
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &batch):
		return connect.NewError(connect.CodeAborted,
			fmt.Errorf("%s stopped after %d of %d records: %w", batch.Operation, batch.Committed, batch.Attempted, batch.Err))
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toAPIStudent(st models.Student) api.Student {
	return api.Student{
		ID:           st.ID,
		DisplayName:  st.DisplayName,
		PayerID:      st.PayerID,
		PayerName:    st.PayerName,
		PayerContact: st.PayerContact,
		MonthlyPrice: st.MonthlyPrice,
		GradeLabel:   st.GradeLabel,
		VehicleRef:   st.VehicleRef,
		Active:       st.Active,
		EnrolledAt:   st.EnrolledAt,
	}
}

func fromAPIStudent(st api.Student) models.Student {
	return models.Student{
		ID:           st.ID,
		DisplayName:  st.DisplayName,
		PayerID:      st.PayerID,
		PayerName:    st.PayerName,
		PayerContact: st.PayerContact,
		MonthlyPrice: st.MonthlyPrice,
		GradeLabel:   st.GradeLabel,
		VehicleRef:   st.VehicleRef,
		Active:       st.Active,
		EnrolledAt:   st.EnrolledAt,
	}
}

func toAPILedger(l calculator.StudentLedger) api.StudentLedger {
	months := make([]api.MonthStatus, len(l.Months))
	for i, m := range l.Months {
		months[i] = api.MonthStatus{Month: m.Month, Paid: m.Paid, Settled: m.Settled, Outstanding: m.Outstanding}
	}
	return api.StudentLedger{
		StudentID:       l.StudentID,
		Price:           l.Price,
		Months:          months,
		NextDueMonth:    l.NextDueMonth,
		Current:         l.Current,
		MonthsRemaining: l.MonthsRemaining,
		TotalDeposited:  l.TotalDeposited,
		DepositBalance:  l.DepositBalance,
		DepositSettled:  l.DepositSettled,
	}
}

func toAPIFamily(f calculator.Family) api.Family {
	members := make([]api.FamilyMember, len(f.Members))
	for i, m := range f.Members {
		members[i] = api.FamilyMember{
			Student: toAPIStudent(m.Student),
			Ledger:  toAPILedger(m.Ledger),
		}
	}
	return api.Family{
		Key:                f.Key,
		PayerID:            f.PayerID,
		PayerName:          f.PayerName,
		Contact:            f.Contact,
		Members:            members,
		TotalMonthly:       f.TotalMonthly,
		DepositDebtTotal:   f.DepositDebtTotal,
		CommonNextDueMonth: f.CommonNextDueMonth,
		Current:            f.Current,
		CommonDueAmount:    f.CommonDueAmount,
		TotalRemainingYear: f.TotalRemainingYear,
		MaxMonthsRemaining: f.MaxMonthsRemaining,
		FullYearOffered:    f.FullYearOffered,
	}
}

func toAPICollisions(cs []calculator.PayerCollision) []api.PayerCollision {
	if len(cs) == 0 {
		return nil
	}
	out := make([]api.PayerCollision, len(cs))
	for i, c := range cs {
		out[i] = api.PayerCollision{
			Kind:      string(c.Kind),
			PayerName: c.PayerName,
			PayerID:   c.PayerID,
			Families:  c.Families,
		}
	}
	return out
}

func toAPIPayment(p models.PaymentRecord) api.PaymentRecord {
	return api.PaymentRecord{
		ID:         p.ID,
		StudentID:  p.StudentID,
		Amount:     p.Amount,
		MonthLabel: p.MonthLabel,
		Kind:       string(p.Kind),
		Status:     string(p.Status),
		Sequence:   p.Sequence,
		PaidAt:     p.PaidAt,
		RecordedBy: p.RecordedBy,
	}
}

func toBatchResponse(r *billing.BatchResult) api.BatchResponse {
	created := make([]api.PaymentRecord, len(r.Created))
	for i, p := range r.Created {
		created[i] = toAPIPayment(p)
	}
	return api.BatchResponse{
		Operation: r.Operation,
		FamilyKey: r.Family,
		Created:   created,
		Total:     r.Total,
	}
}

func toAPIAllocations(as []calculator.Allocation) []api.Allocation {
	out := make([]api.Allocation, len(as))
	for i, a := range as {
		out[i] = api.Allocation{
			StudentID:     a.StudentID,
			StudentName:   a.StudentName,
			Amount:        a.Amount,
			BalanceBefore: a.BalanceBefore,
			BalanceAfter:  a.BalanceAfter,
		}
	}
	return out
}
