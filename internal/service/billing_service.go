package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/feeledger/internal/billing"
	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/middleware"
	"github.com/mmynk/feeledger/pkg/api"
)

// BillingService implements the Connect BillingService on top of the billing engine.
type BillingService struct {
	engine *billing.Engine
}

// NewBillingService creates a new BillingService backed by engine.
func NewBillingService(engine *billing.Engine) *BillingService {
	return &BillingService{engine: engine}
}

// ListFamilies returns every family with its members' ledgers.
func (s *BillingService) ListFamilies(ctx context.Context, req *connect.Request[api.ListFamiliesRequest]) (*connect.Response[api.ListFamiliesResponse], error) {
	slog.Info("ListFamilies request received")

	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		slog.Error("ListFamilies failed", "error", err)
		return nil, toConnectError(err)
	}

	families := make([]api.Family, len(snap.Families))
	for i, f := range snap.Families {
		families[i] = toAPIFamily(f)
	}

	slog.Info("ListFamilies successful", "count", len(families), "collisions", len(snap.Collisions))

	return connect.NewResponse(&api.ListFamiliesResponse{
		SchoolYear:    snap.Calendar.Year(),
		RegularMonths: snap.Calendar.RegularMonths(),
		DepositMonth:  snap.Calendar.DepositMonth(),
		Families:      families,
		Collisions:    toAPICollisions(snap.Collisions),
	}), nil
}

// GetFamily returns one family.
func (s *BillingService) GetFamily(ctx context.Context, req *connect.Request[api.GetFamilyRequest]) (*connect.Response[api.GetFamilyResponse], error) {
	slog.Info("GetFamily request received", "family_key", req.Msg.FamilyKey)

	fam, err := s.engine.Family(ctx, req.Msg.FamilyKey)
	if err != nil {
		slog.Error("GetFamily failed", "family_key", req.Msg.FamilyKey, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetFamilyResponse{Family: toAPIFamily(*fam)}), nil
}

// GetStudentLedger returns one student's month-by-month ledger.
func (s *BillingService) GetStudentLedger(ctx context.Context, req *connect.Request[api.GetStudentLedgerRequest]) (*connect.Response[api.GetStudentLedgerResponse], error) {
	slog.Info("GetStudentLedger request received", "student_id", req.Msg.StudentID)

	st, ledger, err := s.engine.Ledger(ctx, req.Msg.StudentID)
	if err != nil {
		slog.Error("GetStudentLedger failed", "student_id", req.Msg.StudentID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetStudentLedgerResponse{
		Student: toAPIStudent(*st),
		Ledger:  toAPILedger(ledger),
	}), nil
}

// PayOneMonth records the family's common due month.
func (s *BillingService) PayOneMonth(ctx context.Context, req *connect.Request[api.PayOneMonthRequest]) (*connect.Response[api.BatchResponse], error) {
	operator := middleware.GetOperatorID(ctx)
	slog.Info("PayOneMonth request received", "family_key", req.Msg.FamilyKey, "operator_id", operator)

	result, err := s.engine.PayOneMonth(ctx, req.Msg.FamilyKey, operator)
	if err != nil {
		slog.Error("PayOneMonth failed", "family_key", req.Msg.FamilyKey, "error", err)
		return nil, toConnectError(err)
	}

	resp := toBatchResponse(result)
	return connect.NewResponse(&resp), nil
}

// PayFullYear records every remaining regular month for the family.
func (s *BillingService) PayFullYear(ctx context.Context, req *connect.Request[api.PayFullYearRequest]) (*connect.Response[api.BatchResponse], error) {
	operator := middleware.GetOperatorID(ctx)
	slog.Info("PayFullYear request received", "family_key", req.Msg.FamilyKey, "operator_id", operator)

	result, err := s.engine.PayFullYear(ctx, req.Msg.FamilyKey, operator)
	if err != nil {
		slog.Error("PayFullYear failed", "family_key", req.Msg.FamilyKey, "error", err)
		return nil, toConnectError(err)
	}

	resp := toBatchResponse(result)
	return connect.NewResponse(&resp), nil
}

// DistributeDeposit splits a deposit amount across the family's debtors.
func (s *BillingService) DistributeDeposit(ctx context.Context, req *connect.Request[api.DistributeDepositRequest]) (*connect.Response[api.DistributeDepositResponse], error) {
	operator := middleware.GetOperatorID(ctx)
	slog.Info("DistributeDeposit request received",
		"family_key", req.Msg.FamilyKey,
		"amount", req.Msg.Amount.StringFixed(2),
		"mode", req.Msg.Mode,
		"operator_id", operator,
	)

	var mode calculator.DistributionMode
	if req.Msg.Mode != "" {
		var err error
		mode, err = calculator.ParseDistributionMode(req.Msg.Mode)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	result, err := s.engine.DistributeDeposit(ctx, req.Msg.FamilyKey, req.Msg.Amount, mode, operator)
	if err != nil {
		slog.Error("DistributeDeposit failed", "family_key", req.Msg.FamilyKey, "error", err)
		return nil, toConnectError(err)
	}

	dist := result.Distribution
	return connect.NewResponse(&api.DistributeDepositResponse{
		Batch:          toBatchResponse(result.BatchResult),
		Mode:           string(dist.Mode),
		IdealShare:     dist.IdealShare,
		Allocations:    toAPIAllocations(dist.Allocations),
		TotalAllocated: dist.TotalAllocated,
		Shortfall:      dist.Shortfall,
	}), nil
}

// ReverseMonth deletes one month of records for the family.
func (s *BillingService) ReverseMonth(ctx context.Context, req *connect.Request[api.ReverseMonthRequest]) (*connect.Response[api.ReverseMonthResponse], error) {
	slog.Info("ReverseMonth request received",
		"family_key", req.Msg.FamilyKey,
		"month", req.Msg.Month,
		"operator_id", middleware.GetOperatorID(ctx),
	)

	result, err := s.engine.ReverseMonth(ctx, req.Msg.FamilyKey, req.Msg.Month)
	if err != nil {
		slog.Error("ReverseMonth failed", "family_key", req.Msg.FamilyKey, "month", req.Msg.Month, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ReverseMonthResponse{
		FamilyKey: result.Family,
		Month:     result.Month,
		Deleted:   result.Deleted,
		Total:     result.Total,
	}), nil
}
