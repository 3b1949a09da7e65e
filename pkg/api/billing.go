package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// BillingServiceName is the fully-qualified name of the BillingService.
	BillingServiceName = "feeledger.v1.BillingService"
)

// Procedure paths of the BillingService.
const (
	BillingServiceListFamiliesProcedure      = "/feeledger.v1.BillingService/ListFamilies"
	BillingServiceGetFamilyProcedure         = "/feeledger.v1.BillingService/GetFamily"
	BillingServiceGetStudentLedgerProcedure  = "/feeledger.v1.BillingService/GetStudentLedger"
	BillingServicePayOneMonthProcedure       = "/feeledger.v1.BillingService/PayOneMonth"
	BillingServicePayFullYearProcedure       = "/feeledger.v1.BillingService/PayFullYear"
	BillingServiceDistributeDepositProcedure = "/feeledger.v1.BillingService/DistributeDeposit"
	BillingServiceReverseMonthProcedure      = "/feeledger.v1.BillingService/ReverseMonth"
)

// BillingServiceHandler is implemented by the server side of BillingService.
type BillingServiceHandler interface {
	ListFamilies(context.Context, *connect.Request[ListFamiliesRequest]) (*connect.Response[ListFamiliesResponse], error)
	GetFamily(context.Context, *connect.Request[GetFamilyRequest]) (*connect.Response[GetFamilyResponse], error)
	GetStudentLedger(context.Context, *connect.Request[GetStudentLedgerRequest]) (*connect.Response[GetStudentLedgerResponse], error)
	PayOneMonth(context.Context, *connect.Request[PayOneMonthRequest]) (*connect.Response[BatchResponse], error)
	PayFullYear(context.Context, *connect.Request[PayFullYearRequest]) (*connect.Response[BatchResponse], error)
	DistributeDeposit(context.Context, *connect.Request[DistributeDepositRequest]) (*connect.Response[DistributeDepositResponse], error)
	ReverseMonth(context.Context, *connect.Request[ReverseMonthRequest]) (*connect.Response[ReverseMonthResponse], error)
}

// NewBillingServiceHandler builds an HTTP handler serving every BillingService
// procedure. It returns the path prefix to mount the handler on.
func NewBillingServiceHandler(svc BillingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(BillingServiceListFamiliesProcedure, connect.NewUnaryHandler(BillingServiceListFamiliesProcedure, svc.ListFamilies, opts...))
	mux.Handle(BillingServiceGetFamilyProcedure, connect.NewUnaryHandler(BillingServiceGetFamilyProcedure, svc.GetFamily, opts...))
	mux.Handle(BillingServiceGetStudentLedgerProcedure, connect.NewUnaryHandler(BillingServiceGetStudentLedgerProcedure, svc.GetStudentLedger, opts...))
	mux.Handle(BillingServicePayOneMonthProcedure, connect.NewUnaryHandler(BillingServicePayOneMonthProcedure, svc.PayOneMonth, opts...))
	mux.Handle(BillingServicePayFullYearProcedure, connect.NewUnaryHandler(BillingServicePayFullYearProcedure, svc.PayFullYear, opts...))
	mux.Handle(BillingServiceDistributeDepositProcedure, connect.NewUnaryHandler(BillingServiceDistributeDepositProcedure, svc.DistributeDeposit, opts...))
	mux.Handle(BillingServiceReverseMonthProcedure, connect.NewUnaryHandler(BillingServiceReverseMonthProcedure, svc.ReverseMonth, opts...))

	return "/" + BillingServiceName + "/", mux
}

// BillingServiceClient calls a remote BillingService.
type BillingServiceClient struct {
	listFamilies      *connect.Client[ListFamiliesRequest, ListFamiliesResponse]
	getFamily         *connect.Client[GetFamilyRequest, GetFamilyResponse]
	getStudentLedger  *connect.Client[GetStudentLedgerRequest, GetStudentLedgerResponse]
	payOneMonth       *connect.Client[PayOneMonthRequest, BatchResponse]
	payFullYear       *connect.Client[PayFullYearRequest, BatchResponse]
	distributeDeposit *connect.Client[DistributeDepositRequest, DistributeDepositResponse]
	reverseMonth      *connect.Client[ReverseMonthRequest, ReverseMonthResponse]
}

// NewBillingServiceClient constructs a client for the BillingService at baseURL.
func NewBillingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &BillingServiceClient{
		listFamilies:      connect.NewClient[ListFamiliesRequest, ListFamiliesResponse](httpClient, baseURL+BillingServiceListFamiliesProcedure, opts...),
		getFamily:         connect.NewClient[GetFamilyRequest, GetFamilyResponse](httpClient, baseURL+BillingServiceGetFamilyProcedure, opts...),
		getStudentLedger:  connect.NewClient[GetStudentLedgerRequest, GetStudentLedgerResponse](httpClient, baseURL+BillingServiceGetStudentLedgerProcedure, opts...),
		payOneMonth:       connect.NewClient[PayOneMonthRequest, BatchResponse](httpClient, baseURL+BillingServicePayOneMonthProcedure, opts...),
		payFullYear:       connect.NewClient[PayFullYearRequest, BatchResponse](httpClient, baseURL+BillingServicePayFullYearProcedure, opts...),
		distributeDeposit: connect.NewClient[DistributeDepositRequest, DistributeDepositResponse](httpClient, baseURL+BillingServiceDistributeDepositProcedure, opts...),
		reverseMonth:      connect.NewClient[ReverseMonthRequest, ReverseMonthResponse](httpClient, baseURL+BillingServiceReverseMonthProcedure, opts...),
	}
}

func (c *BillingServiceClient) ListFamilies(ctx context.Context, req *connect.Request[ListFamiliesRequest]) (*connect.Response[ListFamiliesResponse], error) {
	return c.listFamilies.CallUnary(ctx, req)
}

func (c *BillingServiceClient) GetFamily(ctx context.Context, req *connect.Request[GetFamilyRequest]) (*connect.Response[GetFamilyResponse], error) {
	return c.getFamily.CallUnary(ctx, req)
}

func (c *BillingServiceClient) GetStudentLedger(ctx context.Context, req *connect.Request[GetStudentLedgerRequest]) (*connect.Response[GetStudentLedgerResponse], error) {
	return c.getStudentLedger.CallUnary(ctx, req)
}

func (c *BillingServiceClient) PayOneMonth(ctx context.Context, req *connect.Request[PayOneMonthRequest]) (*connect.Response[BatchResponse], error) {
	return c.payOneMonth.CallUnary(ctx, req)
}

func (c *BillingServiceClient) PayFullYear(ctx context.Context, req *connect.Request[PayFullYearRequest]) (*connect.Response[BatchResponse], error) {
	return c.payFullYear.CallUnary(ctx, req)
}

func (c *BillingServiceClient) DistributeDeposit(ctx context.Context, req *connect.Request[DistributeDepositRequest]) (*connect.Response[DistributeDepositResponse], error) {
	return c.distributeDeposit.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ReverseMonth(ctx context.Context, req *connect.Request[ReverseMonthRequest]) (*connect.Response[ReverseMonthResponse], error) {
	return c.reverseMonth.CallUnary(ctx, req)
}
