package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/billing"
	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/storage/sqlite"
	"github.com/mmynk/feeledger/pkg/api"
)

type testServer struct {
	billing  *api.BillingServiceClient
	students *api.StudentServiceClient
	store    *sqlite.SQLiteStore
}

// setupTestServer serves both services from a temp database.
func setupTestServer(t *testing.T, opts ...connect.HandlerOption) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	clock := func() time.Time { return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC) }
	engine := billing.New(store, calendar.New("2025"), billing.WithClock(clock))

	billingPath, billingHandler := api.NewBillingServiceHandler(NewBillingService(engine), opts...)
	studentPath, studentHandler := api.NewStudentServiceHandler(NewStudentService(store), opts...)

	mux := http.NewServeMux()
	mux.Handle(billingPath, billingHandler)
	mux.Handle(studentPath, studentHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		billing:  api.NewBillingServiceClient(http.DefaultClient, server.URL),
		students: api.NewStudentServiceClient(http.DefaultClient, server.URL),
		store:    store,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// enroll creates one student per price under the same payer.
func (ts *testServer) enroll(t *testing.T, payerID, payerName string, prices ...string) []api.Student {
	t.Helper()

	var out []api.Student
	for i, price := range prices {
		resp, err := ts.students.EnrollStudent(context.Background(), connect.NewRequest(&api.EnrollStudentRequest{
			Student: api.Student{
				DisplayName:  payerName + " kid " + string(rune('A'+i)),
				PayerID:      payerID,
				PayerName:    payerName,
				MonthlyPrice: dec(price),
				EnrolledAt:   int64(1000 + i),
			},
		}))
		if err != nil {
			t.Fatalf("EnrollStudent failed: %v", err)
		}
		out = append(out, resp.Msg.Student)
	}
	return out
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
