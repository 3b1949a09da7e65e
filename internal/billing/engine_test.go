package billing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/metrics"
	"github.com/mmynk/feeledger/internal/models"
	"github.com/mmynk/feeledger/internal/storage"
	"github.com/mmynk/feeledger/internal/storage/sqlite"
)

// memStore is an in-memory storage.Store that can fail the nth CreatePayment.
type memStore struct {
	mu       sync.Mutex
	students []models.Student
	payments []models.PaymentRecord
	nextID   int

	failCreateAt int // 1-based; 0 never fails
	creates      int
	failDeleteAt int
	deletes      int
}

var _ storage.Store = (*memStore)(nil)

func (m *memStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Student(nil), m.students...), nil
}

func (m *memStore) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ID == id {
			st := s
			return &st, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) CreateStudent(ctx context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students = append(m.students, *s)
	return nil
}

func (m *memStore) UpdateStudent(ctx context.Context, s *models.Student) error { return nil }

func (m *memStore) DeactivateStudent(ctx context.Context, id string) error { return nil }

func (m *memStore) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PaymentRecord(nil), m.payments...), nil
}

func (m *memStore) CreatePayment(ctx context.Context, p *models.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failCreateAt > 0 && m.creates == m.failCreateAt {
		return errors.New("disk full")
	}
	m.nextID++
	p.ID = fmt.Sprintf("p%d", m.nextID)
	m.payments = append(m.payments, *p)
	return nil
}

func (m *memStore) DeletePayment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.failDeleteAt > 0 && m.deletes == m.failDeleteAt {
		return errors.New("locked")
	}
	for i, p := range m.payments {
		if p.ID == id {
			m.payments = append(m.payments[:i], m.payments[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) Close() error { return nil }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFamilyStore(prices ...string) *memStore {
	store := &memStore{}
	for i, price := range prices {
		store.students = append(store.students, models.Student{
			ID:           fmt.Sprintf("s%d", i+1),
			DisplayName:  fmt.Sprintf("Student %d", i+1),
			PayerName:    "Maria",
			MonthlyPrice: dec(price),
			Active:       true,
			EnrolledAt:   int64(i + 1),
		})
	}
	return store
}

func newTestEngine(store storage.Store, opts ...Option) *Engine {
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return New(store, calendar.New("2025"), opts...)
}

func TestSnapshot(t *testing.T) {
	store := newFamilyStore("700", "800")
	store.payments = []models.PaymentRecord{
		{ID: "x", StudentID: "s1", MonthLabel: "Febrero 2025", Amount: dec("700"), Status: models.PaymentStatusPaid},
	}

	snap, err := newTestEngine(store).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Families) != 1 {
		t.Fatalf("expected 1 family, got %d", len(snap.Families))
	}
	fam, ok := snap.Family("name:Maria")
	if !ok {
		t.Fatal("expected family name:Maria")
	}
	if fam.CommonNextDueMonth != "Febrero 2025" {
		t.Errorf("common month: expected 'Febrero 2025', got '%s'", fam.CommonNextDueMonth)
	}
	if got := snap.Ledgers["s1"].NextDueMonth; got != "Marzo 2025" {
		t.Errorf("s1 next due: expected 'Marzo 2025', got '%s'", got)
	}
	if _, ok := snap.Student("s2"); !ok {
		t.Error("expected student s2 in snapshot")
	}
}

func TestFamily_NotFound(t *testing.T) {
	_, err := newTestEngine(newFamilyStore("700")).Family(context.Background(), "name:Nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPayOneMonth(t *testing.T) {
	store := newFamilyStore("700", "800")
	engine := newTestEngine(store)
	ctx := context.Background()

	result, err := engine.PayOneMonth(ctx, "name:Maria", "op-1")
	if err != nil {
		t.Fatalf("PayOneMonth failed: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Created))
	}
	if !result.Total.Equal(dec("1500")) {
		t.Errorf("total: expected 1500, got %s", result.Total)
	}
	for _, rec := range result.Created {
		if rec.MonthLabel != "Febrero 2025" || rec.RecordedBy != "op-1" || rec.Kind != models.PaymentKindRegular {
			t.Errorf("unexpected record %+v", rec)
		}
		if rec.PaidAt != time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC).Unix() {
			t.Errorf("paid_at not taken from clock: %d", rec.PaidAt)
		}
	}

	fam, err := engine.Family(ctx, "name:Maria")
	if err != nil {
		t.Fatalf("Family failed: %v", err)
	}
	if fam.CommonNextDueMonth != "Marzo 2025" {
		t.Errorf("after paying: expected 'Marzo 2025', got '%s'", fam.CommonNextDueMonth)
	}
}

func TestPayOneMonth_CurrentFamily(t *testing.T) {
	store := newFamilyStore("700")
	engine := newTestEngine(store)
	ctx := context.Background()

	if _, err := engine.PayFullYear(ctx, "name:Maria", ""); err != nil {
		t.Fatalf("PayFullYear failed: %v", err)
	}
	before := len(store.payments)

	result, err := engine.PayOneMonth(ctx, "name:Maria", "")
	if err != nil {
		t.Fatalf("PayOneMonth failed: %v", err)
	}
	if len(result.Created) != 0 || len(store.payments) != before {
		t.Errorf("expected no records for a current family, got %d", len(result.Created))
	}
}

func TestPayFullYear_SequentialOrder(t *testing.T) {
	store := newFamilyStore("700", "800")
	store.payments = []models.PaymentRecord{}
	for _, m := range calendar.New("2025").RegularMonths()[:7] {
		store.payments = append(store.payments, models.PaymentRecord{
			ID: "pre-" + m, StudentID: "s2", MonthLabel: m, Amount: dec("800"), Status: models.PaymentStatusPaid,
		})
	}

	result, err := newTestEngine(store).PayFullYear(context.Background(), "name:Maria", "")
	if err != nil {
		t.Fatalf("PayFullYear failed: %v", err)
	}
	if len(result.Created) != 13 {
		t.Fatalf("expected 13 records, got %d", len(result.Created))
	}
	if result.Created[0].MonthLabel != "Febrero 2025" || result.Created[0].StudentID != "s1" {
		t.Errorf("first record: got %s/%s", result.Created[0].StudentID, result.Created[0].MonthLabel)
	}
	if result.Created[10].MonthLabel != "Septiembre 2025" || result.Created[10].StudentID != "s2" {
		t.Errorf("record 11: got %s/%s", result.Created[10].StudentID, result.Created[10].MonthLabel)
	}
	if !result.Total.Equal(dec("9400")) {
		t.Errorf("total: expected 9400, got %s", result.Total)
	}
}

func TestPayFullYear_PartialFailure(t *testing.T) {
	store := newFamilyStore("700")
	store.failCreateAt = 4
	m := metrics.New()
	engine := newTestEngine(store, WithMetrics(m))

	result, err := engine.PayFullYear(context.Background(), "name:Maria", "")

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if !batchErr.Partial() || batchErr.Committed != 3 || batchErr.FailedAt != 3 || batchErr.Attempted != 10 {
		t.Errorf("unexpected batch error: %+v", batchErr)
	}
	if batchErr.Operation != OpPayFullYear {
		t.Errorf("operation: expected %s, got %s", OpPayFullYear, batchErr.Operation)
	}
	if len(store.payments) != 3 {
		t.Errorf("expected 3 committed records to remain, got %d", len(store.payments))
	}
	// earlier months commit first
	for i, want := range []string{"Febrero 2025", "Marzo 2025", "Abril 2025"} {
		if store.payments[i].MonthLabel != want {
			t.Errorf("payment %d: expected %s, got %s", i, want, store.payments[i].MonthLabel)
		}
	}
	if len(result.Created) != 3 {
		t.Errorf("result should list committed records, got %d", len(result.Created))
	}

	// refetch shows the family resuming from the first uncommitted month
	fam, err := engine.Family(context.Background(), "name:Maria")
	if err != nil {
		t.Fatalf("Family failed: %v", err)
	}
	if fam.CommonNextDueMonth != "Mayo 2025" {
		t.Errorf("after partial batch: expected 'Mayo 2025', got '%s'", fam.CommonNextDueMonth)
	}
}

func TestBatchError_FirstWriteFails(t *testing.T) {
	store := newFamilyStore("700", "800")
	store.failCreateAt = 1

	_, err := newTestEngine(store).PayOneMonth(context.Background(), "name:Maria", "")

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if batchErr.Partial() {
		t.Error("nothing was committed, batch should not be partial")
	}
	if len(store.payments) != 0 {
		t.Errorf("expected no records, got %d", len(store.payments))
	}
}

func TestDistributeDeposit(t *testing.T) {
	tests := []struct {
		name      string
		mode      calculator.DistributionMode
		engineOpt []Option
		wantTotal string
	}{
		{name: "engine default is single pass", wantTotal: "225"},
		{name: "explicit redistribute", mode: calculator.ModeRedistribute, wantTotal: "250"},
		{
			name:      "configured default",
			engineOpt: []Option{WithDistributionMode(calculator.ModeRedistribute)},
			wantTotal: "250",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFamilyStore("300", "100")
			result, err := newTestEngine(store, tt.engineOpt...).DistributeDeposit(context.Background(), "name:Maria", dec("250"), tt.mode, "op-2")
			if err != nil {
				t.Fatalf("DistributeDeposit failed: %v", err)
			}
			if !result.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("total: expected %s, got %s", tt.wantTotal, result.Total)
			}
			for _, rec := range result.Created {
				if rec.MonthLabel != "Diciembre 2025" || rec.Kind != models.PaymentKindDeposit {
					t.Errorf("unexpected record %+v", rec)
				}
			}
		})
	}
}

func TestDistributeDeposit_ValidationHasNoSideEffects(t *testing.T) {
	store := newFamilyStore("300", "100")
	_, err := newTestEngine(store).DistributeDeposit(context.Background(), "name:Maria", dec("500"), "", "")

	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.creates != 0 {
		t.Errorf("expected no writes, got %d", store.creates)
	}
}

func TestReverseMonth(t *testing.T) {
	store := newFamilyStore("700", "800")
	store.students = append(store.students, models.Student{
		ID: "other", PayerName: "Luis", MonthlyPrice: dec("500"), Active: true, EnrolledAt: 9,
	})
	engine := newTestEngine(store)
	ctx := context.Background()

	if _, err := engine.PayOneMonth(ctx, "name:Maria", ""); err != nil {
		t.Fatalf("PayOneMonth failed: %v", err)
	}
	if _, err := engine.PayOneMonth(ctx, "name:Luis", ""); err != nil {
		t.Fatalf("PayOneMonth failed: %v", err)
	}

	result, err := engine.ReverseMonth(ctx, "name:Maria", "Febrero 2025")
	if err != nil {
		t.Fatalf("ReverseMonth failed: %v", err)
	}
	if len(result.Deleted) != 2 || !result.Total.Equal(dec("1500")) {
		t.Errorf("expected 2 deletions totalling 1500, got %d / %s", len(result.Deleted), result.Total)
	}
	if len(store.payments) != 1 || store.payments[0].StudentID != "other" {
		t.Errorf("other family's payment must survive, got %+v", store.payments)
	}
}

func TestReverseMonth_Errors(t *testing.T) {
	store := newFamilyStore("700")
	engine := newTestEngine(store)
	ctx := context.Background()

	var verr *calculator.ValidationError
	if _, err := engine.ReverseMonth(ctx, "name:Maria", "Enero 2025"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown month, got %v", err)
	}
	if _, err := engine.ReverseMonth(ctx, "name:Nobody", "Marzo 2025"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown family, got %v", err)
	}

	store.payments = []models.PaymentRecord{
		{ID: "d1", StudentID: "s1", MonthLabel: "Diciembre 2025", Amount: dec("100"), Status: models.PaymentStatusPaid},
		{ID: "d2", StudentID: "s1", MonthLabel: "Diciembre 2025", Amount: dec("50"), Status: models.PaymentStatusPaid},
	}
	store.failDeleteAt = 2

	_, err := engine.ReverseMonth(ctx, "name:Maria", "Diciembre 2025")
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if batchErr.Committed != 1 || batchErr.Operation != OpReverseMonth {
		t.Errorf("unexpected batch error: %+v", batchErr)
	}
}

// racingStore writes a competing copy of the nth created record just before
// it, the way a second operator paying the same month would.
type racingStore struct {
	*sqlite.SQLiteStore
	raceAt  int
	creates int
}

func (r *racingStore) CreatePayment(ctx context.Context, p *models.PaymentRecord) error {
	r.creates++
	if r.creates == r.raceAt {
		other := *p
		other.RecordedBy = "other-operator"
		if err := r.SQLiteStore.CreatePayment(ctx, &other); err != nil {
			return err
		}
	}
	return r.SQLiteStore.CreatePayment(ctx, p)
}

func newSQLiteFamily(t *testing.T, prices ...string) (*sqlite.SQLiteStore, []models.Student) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for i, price := range prices {
		st := &models.Student{
			DisplayName:  "Kid " + price,
			PayerID:      "payer-1",
			PayerName:    "Maria",
			MonthlyPrice: dec(price),
			Active:       true,
			EnrolledAt:   int64(100 + i),
		}
		if err := store.CreateStudent(ctx, st); err != nil {
			t.Fatalf("CreateStudent failed: %v", err)
		}
	}
	students, err := store.ListStudents(ctx)
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	return store, students
}

func TestEngine_SQLiteConflict(t *testing.T) {
	store, _ := newSQLiteFamily(t, "700", "800")
	ctx := context.Background()
	engine := newTestEngine(&racingStore{SQLiteStore: store, raceAt: 2})

	_, err := engine.PayOneMonth(ctx, "id:payer-1", "")
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict through BatchError, got %v", err)
	}
	var batchErr *BatchError
	if !errors.As(err, &batchErr) || batchErr.Committed != 1 {
		t.Fatalf("expected first student's record to be committed, got %v", err)
	}

	// The competing write settled the month, so a refetch moves on.
	fam, err := engine.Family(ctx, "id:payer-1")
	if err != nil {
		t.Fatalf("Family failed: %v", err)
	}
	if fam.CommonNextDueMonth != "Marzo 2025" {
		t.Errorf("expected family to advance to Marzo 2025, got %s", fam.CommonNextDueMonth)
	}
}

func TestEngine_PriceRaiseTopsUpMonth(t *testing.T) {
	store, students := newSQLiteFamily(t, "700")
	ctx := context.Background()
	engine := newTestEngine(store)

	if _, err := engine.PayOneMonth(ctx, "id:payer-1", ""); err != nil {
		t.Fatalf("PayOneMonth failed: %v", err)
	}

	raised := students[0]
	raised.MonthlyPrice = dec("800")
	if err := store.UpdateStudent(ctx, &raised); err != nil {
		t.Fatalf("UpdateStudent failed: %v", err)
	}

	fam, err := engine.Family(ctx, "id:payer-1")
	if err != nil {
		t.Fatalf("Family failed: %v", err)
	}
	if fam.CommonNextDueMonth != "Febrero 2025" {
		t.Fatalf("expected Febrero 2025 to reopen after the raise, got %s", fam.CommonNextDueMonth)
	}

	result, err := engine.PayOneMonth(ctx, "id:payer-1", "")
	if err != nil {
		t.Fatalf("PayOneMonth after raise failed: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected one top-up record, got %d", len(result.Created))
	}
	topUp := result.Created[0]
	if topUp.MonthLabel != "Febrero 2025" || !topUp.Amount.Equal(dec("100")) || topUp.Sequence != 1 {
		t.Errorf("unexpected top-up %+v", topUp)
	}

	// Repeated calls keep advancing instead of aborting on the same month.
	for _, want := range []string{"Marzo 2025", "Abril 2025"} {
		result, err := engine.PayOneMonth(ctx, "id:payer-1", "")
		if err != nil {
			t.Fatalf("PayOneMonth failed: %v", err)
		}
		if len(result.Created) != 1 || result.Created[0].MonthLabel != want || !result.Created[0].Amount.Equal(dec("800")) {
			t.Errorf("expected one 800 record for %s, got %+v", want, result.Created)
		}
	}
}

func TestEngine_PriceRaiseFullYear(t *testing.T) {
	store, students := newSQLiteFamily(t, "700")
	ctx := context.Background()
	engine := newTestEngine(store)

	if _, err := engine.PayOneMonth(ctx, "id:payer-1", ""); err != nil {
		t.Fatalf("PayOneMonth failed: %v", err)
	}
	raised := students[0]
	raised.MonthlyPrice = dec("800")
	if err := store.UpdateStudent(ctx, &raised); err != nil {
		t.Fatalf("UpdateStudent failed: %v", err)
	}

	result, err := engine.PayFullYear(ctx, "id:payer-1", "")
	if err != nil {
		t.Fatalf("PayFullYear after raise failed: %v", err)
	}
	if len(result.Created) != 10 {
		t.Fatalf("expected top-up plus 9 months, got %d", len(result.Created))
	}
	if !result.Total.Equal(dec("7300")) {
		t.Errorf("total: expected 7300 (100 + 9 x 800), got %s", result.Total)
	}

	fam, err := engine.Family(ctx, "id:payer-1")
	if err != nil {
		t.Fatalf("Family failed: %v", err)
	}
	if !fam.Current {
		t.Errorf("expected family current, still due %s", fam.CommonNextDueMonth)
	}
}
