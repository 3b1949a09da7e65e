// Package billing runs the reconciliation engine against a payment repository:
// it refreshes ledgers and families from the store, plans payment batches and
// persists them one record at a time.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/metrics"
	"github.com/mmynk/feeledger/internal/models"
	"github.com/mmynk/feeledger/internal/storage"
)

// Operation names, used in logs, metrics and BatchError.
const (
	OpPayOneMonth       = "pay_one_month"
	OpPayFullYear       = "pay_full_year"
	OpDistributeDeposit = "distribute_deposit"
	OpReverseMonth      = "reverse_month"
)

// Engine is stateless between calls: every operation starts from a fresh
// snapshot of the store, and callers are expected to refetch afterwards.
type Engine struct {
	store   storage.Store
	cal     *calendar.Calendar
	tol     calculator.Tolerances
	mode    calculator.DistributionMode
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerances overrides the default settlement tolerances.
func WithTolerances(tol calculator.Tolerances) Option {
	return func(e *Engine) { e.tol = tol }
}

// WithDistributionMode sets the mode used when a deposit request names none.
func WithDistributionMode(mode calculator.DistributionMode) Option {
	return func(e *Engine) { e.mode = mode }
}

// WithMetrics records batch outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over store for the school year described by cal.
func New(store storage.Store, cal *calendar.Calendar, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		cal:   cal,
		tol:   calculator.DefaultTolerances(),
		mode:  calculator.ModeSinglePass,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calendar returns the school-year calendar the engine bills against.
func (e *Engine) Calendar() *calendar.Calendar { return e.cal }

// Snapshot is a consistent-enough view of the store: students and payments
// are read concurrently and may reflect writes made in between. Nothing
// detects a snapshot going stale; the next refetch resolves it.
type Snapshot struct {
	Calendar   *calendar.Calendar
	Students   []models.Student
	Payments   []models.PaymentRecord
	Ledgers    map[string]calculator.StudentLedger
	Families   []calculator.Family
	Collisions []calculator.PayerCollision
	TakenAt    time.Time
}

// Family returns the family with the given key.
func (s *Snapshot) Family(key string) (*calculator.Family, bool) {
	for i := range s.Families {
		if s.Families[i].Key == key {
			return &s.Families[i], true
		}
	}
	return nil, false
}

// Student returns the student with the given ID.
func (s *Snapshot) Student(id string) (*models.Student, bool) {
	for i := range s.Students {
		if s.Students[i].ID == id {
			return &s.Students[i], true
		}
	}
	return nil, false
}

// Snapshot reads students and payments and recomputes every ledger and family.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		students []models.Student
		payments []models.PaymentRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = e.store.ListStudents(gctx)
		if err != nil {
			return fmt.Errorf("failed to list students: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = e.store.ListPayments(gctx)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ledgers := calculator.ComputeLedgers(e.cal, students, payments, e.tol)
	families, collisions := calculator.AggregateFamilies(e.cal, students, ledgers, e.tol)
	e.metrics.Collisions(len(collisions))

	slog.Debug("Snapshot computed",
		"students", len(students),
		"payments", len(payments),
		"families", len(families),
		"collisions", len(collisions),
	)

	return &Snapshot{
		Calendar:   e.cal,
		Students:   students,
		Payments:   payments,
		Ledgers:    ledgers,
		Families:   families,
		Collisions: collisions,
		TakenAt:    e.now(),
	}, nil
}

// Family returns one family from a fresh snapshot.
func (e *Engine) Family(ctx context.Context, key string) (*calculator.Family, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	fam, ok := snap.Family(key)
	if !ok {
		return nil, fmt.Errorf("family %s: %w", key, storage.ErrNotFound)
	}
	return fam, nil
}

// Ledger returns one student's ledger from a fresh snapshot.
func (e *Engine) Ledger(ctx context.Context, studentID string) (*models.Student, calculator.StudentLedger, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, calculator.StudentLedger{}, err
	}
	st, ok := snap.Student(studentID)
	if !ok {
		return nil, calculator.StudentLedger{}, fmt.Errorf("student %s: %w", studentID, storage.ErrNotFound)
	}
	return st, snap.Ledgers[studentID], nil
}
