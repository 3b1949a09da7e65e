package calendar

import (
	"testing"

	"github.com/mmynk/feeledger/internal/models"
)

func TestDefaultCalendar(t *testing.T) {
	cal := New("2025")

	months := cal.RegularMonths()
	if len(months) != 10 {
		t.Fatalf("regular months: expected 10, got %d", len(months))
	}
	if months[0] != "Febrero 2025" {
		t.Errorf("first month: expected 'Febrero 2025', got '%s'", months[0])
	}
	if cal.LastRegular() != "Noviembre 2025" {
		t.Errorf("last month: expected 'Noviembre 2025', got '%s'", cal.LastRegular())
	}
	if cal.DepositMonth() != "Diciembre 2025" {
		t.Errorf("deposit month: expected 'Diciembre 2025', got '%s'", cal.DepositMonth())
	}
}

func TestOrdinal(t *testing.T) {
	cal := New("2025")

	tests := []struct {
		label string
		want  int
	}{
		{"Febrero 2025", 0},
		{"Marzo 2025", 1},
		{"Noviembre 2025", 9},
		{"Diciembre 2025", 10},
		{"Marzo 2024", -1},
		{"marzo 2025", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := cal.Ordinal(tt.label); got != tt.want {
			t.Errorf("Ordinal(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestKinds(t *testing.T) {
	cal := New("2025")

	if !cal.IsDeposit("Diciembre 2025") {
		t.Error("expected Diciembre 2025 to be the deposit month")
	}
	if cal.IsRegular("Diciembre 2025") {
		t.Error("deposit month must not be regular")
	}
	if cal.KindOf("Diciembre 2025") != models.PaymentKindDeposit {
		t.Error("expected deposit kind")
	}
	if cal.KindOf("Abril 2025") != models.PaymentKindRegular {
		t.Error("expected regular kind")
	}
}

func TestMonthsFrom(t *testing.T) {
	cal := New("2025")

	if got := cal.MonthsFrom("Febrero 2025"); len(got) != 10 {
		t.Errorf("from first month: expected 10, got %d", len(got))
	}
	got := cal.MonthsFrom("Noviembre 2025")
	if len(got) != 1 || got[0] != "Noviembre 2025" {
		t.Errorf("from last month: expected [Noviembre 2025], got %v", got)
	}
	if got := cal.MonthsFrom("Diciembre 2025"); got != nil {
		t.Errorf("from deposit month: expected nil, got %v", got)
	}
}

func TestRegularMonthsIsACopy(t *testing.T) {
	cal := New("2025")
	months := cal.RegularMonths()
	months[0] = "changed"

	if cal.FirstRegular() != "Febrero 2025" {
		t.Error("mutating the returned slice changed the calendar")
	}
}

func TestNewWithMonths(t *testing.T) {
	tests := []struct {
		name    string
		year    string
		regular []string
		deposit string
		wantErr bool
	}{
		{name: "custom cycle", year: "2026", regular: []string{"Marzo", "Abril"}, deposit: "Mayo"},
		{name: "empty year", year: " ", regular: []string{"Marzo"}, deposit: "Mayo", wantErr: true},
		{name: "no regular months", year: "2026", deposit: "Mayo", wantErr: true},
		{name: "duplicate month", year: "2026", regular: []string{"Marzo", "Marzo"}, deposit: "Mayo", wantErr: true},
		{name: "deposit repeats regular", year: "2026", regular: []string{"Marzo"}, deposit: "Marzo", wantErr: true},
		{name: "empty deposit", year: "2026", regular: []string{"Marzo"}, deposit: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := NewWithMonths(tt.year, tt.regular, tt.deposit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithMonths() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cal.Ordinal(tt.deposit+" "+tt.year) != len(tt.regular) {
				t.Errorf("deposit ordinal = %d, want %d", cal.Ordinal(tt.deposit+" "+tt.year), len(tt.regular))
			}
		})
	}
}
