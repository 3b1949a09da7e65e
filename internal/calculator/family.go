package calculator

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/models"
)

// Member is one student of a family together with their ledger.
type Member struct {
	Student models.Student
	Ledger  StudentLedger
}

// Family groups the students that share one payer.
// It is derived on every refresh and never persisted.
type Family struct {
	// Key identifies the family within one snapshot: "id:<payer id>" when
	// the students carry a stable payer ID, "name:<payer name>" otherwise.
	Key       string
	PayerID   string
	PayerName string
	Contact   string

	// Members are in stable enrollment order.
	Members []Member

	TotalMonthly     decimal.Decimal // Σ member prices
	DepositDebtTotal decimal.Decimal // Σ member deposit balances

	// CommonNextDueMonth is the earliest NextDueMonth among members.
	// Empty when Current.
	CommonNextDueMonth string
	Current            bool

	// CommonDueAmount sums the prices of members whose own NextDueMonth is
	// the common month. Siblings further behind are not included.
	CommonDueAmount decimal.Decimal

	TotalRemainingYear decimal.Decimal // Σ price × MonthsRemaining
	MaxMonthsRemaining int

	// FullYearOffered is false when paying the full year would be the same
	// as paying one month.
	FullYearOffered bool
}

// Member returns the member with the given student ID.
func (f *Family) Member(studentID string) (Member, bool) {
	for _, m := range f.Members {
		if m.Student.ID == studentID {
			return m, true
		}
	}
	return Member{}, false
}

// CollisionKind describes how two payer identities clash.
type CollisionKind string

const (
	// CollisionNameSharedByIDs: one payer name appears under several payer IDs.
	CollisionNameSharedByIDs CollisionKind = "name_shared_by_ids"
	// CollisionIDWithNames: one payer ID appears with several payer names.
	CollisionIDWithNames CollisionKind = "id_with_several_names"
	// CollisionNameMatchesID: a name-only student matches the name of an ID-keyed family.
	CollisionNameMatchesID CollisionKind = "name_matches_identified_payer"
)

// PayerCollision flags payer identities that probably refer to the same
// person but were grouped into different families, or the reverse.
type PayerCollision struct {
	Kind      CollisionKind
	PayerName string
	PayerID   string
	Families  []string // family keys involved
}

// FamilyKey returns the grouping key for a student.
func FamilyKey(s models.Student) string {
	if s.PayerID != "" {
		return "id:" + s.PayerID
	}
	return "name:" + s.PayerName
}

// AggregateFamilies groups active students by payer and rolls their ledgers
// up into family totals. Students without a ledger entry are treated as
// having no payments. Families are returned in order of their first
// enrolled member; members keep the order of students. tol must be the
// tolerances the ledgers were computed with.
func AggregateFamilies(cal *calendar.Calendar, students []models.Student, ledgers map[string]StudentLedger, tol Tolerances) ([]Family, []PayerCollision) {
	var order []string
	families := make(map[string]*Family)

	for _, s := range students {
		if !s.Active {
			continue
		}

		key := FamilyKey(s)
		fam, exists := families[key]
		if !exists {
			fam = &Family{
				Key:       key,
				PayerID:   s.PayerID,
				PayerName: s.PayerName,
				Contact:   s.PayerContact,
			}
			families[key] = fam
			order = append(order, key)
		}
		if fam.Contact == "" {
			fam.Contact = s.PayerContact
		}

		ledger, ok := ledgers[s.ID]
		if !ok {
			ledger = ComputeLedger(cal, s, nil, tol)
		}
		fam.Members = append(fam.Members, Member{Student: s, Ledger: ledger})
	}

	result := make([]Family, 0, len(order))
	for _, key := range order {
		fam := families[key]
		summarize(cal, fam)
		result = append(result, *fam)
	}

	collisions := detectCollisions(students)
	for _, c := range collisions {
		slog.Warn("Payer identity collision",
			"kind", c.Kind,
			"payer_name", c.PayerName,
			"payer_id", c.PayerID,
			"families", c.Families,
		)
	}

	return result, collisions
}

func summarize(cal *calendar.Calendar, fam *Family) {
	fam.Current = true
	common := -1

	for _, m := range fam.Members {
		price := m.Student.MonthlyPrice
		fam.TotalMonthly = fam.TotalMonthly.Add(price)
		fam.DepositDebtTotal = fam.DepositDebtTotal.Add(m.Ledger.DepositBalance)
		fam.TotalRemainingYear = fam.TotalRemainingYear.Add(price.Mul(decimal.NewFromInt(int64(m.Ledger.MonthsRemaining))))
		if m.Ledger.MonthsRemaining > fam.MaxMonthsRemaining {
			fam.MaxMonthsRemaining = m.Ledger.MonthsRemaining
		}

		if m.Ledger.Current {
			continue
		}
		ord := cal.Ordinal(m.Ledger.NextDueMonth)
		if common == -1 || ord < common {
			common = ord
			fam.CommonNextDueMonth = m.Ledger.NextDueMonth
			fam.Current = false
		}
	}

	if !fam.Current {
		for _, m := range fam.Members {
			if !m.Ledger.Current && m.Ledger.NextDueMonth == fam.CommonNextDueMonth {
				fam.CommonDueAmount = fam.CommonDueAmount.Add(m.Student.MonthlyPrice)
			}
		}
	}

	fam.FullYearOffered = fam.MaxMonthsRemaining > 1
}

func detectCollisions(students []models.Student) []PayerCollision {
	idsByName := make(map[string][]string)
	namesByID := make(map[string][]string)
	nameOnly := make(map[string]bool)
	var nameOrder, idOrder []string

	for _, s := range students {
		if !s.Active {
			continue
		}
		if s.PayerID == "" {
			nameOnly[s.PayerName] = true
			if _, seen := idsByName[s.PayerName]; !seen {
				idsByName[s.PayerName] = nil
				nameOrder = append(nameOrder, s.PayerName)
			}
			continue
		}
		if _, seen := idsByName[s.PayerName]; !seen {
			nameOrder = append(nameOrder, s.PayerName)
		}
		idsByName[s.PayerName] = appendUnique(idsByName[s.PayerName], s.PayerID)
		if _, seen := namesByID[s.PayerID]; !seen {
			idOrder = append(idOrder, s.PayerID)
		}
		namesByID[s.PayerID] = appendUnique(namesByID[s.PayerID], s.PayerName)
	}

	var out []PayerCollision
	for _, name := range nameOrder {
		ids := idsByName[name]
		if len(ids) > 1 {
			out = append(out, PayerCollision{
				Kind:      CollisionNameSharedByIDs,
				PayerName: name,
				Families:  idKeys(ids),
			})
		}
		if nameOnly[name] && len(ids) > 0 {
			out = append(out, PayerCollision{
				Kind:      CollisionNameMatchesID,
				PayerName: name,
				Families:  append([]string{"name:" + name}, idKeys(ids)...),
			})
		}
	}
	for _, id := range idOrder {
		if names := namesByID[id]; len(names) > 1 {
			out = append(out, PayerCollision{
				Kind:     CollisionIDWithNames,
				PayerID:  id,
				Families: []string{"id:" + id},
			})
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func idKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "id:" + id
	}
	return keys
}
