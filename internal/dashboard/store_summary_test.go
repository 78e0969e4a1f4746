package dashboard

import (
	"testing"
	"time"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/database/dbtest"
	"pyme-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func insert(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Omit(clause.Associations).Create(v).Error; err != nil {
		t.Fatalf("insert %T: %v", v, err)
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 30, 0, 0, time.Local)

	r, err := ParseRange("", "", now)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if r.From.Format(dateLayout) != "2026-04-21" || r.To.Format(dateLayout) != "2026-05-20" {
		t.Fatalf("default range = %s..%s", r.From.Format(dateLayout), r.To.Format(dateLayout))
	}

	r, err = ParseRange("2026-01-01", "2026-01-31", now)
	if err != nil || r.end().Format(dateLayout) != "2026-02-01" {
		t.Fatalf("explicit range: %v %v", r, err)
	}

	if _, err := ParseRange("01/01/2026", "", now); !apperr.IsValidation(err) {
		t.Fatalf("bad desde: %v", err)
	}
	if _, err := ParseRange("2026-02-01", "2026-01-01", now); !apperr.IsValidation(err) {
		t.Fatalf("inverted range: %v", err)
	}
}

func TestStoreSummary(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	emp := dbtest.CreateUser(t, db, "emp")
	store := dbtest.CreateStore(t, db, "Tienda", owner, nil, emp)
	other := dbtest.CreateStore(t, db, "Otra", owner, nil)

	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)
	ended := day2.Add(20 * time.Hour)

	sh := &models.Shift{
		StoreID:       store.ID,
		OpenedByID:    owner.ID,
		ClosedByID:    &owner.ID,
		StartedAt:     day1.Add(8 * time.Hour),
		EndedAt:       &ended,
		TotalSales:    d("22.00"),
		GrossProfit:   d("9.00"),
		EmployeeWages: d("3.00"),
		AdminWages:    d("1.00"),
		Expenses:      d("0.50"),
	}
	insert(t, db, sh)
	otherShift := &models.Shift{StoreID: other.ID, OpenedByID: owner.ID, StartedAt: day1, Active: true}
	insert(t, db, otherShift)

	sale := func(shiftID, storeID uint, at time.Time, total string, m models.PaymentMethod) {
		insert(t, db, &models.Sale{
			ShiftID: shiftID, SellerID: emp.ID, StoreID: storeID,
			SoldAt: at, Total: d(total), PaymentMethod: m,
		})
	}
	sale(sh.ID, store.ID, day1.Add(9*time.Hour), "10.00", models.PaymentCash)
	sale(sh.ID, store.ID, day1.Add(10*time.Hour), "5.00", models.PaymentTransfer)
	sale(sh.ID, store.ID, day2.Add(9*time.Hour), "7.00", models.PaymentCash)
	sale(sh.ID, store.ID, day1.AddDate(0, 0, -5), "99.00", models.PaymentCash)
	sale(otherShift.ID, other.ID, day1.Add(9*time.Hour), "50.00", models.PaymentCash)

	r := Range{From: day1, To: day2}

	if _, err := StoreSummary(db, emp, store.ID, r); !apperr.IsForbidden(err) {
		t.Fatalf("employee summary: %v", err)
	}
	if _, err := StoreSummary(db, owner, 9999, r); !apperr.IsNotFound(err) {
		t.Fatalf("missing store: %v", err)
	}

	got, err := StoreSummary(db, owner, store.ID, r)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(got.Days) != 2 {
		t.Fatalf("days = %+v", got.Days)
	}
	first := got.Days[0]
	if first.Date != "2026-03-02" || first.Cash != "10.00" || first.Transfer != "5.00" || first.Total != "15.00" || first.SalesCount != 2 {
		t.Fatalf("day1 = %+v", first)
	}
	if got.Days[1].Total != "7.00" {
		t.Fatalf("day2 = %+v", got.Days[1])
	}
	if got.Totals.Total != "22.00" || got.Totals.Cash != "17.00" || got.Totals.SalesCount != 3 {
		t.Fatalf("totals = %+v", got.Totals)
	}
	if got.Shifts.ClosedShifts != 1 || got.Shifts.NetProfit != "4.50" {
		t.Fatalf("shifts = %+v", got.Shifts)
	}
}
