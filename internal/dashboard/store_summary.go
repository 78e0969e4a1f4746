// Package dashboard resume las ventas y los cierres de una PYME por día.
package dashboard

import (
	"sort"
	"time"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/models"
	"pyme-backend/internal/pyme"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dateLayout  = "2006-01-02"
	defaultDays = 30
)

// Range es un intervalo de días completos, ambos extremos incluidos.
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange lee desde/hasta (YYYY-MM-DD). Sin ellos se toman los últimos
// 30 días hasta hoy.
func ParseRange(desde, hasta string, now time.Time) (Range, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	r := Range{From: today.AddDate(0, 0, -(defaultDays - 1)), To: today}
	if hasta != "" {
		t, err := time.ParseInLocation(dateLayout, hasta, loc)
		if err != nil {
			return Range{}, apperr.Invalid("hasta", "Fecha inválida, use AAAA-MM-DD")
		}
		r.To = t
		if desde == "" {
			r.From = t.AddDate(0, 0, -(defaultDays - 1))
		}
	}
	if desde != "" {
		t, err := time.ParseInLocation(dateLayout, desde, loc)
		if err != nil {
			return Range{}, apperr.Invalid("desde", "Fecha inválida, use AAAA-MM-DD")
		}
		r.From = t
	}
	if r.From.After(r.To) {
		return Range{}, apperr.Invalid("desde", "La fecha inicial es posterior a la final")
	}
	return r, nil
}

// end es el inicio del día siguiente a To.
func (r Range) end() time.Time { return r.To.AddDate(0, 0, 1) }

type DayPoint struct {
	Date       string `json:"fecha"`
	Cash       string `json:"efectivo"`
	Transfer   string `json:"transferencia"`
	Total      string `json:"total"`
	SalesCount int    `json:"cantidad_ventas"`
}

type SalesTotals struct {
	Cash       string `json:"efectivo"`
	Transfer   string `json:"transferencia"`
	Total      string `json:"total"`
	SalesCount int    `json:"cantidad_ventas"`
}

type ShiftTotals struct {
	ClosedShifts  int    `json:"turnos_cerrados"`
	TotalSales    string `json:"total_ventas"`
	GrossProfit   string `json:"ganancia_bruta"`
	EmployeeWages string `json:"salario_empleados"`
	AdminWages    string `json:"salario_admin"`
	Expenses      string `json:"gastos"`
	NetProfit     string `json:"ganancia_neta"`
}

type SummaryResponse struct {
	StoreID   uint        `json:"pyme"`
	StoreName string      `json:"pyme_nombre"`
	From      string      `json:"desde"`
	To        string      `json:"hasta"`
	Days      []DayPoint  `json:"dias"`
	Totals    SalesTotals `json:"totales"`
	Shifts    ShiftTotals `json:"turnos"`
}

type dayAgg struct {
	day      time.Time
	cash     decimal.Decimal
	transfer decimal.Decimal
	count    int
}

// StoreSummary agrupa por día las ventas de la PYME dentro del rango y suma
// los turnos cerrados en él. Solo propietario o administrador.
func StoreSummary(db *gorm.DB, user *models.User, storeID uint, r Range) (*SummaryResponse, error) {
	store, err := pyme.LoadManaged(db, user, storeID, "No tienes permiso para ver el resumen de esta PYME")
	if err != nil {
		return nil, err
	}

	var sales []models.Sale
	err = db.Select("id", "sold_at", "total", "payment_method").
		Where("store_id = ? AND sold_at >= ? AND sold_at < ?", store.ID, r.From, r.end()).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	loc := r.From.Location()
	buckets := make(map[string]*dayAgg)
	for _, s := range sales {
		t := s.SoldAt.In(loc)
		key := t.Format(dateLayout)
		agg, ok := buckets[key]
		if !ok {
			agg = &dayAgg{
				day:      time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
				cash:     decimal.Zero,
				transfer: decimal.Zero,
			}
			buckets[key] = agg
		}
		switch s.PaymentMethod {
		case models.PaymentCash:
			agg.cash = agg.cash.Add(s.Total)
		case models.PaymentTransfer:
			agg.transfer = agg.transfer.Add(s.Total)
		}
		agg.count++
	}

	ordered := make([]*dayAgg, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].day.Before(ordered[j].day) })

	resp := &SummaryResponse{
		StoreID:   store.ID,
		StoreName: store.Name,
		From:      r.From.Format(dateLayout),
		To:        r.To.Format(dateLayout),
		Days:      make([]DayPoint, 0, len(ordered)),
	}

	cash, transfer := decimal.Zero, decimal.Zero
	for _, b := range ordered {
		resp.Days = append(resp.Days, DayPoint{
			Date:       b.day.Format(dateLayout),
			Cash:       b.cash.StringFixed(2),
			Transfer:   b.transfer.StringFixed(2),
			Total:      b.cash.Add(b.transfer).StringFixed(2),
			SalesCount: b.count,
		})
		cash = cash.Add(b.cash)
		transfer = transfer.Add(b.transfer)
		resp.Totals.SalesCount += b.count
	}
	resp.Totals.Cash = cash.StringFixed(2)
	resp.Totals.Transfer = transfer.StringFixed(2)
	resp.Totals.Total = cash.Add(transfer).StringFixed(2)

	shifts, err := closedShiftTotals(db, store.ID, r)
	if err != nil {
		return nil, err
	}
	resp.Shifts = shifts
	return resp, nil
}

func closedShiftTotals(db *gorm.DB, storeID uint, r Range) (ShiftTotals, error) {
	var shifts []models.Shift
	err := db.Where("store_id = ? AND active = ? AND ended_at >= ? AND ended_at < ?", storeID, false, r.From, r.end()).
		Find(&shifts).Error
	if err != nil {
		return ShiftTotals{}, err
	}

	sum := models.Shift{
		TotalSales:    decimal.Zero,
		GrossProfit:   decimal.Zero,
		EmployeeWages: decimal.Zero,
		AdminWages:    decimal.Zero,
		Expenses:      decimal.Zero,
	}
	for _, sh := range shifts {
		sum.TotalSales = sum.TotalSales.Add(sh.TotalSales)
		sum.GrossProfit = sum.GrossProfit.Add(sh.GrossProfit)
		sum.EmployeeWages = sum.EmployeeWages.Add(sh.EmployeeWages)
		sum.AdminWages = sum.AdminWages.Add(sh.AdminWages)
		sum.Expenses = sum.Expenses.Add(sh.Expenses)
	}

	return ShiftTotals{
		ClosedShifts:  len(shifts),
		TotalSales:    sum.TotalSales.StringFixed(2),
		GrossProfit:   sum.GrossProfit.StringFixed(2),
		EmployeeWages: sum.EmployeeWages.StringFixed(2),
		AdminWages:    sum.AdminWages.StringFixed(2),
		Expenses:      sum.Expenses.StringFixed(2),
		NetProfit:     sum.NetProfit().StringFixed(2),
	}, nil
}
