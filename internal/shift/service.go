// Package shift implementa el ciclo de vida de los turnos: abierto al crearse,
// cerrado una única vez con el resumen financiero congelado.
package shift

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pyme-backend/internal/access"
	"pyme-backend/internal/apperr"
	"pyme-backend/internal/audit"
	"pyme-backend/internal/models"
	"pyme-backend/internal/pyme"
	"pyme-backend/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const EntityShift = "shift"

// salarios y gastos en decimal(10,2)
const wageIntDigits = 8

type OpenInput struct {
	StoreID     *uint  `json:"pyme"`
	EmployeeIDs []uint `json:"empleados"`
}

type CloseInput struct {
	EmployeeWages *decimal.Decimal `json:"salario_empleados"`
	AdminWages    *decimal.Decimal `json:"salario_admin"`
	Expenses      *decimal.Decimal `json:"gastos"`
	ExpenseNotes  *string          `json:"notas_gastos"`
}

// totales en decimal(12,2)
const TotalIntDigits = 10

// Totals es el resumen que se congela al cerrar.
type Totals struct {
	Sales       decimal.Decimal
	GrossProfit decimal.Decimal
}

// Validate anota en v los totales que no caben en las columnas del turno.
func (t Totals) Validate(v validation.Violations) {
	validation.MaxDigits(v, "total_ventas", &t.Sales, TotalIntDigits)
	validation.MaxDigits(v, "ganancia_bruta", &t.GrossProfit, TotalIntDigits)
}

// Load lee el turno con su PYME, quién lo abrió y cerró y sus empleados.
func Load(db *gorm.DB, id uint) (*models.Shift, error) {
	var sh models.Shift
	err := db.Preload("Store").
		Preload("OpenedBy").
		Preload("ClosedBy").
		Preload("Employees", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.id ASC")
		}).
		First(&sh, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Turno no encontrado")
		}
		return nil, err
	}
	return &sh, nil
}

// Open abre un turno en la PYME. Todos los empleados pedidos deben ser
// empleados actuales de la PYME; si alguno no lo es (o se repite) no se crea
// nada.
func Open(db *gorm.DB, user *models.User, in OpenInput) (*models.Shift, error) {
	if in.StoreID == nil || *in.StoreID == 0 {
		return nil, apperr.Invalid("pyme", "Se requiere el ID de la PYME")
	}
	store, err := pyme.LoadManaged(db, user, *in.StoreID, "No tienes permiso para abrir turnos en esta PYME")
	if err != nil {
		return nil, err
	}

	members := make(map[uint]models.User, len(store.Employees))
	for _, e := range store.Employees {
		members[e.ID] = e
	}
	seen := make(map[uint]bool, len(in.EmployeeIDs))
	employees := make([]models.User, 0, len(in.EmployeeIDs))
	var rejected []string
	for _, id := range in.EmployeeIDs {
		e, ok := members[id]
		if !ok || seen[id] {
			rejected = append(rejected, fmt.Sprint(id))
			continue
		}
		seen[id] = true
		employees = append(employees, e)
	}
	if len(employees) != len(in.EmployeeIDs) {
		return nil, apperr.Validation("Algunos empleados no pertenecen a esta PYME", map[string]string{
			"empleados": fmt.Sprintf("No pertenecen a esta PYME o están repetidos: %s", strings.Join(rejected, ", ")),
		})
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })

	sh := models.Shift{
		StoreID:    store.ID,
		OpenedByID: user.ID,
		Employees:  employees,
		StartedAt:  time.Now(),
		Active:     true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Store", "OpenedBy", "ClosedBy", "Employees.*").Create(&sh).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityShift,
			EntityID:    sh.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Turno abierto con %d empleados", len(employees)),
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, sh.ID)
}

// Close cierra el turno y congela sus totales. La fila del turno se bloquea
// (FOR UPDATE) antes de sumar, así una venta en curso, que toma el mismo
// turno FOR SHARE, queda contada entera o no se registra.
func Close(db *gorm.DB, user *models.User, id uint, in CloseInput) (*models.Shift, error) {
	v := validation.Violations{}
	validation.MaxDigits(v, "salario_empleados", in.EmployeeWages, wageIntDigits)
	validation.MaxDigits(v, "salario_admin", in.AdminWages, wageIntDigits)
	validation.MaxDigits(v, "gastos", in.Expenses, wageIntDigits)

	err := db.Transaction(func(tx *gorm.DB) error {
		var sh models.Shift
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sh, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Turno no encontrado")
			}
			return err
		}

		store, err := pyme.Load(tx, sh.StoreID)
		if err != nil {
			return err
		}
		if !access.CanManageStore(user, store) {
			return apperr.Forbidden("No tienes permiso para cerrar este turno")
		}
		if !sh.Active {
			return apperr.Conflict("El turno ya está cerrado")
		}
		if err := v.Err(""); err != nil {
			return err
		}

		totals, err := ComputeTotals(tx, sh.ID)
		if err != nil {
			return err
		}
		tv := validation.Violations{}
		totals.Validate(tv)
		if err := tv.Err("Los totales del turno exceden el máximo permitido"); err != nil {
			return err
		}

		now := time.Now()
		notes := ""
		if in.ExpenseNotes != nil {
			notes = *in.ExpenseNotes
		}
		changes := map[string]any{
			"total_sales":    totals.Sales,
			"gross_profit":   totals.GrossProfit,
			"employee_wages": amountOrZero(in.EmployeeWages),
			"admin_wages":    amountOrZero(in.AdminWages),
			"expenses":       amountOrZero(in.Expenses),
			"expense_notes":  notes,
			"closed_by_id":   user.ID,
			"ended_at":       now,
			"active":         false,
		}

		// sqlite ignora FOR UPDATE; la condición sobre active evita un doble
		// cierre también allí
		res := tx.Model(&models.Shift{}).Where("id = ? AND active = ?", sh.ID, true).Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return apperr.Conflict("El turno ya está cerrado")
		}

		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &sh.StoreID,
			User:        user,
			EntityType:  EntityShift,
			EntityID:    sh.ID,
			Action:      models.AuditActionClose,
			Description: fmt.Sprintf("Turno cerrado: ventas %s, ganancia bruta %s", totals.Sales.StringFixed(2), totals.GrossProfit.StringFixed(2)),
			After: map[string]string{
				"total_ventas":      totals.Sales.StringFixed(2),
				"ganancia_bruta":    totals.GrossProfit.StringFixed(2),
				"salario_empleados": amountOrZero(in.EmployeeWages).StringFixed(2),
				"salario_admin":     amountOrZero(in.AdminWages).StringFixed(2),
				"gastos":            amountOrZero(in.Expenses).StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, id)
}

// ComputeTotals suma los totales de las ventas del turno y la ganancia de
// todas sus líneas, en aritmética decimal.
func ComputeTotals(db *gorm.DB, shiftID uint) (Totals, error) {
	var sales []models.Sale
	if err := db.Preload("Lines").Where("shift_id = ?", shiftID).Find(&sales).Error; err != nil {
		return Totals{}, err
	}

	t := Totals{Sales: decimal.Zero, GrossProfit: decimal.Zero}
	for _, s := range sales {
		t.Sales = t.Sales.Add(s.Total)
		for _, l := range s.Lines {
			t.GrossProfit = t.GrossProfit.Add(l.Profit())
		}
	}
	t.Sales = t.Sales.Round(2)
	t.GrossProfit = t.GrossProfit.Round(2)
	return t, nil
}

// List devuelve los turnos asignados a user más los de las PYMEs que
// gestiona, del más reciente al más antiguo.
func List(db *gorm.DB, user *models.User) ([]models.Shift, error) {
	assigned := db.Session(&gorm.Session{NewDB: true}).
		Table("shift_employees").Select("shift_id").Where("user_id = ?", user.ID)

	var shifts []models.Shift
	err := db.Preload("Store").
		Preload("OpenedBy").
		Preload("ClosedBy").
		Preload("Employees", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.id ASC")
		}).
		Where("id IN (?) OR store_id IN (?)", assigned, access.ManagedStoreIDs(db, user.ID)).
		Order("started_at DESC").Order("id DESC").
		Find(&shifts).Error
	return shifts, err
}

// CanView: gestores de la PYME y empleados asignados al turno.
func CanView(user *models.User, sh *models.Shift) bool {
	return access.CanManageStore(user, &sh.Store) || access.IsShiftEmployee(user, sh)
}

func Get(db *gorm.DB, user *models.User, id uint) (*models.Shift, error) {
	sh, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if !CanView(user, sh) {
		return nil, apperr.Forbidden("No tienes acceso a este turno")
	}
	return sh, nil
}

// GetManaged es Get restringido a propietario o administrador.
func GetManaged(db *gorm.DB, user *models.User, id uint) (*models.Shift, error) {
	sh, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageStore(user, &sh.Store) {
		return nil, apperr.Forbidden("No tienes permiso para ver el reporte de este turno")
	}
	return sh, nil
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Round(2)
}
