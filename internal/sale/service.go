// Package sale registra ventas sobre un turno abierto. La venta y todas sus
// líneas se escriben en una sola transacción.
package sale

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pyme-backend/internal/access"
	"pyme-backend/internal/apperr"
	"pyme-backend/internal/audit"
	"pyme-backend/internal/models"
	"pyme-backend/internal/shift"
	"pyme-backend/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const EntitySale = "sale"

type LineInput struct {
	ProductID uint `json:"producto" validate:"required"`
	Quantity  int  `json:"cantidad" validate:"required,gt=0,max=100000"`
}

type RecordInput struct {
	ShiftID       uint        `json:"turno" validate:"required"`
	Lines         []LineInput `json:"productos" validate:"required,min=1,dive"`
	PaymentMethod string      `json:"metodo_pago" validate:"required,oneof=efectivo transferencia"`
	TransferCode  *string     `json:"codigo_transferencia" validate:"omitempty,max=100"`
	CustomerPhone *string     `json:"telefono_cliente" validate:"omitempty,max=17"`
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Record valida la petición, toma el turno en modo compartido y crea la
// venta con sus líneas. Cualquier producto ajeno a la PYME del turno anula
// la venta completa.
func Record(db *gorm.DB, seller *models.User, in RecordInput) (*models.Sale, error) {
	if v := validation.Struct(in); !v.Empty() {
		msg := validation.MsgInvalid
		for _, f := range []string{"turno", "productos", "metodo_pago"} {
			if v[f] == validation.MsgRequired {
				msg = "Faltan datos requeridos"
			}
		}
		return nil, v.Err(msg)
	}
	method := models.PaymentMethod(in.PaymentMethod)

	var sale models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		var sh models.Shift
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ? AND active = ?", in.ShiftID, true).
			First(&sh).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Turno no encontrado o inactivo")
			}
			return err
		}

		var assigned int64
		if err := tx.Table("shift_employees").
			Where("shift_id = ? AND user_id = ?", sh.ID, seller.ID).
			Count(&assigned).Error; err != nil {
			return err
		}
		if assigned == 0 {
			return apperr.Forbidden("No estás asignado a este turno")
		}

		var transferCode, phone *string
		if method == models.PaymentTransfer {
			code, tel := trimmed(in.TransferCode), trimmed(in.CustomerPhone)
			v := validation.Violations{}
			validation.Required(v, "codigo_transferencia", code)
			validation.Required(v, "telefono_cliente", tel)
			if err := v.Err("Se requiere código de transferencia y teléfono del cliente"); err != nil {
				return err
			}
			transferCode, phone = &code, &tel
		}

		lines, err := buildLines(tx, sh.StoreID, in.Lines)
		if err != nil {
			return err
		}

		total, profit := decimal.Zero, decimal.Zero
		for _, l := range lines {
			total = total.Add(l.Subtotal())
			profit = profit.Add(l.Profit())
		}
		total = total.Round(2)
		if err := checkShiftCapacity(tx, sh.ID, total, profit); err != nil {
			return err
		}

		sale = models.Sale{
			ShiftID:       sh.ID,
			SellerID:      seller.ID,
			StoreID:       sh.StoreID,
			SoldAt:        time.Now(),
			Total:         total,
			PaymentMethod: method,
			TransferCode:  transferCode,
			CustomerPhone: phone,
			Lines:         lines,
		}
		if err := tx.Omit("Shift", "Seller", "Store").Create(&sale).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &sh.StoreID,
			User:        seller,
			EntityType:  EntitySale,
			EntityID:    sale.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Venta %s por %s (%d líneas)", method, sale.Total.StringFixed(2), len(lines)),
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, sale.ID)
}

// checkShiftCapacity rechaza la venta si su total, o los acumulados del turno
// con ella, no caben en decimal(12,2).
func checkShiftCapacity(tx *gorm.DB, shiftID uint, total, profit decimal.Decimal) error {
	const msg = "El total excede el máximo permitido"

	v := validation.Violations{}
	validation.MaxDigits(v, "productos", &total, shift.TotalIntDigits)
	if err := v.Err(msg); err != nil {
		return err
	}

	running, err := shift.ComputeTotals(tx, shiftID)
	if err != nil {
		return err
	}
	running.Sales = running.Sales.Add(total)
	running.GrossProfit = running.GrossProfit.Add(profit)
	running.Validate(v)
	if !v.Empty() {
		return apperr.Validation(msg, map[string]string{
			"productos": "La venta haría superar el total máximo del turno.",
		})
	}
	return nil
}

// buildLines resuelve los productos dentro de la PYME y copia sus precios
// actuales. Informa todos los productos que no pertenecen a la tienda.
func buildLines(tx *gorm.DB, storeID uint, in []LineInput) ([]models.SaleLine, error) {
	ids := make([]uint, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.ProductID)
	}

	var products []models.Product
	if err := tx.Where("id IN ? AND store_id = ?", ids, storeID).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	v := validation.Violations{}
	var firstMissing uint
	lines := make([]models.SaleLine, 0, len(in))
	for i, l := range in {
		p, ok := byID[l.ProductID]
		if !ok {
			if firstMissing == 0 {
				firstMissing = l.ProductID
			}
			v.Add(fmt.Sprintf("productos[%d].producto", i), fmt.Sprintf("Producto %d no encontrado en esta tienda", l.ProductID))
			continue
		}
		lines = append(lines, models.SaleLine{
			ProductID: p.ID,
			Quantity:  l.Quantity,
			UnitPrice: p.SalePrice,
			UnitCost:  p.PurchasePrice,
		})
	}
	if err := v.Err(fmt.Sprintf("Producto %d no encontrado en esta tienda", firstMissing)); err != nil {
		return nil, err
	}
	return lines, nil
}

func Load(db *gorm.DB, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := preloadSale(db).First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Venta no encontrada")
		}
		return nil, err
	}
	return &sale, nil
}

func preloadSale(db *gorm.DB) *gorm.DB {
	return db.Preload("Seller").
		Preload("Store").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_lines.id ASC")
		}).
		Preload("Lines.Product")
}

// Get: el vendedor y los gestores de la PYME pueden ver la venta.
func Get(db *gorm.DB, user *models.User, id uint) (*models.Sale, error) {
	sale, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if sale.SellerID != user.ID && !access.CanManageStore(user, &sale.Store) {
		return nil, apperr.Forbidden("No tienes acceso a esta venta")
	}
	return sale, nil
}

// ListForShift devuelve las ventas de un turno visible para user.
func ListForShift(db *gorm.DB, user *models.User, shiftID uint) ([]models.Sale, error) {
	if _, err := shift.Get(db, user, shiftID); err != nil {
		return nil, err
	}
	return SalesOfShift(db, shiftID)
}

// SalesOfShift lee las ventas sin comprobar permisos; el llamador ya validó
// el acceso al turno.
func SalesOfShift(db *gorm.DB, shiftID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := preloadSale(db).
		Where("shift_id = ?", shiftID).
		Order("sold_at ASC").Order("id ASC").
		Find(&sales).Error
	return sales, err
}
