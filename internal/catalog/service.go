// Package catalog gestiona los productos de cada PYME.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"pyme-backend/internal/access"
	"pyme-backend/internal/apperr"
	"pyme-backend/internal/audit"
	"pyme-backend/internal/database"
	"pyme-backend/internal/models"
	"pyme-backend/internal/pyme"
	"pyme-backend/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const EntityProduct = "product"

// precios en decimal(10,2)
const priceIntDigits = 8

type CreateProductInput struct {
	StoreID       *uint            `json:"tienda"`
	Name          string           `json:"nombre" validate:"required,max=50"`
	Code          *string          `json:"codigo" validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"precio_compra"`
	SalePrice     *decimal.Decimal `json:"precio_venta"`
}

// UpdateProductInput es parcial: los campos ausentes no cambian. Un codigo
// vacío lo elimina.
type UpdateProductInput struct {
	StoreID       *uint            `json:"tienda"`
	Name          *string          `json:"nombre" validate:"omitempty,max=50"`
	Code          *string          `json:"codigo" validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"precio_compra"`
	SalePrice     *decimal.Decimal `json:"precio_venta"`
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func loadStore(db *gorm.DB, id uint) (*models.Store, error) {
	store, err := pyme.Load(db, id)
	if apperr.IsNotFound(err) {
		return nil, apperr.NotFound("Tienda no encontrada")
	}
	return store, err
}

// Create exige tienda (400), que exista (404) y que user la gestione (403)
// antes de validar el resto de campos.
func Create(db *gorm.DB, user *models.User, in CreateProductInput) (*models.Product, error) {
	if in.StoreID == nil || *in.StoreID == 0 {
		return nil, apperr.Invalid("tienda", "Se requiere el ID de la tienda")
	}
	store, err := loadStore(db, *in.StoreID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageStore(user, store) {
		return nil, apperr.Forbidden("No tienes permiso para agregar productos a esta tienda")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Code = normalizeCode(in.Code)

	v := validation.Struct(in)
	validatePrices(v, in.PurchasePrice, in.SalePrice, true)
	if err := checkCodeFree(db, v, in.Code, 0); err != nil {
		return nil, err
	}
	if err := v.Err(""); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:          in.Name,
		Code:          in.Code,
		StoreID:       store.ID,
		PurchasePrice: in.PurchasePrice.Round(2),
		SalePrice:     in.SalePrice.Round(2),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Store").Create(&product).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Invalid("codigo", "Ya existe un producto con este código.")
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityProduct,
			EntityID:    product.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Producto creado: %s", product.Name),
			After:       NewProductResponse(&product),
		})
	})
	if err != nil {
		return nil, err
	}
	product.Store = *store
	return &product, nil
}

// List devuelve los productos de las PYMEs visibles para user, opcionalmente
// filtrados por una tienda.
func List(db *gorm.DB, user *models.User, storeID *uint) ([]models.Product, error) {
	q := db.Preload("Store").
		Where("store_id IN (?)", access.VisibleStoreIDs(db, user.ID))
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}

	var products []models.Product
	err := q.Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

func load(db *gorm.DB, id uint) (*models.Product, *models.Store, error) {
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("Producto no encontrado")
		}
		return nil, nil, err
	}
	store, err := pyme.Load(db, product.StoreID)
	if err != nil {
		return nil, nil, err
	}
	product.Store = *store
	return &product, store, nil
}

func Get(db *gorm.DB, user *models.User, id uint) (*models.Product, error) {
	product, store, err := load(db, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewStore(user, store) {
		return nil, apperr.Forbidden("No tienes acceso a este producto")
	}
	return product, nil
}

func Update(db *gorm.DB, user *models.User, id uint, in UpdateProductInput) (*models.Product, error) {
	product, store, err := load(db, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageStore(user, store) {
		return nil, apperr.Forbidden("Solo el propietario o administrador puede editar productos")
	}

	v := validation.Struct(in)
	if in.StoreID != nil && *in.StoreID != product.StoreID {
		v.Add("tienda", "La tienda de un producto no se puede cambiar.")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
		validation.Required(v, "nombre", name)
	}
	validatePrices(v, in.PurchasePrice, in.SalePrice, false)

	var code *string
	if in.Code != nil {
		code = normalizeCode(in.Code)
		if err := checkCodeFree(db, v, code, product.ID); err != nil {
			return nil, err
		}
	}
	if err := v.Err(""); err != nil {
		return nil, err
	}

	before := NewProductResponse(product)
	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = *in.Name
	}
	if in.Code != nil {
		changes["code"] = code
	}
	if in.PurchasePrice != nil {
		changes["purchase_price"] = in.PurchasePrice.Round(2)
	}
	if in.SalePrice != nil {
		changes["sale_price"] = in.SalePrice.Round(2)
	}
	if len(changes) == 0 {
		return product, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{ID: product.ID}).Updates(changes).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Invalid("codigo", "Ya existe un producto con este código.")
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityProduct,
			EntityID:    product.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Producto editado: %s", product.Name),
			Before:      before,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, _, err := load(db, product.ID)
	return updated, err
}

// Delete falla con Conflict mientras alguna línea de venta referencie el
// producto.
func Delete(db *gorm.DB, user *models.User, id uint) error {
	product, store, err := load(db, id)
	if err != nil {
		return err
	}
	if !access.CanManageStore(user, store) {
		return apperr.Forbidden("Solo el propietario o administrador puede eliminar productos")
	}

	conflict := apperr.Conflict("No se puede eliminar el producto porque tiene ventas registradas")

	return db.Transaction(func(tx *gorm.DB) error {
		var lines int64
		if err := tx.Model(&models.SaleLine{}).Where("product_id = ?", product.ID).Count(&lines).Error; err != nil {
			return err
		}
		if lines > 0 {
			return conflict
		}
		if err := tx.Delete(&models.Product{}, product.ID).Error; err != nil {
			if database.IsForeignKeyViolation(err) {
				return conflict
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityProduct,
			EntityID:    product.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Producto eliminado: %s", product.Name),
			Before:      NewProductResponse(product),
		})
	})
}

func validatePrices(v validation.Violations, purchase, sale *decimal.Decimal, required bool) {
	for field, price := range map[string]*decimal.Decimal{
		"precio_compra": purchase,
		"precio_venta":  sale,
	} {
		if price == nil && !required {
			continue
		}
		validation.NonNegative(v, field, price)
		validation.MaxDigits(v, field, price, priceIntDigits)
	}
}

func checkCodeFree(db *gorm.DB, v validation.Violations, code *string, exceptID uint) error {
	if code == nil {
		return nil
	}
	var n int64
	q := db.Model(&models.Product{}).Where("code = ?", *code)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		v.Add("codigo", "Ya existe un producto con este código.")
	}
	return nil
}
