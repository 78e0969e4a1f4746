package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"pyme-backend/internal/access"
	"pyme-backend/internal/apperr"
	"pyme-backend/internal/audit"
	"pyme-backend/internal/database"
	"pyme-backend/internal/models"
	"pyme-backend/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Columnas esperadas en la primera hoja: nombre, codigo, precio_compra,
// precio_venta. Una primera fila de títulos se detecta y se salta.
const (
	colName = iota
	colCode
	colPurchase
	colSale
)

type importRow struct {
	line  int // número de fila en la hoja, desde 1
	input CreateProductInput
}

// ImportProducts crea en la PYME todos los productos de la planilla, o
// ninguno: cualquier fila inválida anula la importación y el error lista
// cada fila con sus problemas.
func ImportProducts(db *gorm.DB, user *models.User, storeID uint, r io.Reader) ([]models.Product, error) {
	store, err := loadStore(db, storeID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageStore(user, store) {
		return nil, apperr.Forbidden("No tienes permiso para agregar productos a esta tienda")
	}

	rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.Invalid("archivo", "La planilla no tiene productos")
	}

	problems := validation.Violations{}
	seenCodes := make(map[string]int)
	for _, row := range rows {
		v := validation.Struct(row.input)
		validatePrices(v, row.input.PurchasePrice, row.input.SalePrice, true)
		if code := row.input.Code; code != nil {
			if prev, dup := seenCodes[*code]; dup {
				v.Add("codigo", fmt.Sprintf("Código repetido en la fila %d.", prev))
			} else {
				seenCodes[*code] = row.line
			}
			if err := checkCodeFree(db, v, code, 0); err != nil {
				return nil, err
			}
		}
		if !v.Empty() {
			problems.Add(fmt.Sprintf("fila %d", row.line), joinViolations(v))
		}
	}
	if err := problems.Err("La planilla tiene filas inválidas"); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, models.Product{
			Name:          row.input.Name,
			Code:          row.input.Code,
			StoreID:       store.ID,
			PurchasePrice: row.input.PurchasePrice.Round(2),
			SalePrice:     row.input.SalePrice.Round(2),
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Store").CreateInBatches(&products, 100).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Invalid("codigo", "Ya existe un producto con este código.")
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityProduct,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Importación de planilla: %d productos", len(products)),
		})
	})
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Store = *store
	}
	return products, nil
}

func readSheet(r io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Invalid("archivo", "No se pudo leer la planilla")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Invalid("archivo", "La planilla no tiene hojas")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Invalid("archivo", "No se pudo leer la planilla")
	}

	start := 0
	if len(raw) > 0 && isHeader(raw[0]) {
		start = 1
	}

	var rows []importRow
	for i := start; i < len(raw); i++ {
		cells := raw[i]
		if blank(cells) {
			continue
		}
		row := importRow{line: i + 1}
		row.input.Name = strings.TrimSpace(cell(cells, colName))
		code := cell(cells, colCode)
		row.input.Code = normalizeCode(&code)
		row.input.PurchasePrice = parseAmount(cell(cells, colPurchase))
		row.input.SalePrice = parseAmount(cell(cells, colSale))
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeader(cells []string) bool {
	first := strings.ToLower(strings.TrimSpace(cell(cells, colName)))
	return first == "nombre" || strings.Contains(first, "producto")
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseAmount acepta "12.50" y "12,50". Un valor ilegible cuenta como
// ausente y la validación lo reporta como requerido.
func parseAmount(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func joinViolations(v validation.Violations) string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return strings.Join(parts, " ")
}
