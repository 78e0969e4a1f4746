package catalog

import (
	"testing"
	"time"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/database/dbtest"
	"pyme-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func uptr(v uint) *uint { return &v }

func strptr(s string) *string { return &s }

func TestCreateCheckOrder(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	emp := dbtest.CreateUser(t, db, "emp")
	store := dbtest.CreateStore(t, db, "Tienda", owner, nil, emp)

	if _, err := Create(db, owner, CreateProductInput{Name: "Pan"}); !apperr.IsValidation(err) {
		t.Fatalf("missing tienda: %v", err)
	}
	if _, err := Create(db, owner, CreateProductInput{StoreID: uptr(999)}); !apperr.IsNotFound(err) {
		t.Fatalf("unknown tienda: %v", err)
	}
	if _, err := Create(db, emp, CreateProductInput{StoreID: &store.ID}); !apperr.IsForbidden(err) {
		t.Fatalf("employee create: %v", err)
	}

	_, err := Create(db, owner, CreateProductInput{StoreID: &store.ID, PurchasePrice: dec("-1")})
	if !apperr.IsValidation(err) {
		t.Fatalf("invalid fields: %v", err)
	}
	fields := err.(*apperr.Error).Fields
	for _, f := range []string{"nombre", "precio_compra", "precio_venta"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing %q in %v", f, fields)
		}
	}
}

func TestCreateAndUniqueCode(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	store := dbtest.CreateStore(t, db, "Tienda", owner, nil)

	p, err := Create(db, owner, CreateProductInput{
		StoreID:       &store.ID,
		Name:          "Arroz",
		Code:          strptr("ARZ-1"),
		PurchasePrice: dec("6"),
		SalePrice:     dec("10.005"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := NewProductResponse(p); got.PrecioVenta != "10.01" || got.PrecioCompra != "6.00" || got.TiendaNombre != "Tienda" {
		t.Fatalf("response = %+v", got)
	}

	_, err = Create(db, owner, CreateProductInput{
		StoreID:       &store.ID,
		Name:          "Arroz 2",
		Code:          strptr("ARZ-1"),
		PurchasePrice: dec("1"),
		SalePrice:     dec("2"),
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("duplicate code accepted: %v", err)
	}

	// varios productos sin código conviven
	for _, name := range []string{"A", "B"} {
		if _, err := Create(db, owner, CreateProductInput{
			StoreID: &store.ID, Name: name, Code: strptr("  "),
			PurchasePrice: dec("1"), SalePrice: dec("2"),
		}); err != nil {
			t.Fatalf("create %s without code: %v", name, err)
		}
	}
}

func TestListScopedToVisibleStores(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	emp := dbtest.CreateUser(t, db, "emp")
	other := dbtest.CreateUser(t, db, "other")
	mine := dbtest.CreateStore(t, db, "Mia", owner, nil, emp)
	theirs := dbtest.CreateStore(t, db, "Ajena", other, nil)
	dbtest.CreateProduct(t, db, mine, "Leche", "1", "2")
	dbtest.CreateProduct(t, db, theirs, "Queso", "1", "2")

	products, err := List(db, emp, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Leche" || products[0].Store.Name != "Mia" {
		t.Fatalf("emp sees %+v", products)
	}

	products, err = List(db, owner, &theirs.ID)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("filter leaked foreign products: %+v", products)
	}
}

func TestUpdatePartialAndImmutableStore(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	admin := dbtest.CreateUser(t, db, "admin")
	emp := dbtest.CreateUser(t, db, "emp")
	store := dbtest.CreateStore(t, db, "Tienda", owner, admin, emp)
	other := dbtest.CreateStore(t, db, "Otra", owner, nil)
	p := dbtest.CreateProduct(t, db, store, "Pan", "1.00", "1.50")

	if _, err := Update(db, emp, p.ID, UpdateProductInput{SalePrice: dec("2")}); !apperr.IsForbidden(err) {
		t.Fatalf("employee update: %v", err)
	}
	if _, err := Update(db, admin, p.ID, UpdateProductInput{StoreID: &other.ID}); !apperr.IsValidation(err) {
		t.Fatalf("store move accepted: %v", err)
	}

	updated, err := Update(db, admin, p.ID, UpdateProductInput{SalePrice: dec("2.25")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Pan" || !updated.SalePrice.Equal(decimal.RequireFromString("2.25")) {
		t.Fatalf("updated = %+v", updated)
	}
	if !updated.PurchasePrice.Equal(decimal.RequireFromString("1")) {
		t.Fatalf("purchase price changed: %s", updated.PurchasePrice)
	}
}

func TestDeleteProtectedBySaleLines(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	emp := dbtest.CreateUser(t, db, "emp")
	store := dbtest.CreateStore(t, db, "Tienda", owner, nil, emp)
	sold := dbtest.CreateProduct(t, db, store, "Vendido", "6", "10")
	unsold := dbtest.CreateProduct(t, db, store, "Nuevo", "1", "2")
	insertSale(t, db, store, owner, emp, sold)

	if err := Delete(db, emp, unsold.ID); !apperr.IsForbidden(err) {
		t.Fatalf("employee delete: %v", err)
	}
	if err := Delete(db, owner, sold.ID); !apperr.IsConflict(err) {
		t.Fatalf("referenced delete: %v", err)
	}
	var n int64
	db.Model(&models.Product{}).Where("id = ?", sold.ID).Count(&n)
	if n != 1 {
		t.Fatalf("referenced product removed")
	}

	if err := Delete(db, owner, unsold.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := Delete(db, owner, unsold.ID); !apperr.IsNotFound(err) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestProductForeignKeyIsRestrict(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.CreateUser(t, db, "owner")
	emp := dbtest.CreateUser(t, db, "emp")
	store := dbtest.CreateStore(t, db, "Tienda", owner, nil, emp)
	p := dbtest.CreateProduct(t, db, store, "Vendido", "6", "10")
	insertSale(t, db, store, owner, emp, p)

	err := db.Delete(&models.Product{}, p.ID).Error
	if err == nil {
		t.Fatalf("raw delete of referenced product succeeded")
	}
}

func insertSale(t *testing.T, db *gorm.DB, store *models.Store, opener, seller *models.User, p *models.Product) {
	t.Helper()
	shift := models.Shift{StoreID: store.ID, OpenedByID: opener.ID, StartedAt: time.Now(), Active: true}
	if err := db.Omit("Store", "OpenedBy", "ClosedBy", "Employees").Create(&shift).Error; err != nil {
		t.Fatalf("shift: %v", err)
	}
	sale := models.Sale{
		ShiftID:       shift.ID,
		SellerID:      seller.ID,
		StoreID:       store.ID,
		SoldAt:        time.Now(),
		Total:         p.SalePrice,
		PaymentMethod: models.PaymentCash,
		Lines: []models.SaleLine{{
			ProductID: p.ID, Quantity: 1, UnitPrice: p.SalePrice, UnitCost: p.PurchasePrice,
		}},
	}
	if err := db.Omit("Shift", "Seller", "Store", "Lines.Product").Create(&sale).Error; err != nil {
		t.Fatalf("sale: %v", err)
	}
}
