package dbtest

import (
	"testing"

	"pyme-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateUser inserta un usuario sin contraseña utilizable.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &u
}

// CreateStore inserta una PYME con su propietario, administrador opcional y
// empleados.
func CreateStore(t testing.TB, db *gorm.DB, name string, owner, admin *models.User, employees ...*models.User) *models.Store {
	t.Helper()
	s := models.Store{
		Name:    name,
		Address: "Calle 1",
		OwnerID: owner.ID,
	}
	if admin != nil {
		s.AdminID = &admin.ID
	}
	for _, e := range employees {
		s.Employees = append(s.Employees, *e)
	}
	if err := db.Omit("Owner", "Admin", "Employees.*").Create(&s).Error; err != nil {
		t.Fatalf("create store %s: %v", name, err)
	}
	return &s
}

func CreateProduct(t testing.TB, db *gorm.DB, store *models.Store, name, purchase, sale string) *models.Product {
	t.Helper()
	p := models.Product{
		Name:          name,
		StoreID:       store.ID,
		PurchasePrice: decimal.RequireFromString(purchase),
		SalePrice:     decimal.RequireFromString(sale),
	}
	if err := db.Omit("Store").Create(&p).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return &p
}
