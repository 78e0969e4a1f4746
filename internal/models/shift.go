package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift es un turno de trabajo. Pasa de activo a cerrado una sola vez; los
// campos financieros quedan en cero hasta el cierre.
type Shift struct {
	ID      uint  `gorm:"primaryKey"`
	StoreID uint  `gorm:"index;not null"`
	Store   Store `gorm:"constraint:OnDelete:CASCADE"`

	OpenedByID uint  `gorm:"index;not null"`
	OpenedBy   User  `gorm:"constraint:OnDelete:CASCADE"`
	ClosedByID *uint `gorm:"index"`
	ClosedBy   *User `gorm:"constraint:OnDelete:SET NULL"`

	// fijado al abrir
	Employees []User `gorm:"many2many:shift_employees"`

	StartedAt time.Time  `gorm:"index;not null"`
	EndedAt   *time.Time
	Active    bool `gorm:"index;not null"`

	TotalSales    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GrossProfit   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EmployeeWages decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AdminWages    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Expenses      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ExpenseNotes  string          `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NetProfit descuenta salarios y gastos de la ganancia bruta.
func (s Shift) NetProfit() decimal.Decimal {
	return s.GrossProfit.Sub(s.EmployeeWages).Sub(s.AdminWages).Sub(s.Expenses)
}
