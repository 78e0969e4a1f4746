package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID      uint    `gorm:"primaryKey"`
	Name    string  `gorm:"size:50;not null"`
	Code    *string `gorm:"size:100;uniqueIndex"` // opcional, único cuando existe
	StoreID uint    `gorm:"index;not null"`       // no cambia después de crear
	Store   Store   `gorm:"constraint:OnDelete:CASCADE"`

	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
