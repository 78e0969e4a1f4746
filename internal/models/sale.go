package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentTransfer PaymentMethod = "transferencia"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTransfer
}

type Sale struct {
	ID      uint  `gorm:"primaryKey"`
	ShiftID uint  `gorm:"index;not null"`
	Shift   Shift `gorm:"constraint:OnDelete:CASCADE"`

	SellerID uint `gorm:"index;not null"`
	Seller   User `gorm:"constraint:OnDelete:CASCADE"`

	// copiado del turno
	StoreID uint  `gorm:"index;not null"`
	Store   Store `gorm:"constraint:OnDelete:CASCADE"`

	SoldAt        time.Time       `gorm:"index;not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null"`
	TransferCode  *string         `gorm:"size:100"`
	CustomerPhone *string         `gorm:"size:17"`

	Lines []SaleLine `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

// SaleLine guarda el precio y el costo del producto al momento de la venta.
type SaleLine struct {
	ID        uint    `gorm:"primaryKey"`
	SaleID    uint    `gorm:"index;not null"`
	ProductID uint    `gorm:"index;not null"`
	Product   Product `gorm:"constraint:OnDelete:RESTRICT"`

	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l SaleLine) Profit() decimal.Decimal {
	return l.UnitPrice.Sub(l.UnitCost).Mul(decimal.NewFromInt(int64(l.Quantity)))
}
