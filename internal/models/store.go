package models

import "time"

// Store es una PYME: un propietario obligatorio, un administrador opcional
// y un conjunto revocable de empleados.
type Store struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null"`
	Description string `gorm:"type:text"`
	Address     string `gorm:"size:250;not null"`

	OwnerID uint `gorm:"index;not null"`
	Owner   User `gorm:"constraint:OnDelete:CASCADE"`

	AdminID *uint `gorm:"index"`
	Admin   *User `gorm:"constraint:OnDelete:SET NULL"`

	Employees []User `gorm:"many2many:store_employees"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
