package models

import "time"

// User es la identidad que inicia sesión. IsSuperuser e IsStaff solo los
// recibe el primer usuario registrado (ver auth.Register).
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	IsSuperuser  bool   `gorm:"not null"`
	IsStaff      bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Bootstrap es una fila única (ID = 1) que marca que el sistema ya tiene su
// primer usuario. Insertarla con ON CONFLICT DO NOTHING decide quién es el
// primero aunque dos registros lleguen a la vez.
type Bootstrap struct {
	ID        uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"not null"`
	CreatedAt time.Time
}

const BootstrapID uint = 1
