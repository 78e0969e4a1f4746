// Package access contiene los predicados de autorización sobre (usuario,
// PYME). Se evalúan en cada petición con datos recién leídos; nada se cachea.
package access

import (
	"pyme-backend/internal/models"

	"gorm.io/gorm"
)

func IsStoreOwner(u *models.User, s *models.Store) bool {
	return u != nil && s != nil && s.OwnerID == u.ID
}

func IsStoreAdmin(u *models.User, s *models.Store) bool {
	return u != nil && s != nil && s.AdminID != nil && *s.AdminID == u.ID
}

// IsStoreEmployee requiere s.Employees precargado.
func IsStoreEmployee(u *models.User, s *models.Store) bool {
	if u == nil || s == nil {
		return false
	}
	for _, e := range s.Employees {
		if e.ID == u.ID {
			return true
		}
	}
	return false
}

// CanManageStore habilita escribir en el catálogo y abrir o cerrar turnos.
func CanManageStore(u *models.User, s *models.Store) bool {
	return IsStoreOwner(u, s) || IsStoreAdmin(u, s)
}

func CanViewStore(u *models.User, s *models.Store) bool {
	return CanManageStore(u, s) || IsStoreEmployee(u, s)
}

// CanListAllUsers: superusuarios y cualquier propietario de una PYME ven
// el directorio completo de usuarios.
func CanListAllUsers(u *models.User, ownsStore bool) bool {
	return u != nil && (u.IsSuperuser || ownsStore)
}

// IsShiftEmployee requiere sh.Employees precargado.
func IsShiftEmployee(u *models.User, sh *models.Shift) bool {
	if u == nil || sh == nil {
		return false
	}
	for _, e := range sh.Employees {
		if e.ID == u.ID {
			return true
		}
	}
	return false
}

// OwnsAnyStore consulta si userID es propietario de al menos una PYME.
func OwnsAnyStore(db *gorm.DB, userID uint) (bool, error) {
	var n int64
	err := db.Model(&models.Store{}).Where("owner_id = ?", userID).Limit(1).Count(&n).Error
	return n > 0, err
}

// VisibleStoreIDs es una subconsulta con los ids de las PYMEs donde userID
// es propietario, administrador o empleado.
func VisibleStoreIDs(db *gorm.DB, userID uint) *gorm.DB {
	base := db.Session(&gorm.Session{NewDB: true})
	employeeOf := base.Table("store_employees").Select("store_id").Where("user_id = ?", userID)
	return base.Model(&models.Store{}).
		Select("id").
		Where("owner_id = ? OR admin_id = ? OR id IN (?)", userID, userID, employeeOf)
}

// ManagedStoreIDs es la subconsulta de PYMEs donde userID es propietario o
// administrador.
func ManagedStoreIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Store{}).
		Select("id").
		Where("owner_id = ? OR admin_id = ?", userID, userID)
}
