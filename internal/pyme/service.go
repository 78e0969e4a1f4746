// Package pyme administra el registro de tiendas: alta, consulta, edición y
// la membresía de empleados.
package pyme

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pyme-backend/internal/access"
	"pyme-backend/internal/apperr"
	"pyme-backend/internal/audit"
	"pyme-backend/internal/models"
	"pyme-backend/internal/validation"

	"gorm.io/gorm"
)

const EntityStore = "store"

type StoreInput struct {
	Name        string `json:"nombre" validate:"required,max=50"`
	Description string `json:"descripcion"`
	Address     string `json:"direccion" validate:"required,max=250"`
	AdminID     *uint  `json:"administrador"`
	EmployeeIDs []uint `json:"empleados"`
}

func (in *StoreInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").
		Preload("Admin").
		Preload("Employees", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.id ASC")
		})
}

// Load lee la PYME con propietario, administrador y empleados.
func Load(db *gorm.DB, id uint) (*models.Store, error) {
	var store models.Store
	if err := preloadMembers(db).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("PYME no encontrada")
		}
		return nil, err
	}
	return &store, nil
}

// LoadManaged es Load más la comprobación de propietario o administrador.
func LoadManaged(db *gorm.DB, user *models.User, id uint, deniedMsg string) (*models.Store, error) {
	store, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageStore(user, store) {
		return nil, apperr.Forbidden(deniedMsg)
	}
	return store, nil
}

func Create(db *gorm.DB, owner *models.User, in StoreInput) (*models.Store, error) {
	in.normalize()
	v := validation.Struct(in)

	admin, employees, err := resolveMembers(db, in, v)
	if err != nil {
		return nil, err
	}
	if err := v.Err(""); err != nil {
		return nil, err
	}

	store := models.Store{
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		OwnerID:     owner.ID,
		Employees:   employees,
	}
	if admin != nil {
		store.AdminID = &admin.ID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Employees.* evita reescribir los usuarios; solo se insertan las filas
		// de store_employees
		if err := tx.Omit("Owner", "Admin", "Employees.*").Create(&store).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        owner,
			EntityType:  EntityStore,
			EntityID:    store.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("PYME creada: %s", store.Name),
			After:       NewStoreResponse(&store),
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, store.ID)
}

// List devuelve las PYMEs donde user es propietario, administrador o
// empleado, ordenadas por nombre.
func List(db *gorm.DB, user *models.User) ([]models.Store, error) {
	var stores []models.Store
	err := preloadMembers(db).
		Where("id IN (?)", access.VisibleStoreIDs(db, user.ID)).
		Order("name ASC").Order("id ASC").
		Find(&stores).Error
	return stores, err
}

func Get(db *gorm.DB, user *models.User, id uint) (*models.Store, error) {
	store, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewStore(user, store) {
		return nil, apperr.Forbidden("No tienes acceso a esta PYME")
	}
	return store, nil
}

// Update reemplaza todos los datos editables; solo el propietario puede.
func Update(db *gorm.DB, user *models.User, id uint, in StoreInput) (*models.Store, error) {
	store, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if !access.IsStoreOwner(user, store) {
		return nil, apperr.Forbidden("Solo el propietario puede editar la PYME")
	}

	in.normalize()
	v := validation.Struct(in)
	admin, employees, err := resolveMembers(db, in, v)
	if err != nil {
		return nil, err
	}
	if err := v.Err(""); err != nil {
		return nil, err
	}

	before := NewStoreResponse(store)
	var adminID *uint
	if admin != nil {
		adminID = &admin.ID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// modelo sin asociaciones precargadas: con Admin cargado gorm volvería
		// a escribir el admin_id anterior
		target := &models.Store{ID: store.ID}
		if err := tx.Model(target).Updates(map[string]any{
			"name":        in.Name,
			"description": in.Description,
			"address":     in.Address,
			"admin_id":    adminID,
		}).Error; err != nil {
			return err
		}
		members := tx.Model(target).Association("Employees")
		if len(employees) == 0 {
			if err := members.Clear(); err != nil {
				return err
			}
		} else if err := members.Replace(employees); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityStore,
			EntityID:    store.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("PYME editada: %s", in.Name),
			Before:      before,
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, store.ID)
}

// AddEmployee incorpora a employeeID como empleado. Si ya lo es no hace nada.
func AddEmployee(db *gorm.DB, user *models.User, storeID, employeeID uint) (*models.Store, error) {
	store, err := LoadManaged(db, user, storeID, "No tienes permiso para gestionar empleados en esta PYME")
	if err != nil {
		return nil, err
	}

	var employee models.User
	if err := db.First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Usuario no encontrado")
		}
		return nil, err
	}
	if access.IsStoreEmployee(&employee, store) {
		return store, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(store).Association("Employees").Append(&employee); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityStore,
			EntityID:    store.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Empleado agregado: %s", employee.Username),
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, store.ID)
}

// RemoveEmployee revoca la membresía. Los turnos ya abiertos conservan su
// lista de empleados.
func RemoveEmployee(db *gorm.DB, user *models.User, storeID, employeeID uint) (*models.Store, error) {
	store, err := LoadManaged(db, user, storeID, "No tienes permiso para gestionar empleados en esta PYME")
	if err != nil {
		return nil, err
	}

	employee := models.User{ID: employeeID}
	if !access.IsStoreEmployee(&employee, store) {
		return nil, apperr.NotFound("El usuario no es empleado de esta PYME")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(store).Association("Employees").Delete(&employee); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			StoreID:     &store.ID,
			User:        user,
			EntityType:  EntityStore,
			EntityID:    store.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Empleado removido: %d", employeeID),
		})
	})
	if err != nil {
		return nil, err
	}
	return Load(db, store.ID)
}

// resolveMembers carga administrador y empleados pedidos y anota en v cada
// id que no corresponde a un usuario.
func resolveMembers(db *gorm.DB, in StoreInput, v validation.Violations) (*models.User, []models.User, error) {
	var admin *models.User
	if in.AdminID != nil {
		var u models.User
		err := db.First(&u, *in.AdminID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			v.Add("administrador", fmt.Sprintf("Clave primaria \"%d\" inválida - objeto no existe.", *in.AdminID))
		case err != nil:
			return nil, nil, err
		default:
			admin = &u
		}
	}

	ids := uniqueIDs(in.EmployeeIDs)
	if len(ids) == 0 {
		return admin, []models.User{}, nil
	}

	var employees []models.User
	if err := db.Where("id IN ?", ids).Order("id ASC").Find(&employees).Error; err != nil {
		return nil, nil, err
	}
	if len(employees) != len(ids) {
		found := make(map[uint]bool, len(employees))
		for _, e := range employees {
			found[e.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, fmt.Sprint(id))
			}
		}
		v.Add("empleados", fmt.Sprintf("Clave primaria inválida - objeto no existe: %s.", strings.Join(missing, ", ")))
	}
	return admin, employees, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
