package audit

import (
	"encoding/json"
	"fmt"

	"pyme-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	StoreID     *uint
	User        *models.User
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog guarda un registro de auditoría con db, que puede ser la
// transacción de la operación auditada.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		StoreID:     opts.StoreID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  marshal(opts.Before),
		AfterData:   marshal(opts.After),
	}
	if opts.User != nil {
		entry.UserID = opts.User.ID
		entry.UserName = opts.User.Username
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("no se pudo guardar la auditoría: %w", err)
	}
	return nil
}

func marshal(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
