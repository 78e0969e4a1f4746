package models

// All devuelve los modelos en orden de migración.
func All() []any {
	return []any{
		&User{},
		&Bootstrap{},
		&Store{},
		&Product{},
		&Shift{},
		&Sale{},
		&SaleLine{},
		&AuditLog{},
	}
}
