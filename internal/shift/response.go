package shift

import "pyme-backend/internal/models"

const timeLayout = "2006-01-02 15:04:05"

type ShiftResponse struct {
	ID               uint     `json:"id"`
	Pyme             uint     `json:"pyme"`
	PymeNombre       string   `json:"pyme_nombre"`
	AbiertoPor       uint     `json:"abierto_por"`
	AbiertoPorNombre string   `json:"abierto_por_nombre"`
	CerradoPor       *uint    `json:"cerrado_por"`
	CerradoPorNombre *string  `json:"cerrado_por_nombre"`
	Empleados        []uint   `json:"empleados"`
	EmpleadosNombres []string `json:"empleados_nombres"`
	Inicio           string   `json:"inicio"`
	Fin              *string  `json:"fin"`
	Activo           bool     `json:"activo"`

	TotalVentas      string `json:"total_ventas"`
	GananciaBruta    string `json:"ganancia_bruta"`
	SalarioEmpleados string `json:"salario_empleados"`
	SalarioAdmin     string `json:"salario_admin"`
	Gastos           string `json:"gastos"`
	NotasGastos      string `json:"notas_gastos"`
	GananciaNeta     string `json:"ganancia_neta"`
}

func NewShiftResponse(sh *models.Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:               sh.ID,
		Pyme:             sh.StoreID,
		PymeNombre:       sh.Store.Name,
		AbiertoPor:       sh.OpenedByID,
		AbiertoPorNombre: sh.OpenedBy.Username,
		CerradoPor:       sh.ClosedByID,
		Empleados:        make([]uint, 0, len(sh.Employees)),
		EmpleadosNombres: make([]string, 0, len(sh.Employees)),
		Inicio:           sh.StartedAt.Format(timeLayout),
		Activo:           sh.Active,
		TotalVentas:      sh.TotalSales.StringFixed(2),
		GananciaBruta:    sh.GrossProfit.StringFixed(2),
		SalarioEmpleados: sh.EmployeeWages.StringFixed(2),
		SalarioAdmin:     sh.AdminWages.StringFixed(2),
		Gastos:           sh.Expenses.StringFixed(2),
		NotasGastos:      sh.ExpenseNotes,
		GananciaNeta:     sh.NetProfit().StringFixed(2),
	}
	if sh.ClosedBy != nil {
		name := sh.ClosedBy.Username
		resp.CerradoPorNombre = &name
	}
	if sh.EndedAt != nil {
		fin := sh.EndedAt.Format(timeLayout)
		resp.Fin = &fin
	}
	for _, e := range sh.Employees {
		resp.Empleados = append(resp.Empleados, e.ID)
		resp.EmpleadosNombres = append(resp.EmpleadosNombres, e.Username)
	}
	return resp
}
