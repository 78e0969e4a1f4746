package pyme

import "pyme-backend/internal/models"

type StoreResponse struct {
	ID                  uint     `json:"id"`
	Nombre              string   `json:"nombre"`
	Descripcion         string   `json:"descripcion"`
	Direccion           string   `json:"direccion"`
	Propietario         uint     `json:"propietario"`
	PropietarioNombre   string   `json:"propietario_nombre"`
	Administrador       *uint    `json:"administrador"`
	AdministradorNombre *string  `json:"administrador_nombre"`
	Empleados           []uint   `json:"empleados"`
	EmpleadosNombres    []string `json:"empleados_nombres"`
	CreadoEn            string   `json:"creado_en"`
}

// NewStoreResponse espera Owner, Admin y Employees precargados; los nombres
// se resuelven al leer, no se guardan en la tabla.
func NewStoreResponse(s *models.Store) StoreResponse {
	resp := StoreResponse{
		ID:                s.ID,
		Nombre:            s.Name,
		Descripcion:       s.Description,
		Direccion:         s.Address,
		Propietario:       s.OwnerID,
		PropietarioNombre: s.Owner.Username,
		Administrador:     s.AdminID,
		Empleados:         make([]uint, 0, len(s.Employees)),
		EmpleadosNombres:  make([]string, 0, len(s.Employees)),
		CreadoEn:          s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if s.Admin != nil {
		name := s.Admin.Username
		resp.AdministradorNombre = &name
	}
	for _, e := range s.Employees {
		resp.Empleados = append(resp.Empleados, e.ID)
		resp.EmpleadosNombres = append(resp.EmpleadosNombres, e.Username)
	}
	return resp
}
