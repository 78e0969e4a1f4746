package catalog

import "pyme-backend/internal/models"

type ProductResponse struct {
	ID           uint    `json:"id"`
	Nombre       string  `json:"nombre"`
	Codigo       *string `json:"codigo"`
	Tienda       uint    `json:"tienda"`
	TiendaNombre string  `json:"tienda_nombre"`
	PrecioCompra string  `json:"precio_compra"`
	PrecioVenta  string  `json:"precio_venta"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Nombre:       p.Name,
		Codigo:       p.Code,
		Tienda:       p.StoreID,
		TiendaNombre: p.Store.Name,
		PrecioCompra: p.PurchasePrice.StringFixed(2),
		PrecioVenta:  p.SalePrice.StringFixed(2),
	}
}
