package sale

import "pyme-backend/internal/models"

type SaleLineResponse struct {
	ID             uint   `json:"id"`
	Producto       uint   `json:"producto"`
	ProductoNombre string `json:"producto_nombre"`
	Cantidad       int    `json:"cantidad"`
	PrecioUnitario string `json:"precio_unitario"`
	CostoUnitario  string `json:"costo_unitario"`
	Subtotal       string `json:"subtotal"`
	Ganancia       string `json:"ganancia"`
}

type SaleResponse struct {
	ID                  uint               `json:"id"`
	Turno               uint               `json:"turno"`
	Vendedor            uint               `json:"vendedor"`
	VendedorNombre      string             `json:"vendedor_nombre"`
	Pyme                uint               `json:"pyme"`
	PymeNombre          string             `json:"pyme_nombre"`
	Fecha               string             `json:"fecha"`
	Total               string             `json:"total"`
	MetodoPago          string             `json:"metodo_pago"`
	CodigoTransferencia *string            `json:"codigo_transferencia"`
	TelefonoCliente     *string            `json:"telefono_cliente"`
	Detalles            []SaleLineResponse `json:"detalles"`
}

func NewSaleResponse(s *models.Sale) SaleResponse {
	resp := SaleResponse{
		ID:                  s.ID,
		Turno:               s.ShiftID,
		Vendedor:            s.SellerID,
		VendedorNombre:      s.Seller.Username,
		Pyme:                s.StoreID,
		PymeNombre:          s.Store.Name,
		Fecha:               s.SoldAt.Format("2006-01-02 15:04:05"),
		Total:               s.Total.StringFixed(2),
		MetodoPago:          string(s.PaymentMethod),
		CodigoTransferencia: s.TransferCode,
		TelefonoCliente:     s.CustomerPhone,
		Detalles:            make([]SaleLineResponse, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		resp.Detalles = append(resp.Detalles, SaleLineResponse{
			ID:             l.ID,
			Producto:       l.ProductID,
			ProductoNombre: l.Product.Name,
			Cantidad:       l.Quantity,
			PrecioUnitario: l.UnitPrice.StringFixed(2),
			CostoUnitario:  l.UnitCost.StringFixed(2),
			Subtotal:       l.Subtotal().StringFixed(2),
			Ganancia:       l.Profit().StringFixed(2),
		})
	}
	return resp
}
