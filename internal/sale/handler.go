package sale

import (
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// POST /api/ventas/registrar/
func RecordSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body RecordInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		sale, err := Record(database.DB, user, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(NewSaleResponse(sale))
	}
}

// GET /api/ventas/:id/
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		sale, err := Get(database.DB, user, id)
		if err != nil {
			return err
		}
		return c.JSON(NewSaleResponse(sale))
	}
}

// GET /api/turnos/:id/ventas/
func ListShiftSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		sales, err := ListForShift(database.DB, user, id)
		if err != nil {
			return err
		}

		resp := make([]SaleResponse, 0, len(sales))
		for i := range sales {
			resp = append(resp, NewSaleResponse(&sales[i]))
		}
		return c.JSON(resp)
	}
}
