package report

import (
	"fmt"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/sale"
	"pyme-backend/internal/shift"

	"github.com/gofiber/fiber/v2"
)

// GET /api/turnos/:id/reporte/
// Descarga .xlsx; solo propietario o administrador.
func ShiftReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		sh, err := shift.GetManaged(database.DB, user, id)
		if err != nil {
			return err
		}
		sales, err := sale.SalesOfShift(database.DB, sh.ID)
		if err != nil {
			return err
		}

		wb, err := ShiftWorkbook(sh, sales)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}
		defer wb.Close()

		buf, err := wb.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el reporte")
		}

		c.Set(fiber.HeaderContentType, ContentTypeXLSX)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="turno-%d.xlsx"`, sh.ID))
		return c.Send(buf.Bytes())
	}
}
