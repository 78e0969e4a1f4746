package dashboard

import (
	"time"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/pymes/:id/resumen/?desde=2026-01-01&hasta=2026-01-31
func StoreSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		storeID, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		r, err := ParseRange(c.Query("desde"), c.Query("hasta"), time.Now())
		if err != nil {
			return err
		}

		resp, err := StoreSummary(database.DB, user, storeID, r)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}
