package shift

import (
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// POST /api/turnos/abrir/
func OpenShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body OpenInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		sh, err := Open(database.DB, user, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(NewShiftResponse(sh))
	}
}

// POST /api/turnos/:id/cerrar/
func CloseShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body CloseInput
		if len(c.Body()) > 0 {
			if err := httpx.ParseBody(c, &body); err != nil {
				return err
			}
		}

		sh, err := Close(database.DB, user, id, body)
		if err != nil {
			return err
		}
		return c.JSON(NewShiftResponse(sh))
	}
}

// GET /api/turnos/
func ListShiftsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		shifts, err := List(database.DB, user)
		if err != nil {
			return err
		}

		resp := make([]ShiftResponse, 0, len(shifts))
		for i := range shifts {
			resp = append(resp, NewShiftResponse(&shifts[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/turnos/:id/
func GetShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		sh, err := Get(database.DB, user, id)
		if err != nil {
			return err
		}
		return c.JSON(NewShiftResponse(sh))
	}
}
