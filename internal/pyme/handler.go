package pyme

import (
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

type AddEmployeeRequest struct {
	Usuario uint `json:"usuario"`
}

// POST /api/pymes/
func CreateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body StoreInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		store, err := Create(database.DB, user, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(NewStoreResponse(store))
	}
}

// GET /api/pymes/
func ListStoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		stores, err := List(database.DB, user)
		if err != nil {
			return err
		}

		resp := make([]StoreResponse, 0, len(stores))
		for i := range stores {
			resp = append(resp, NewStoreResponse(&stores[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/pymes/:id/
func GetStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		store, err := Get(database.DB, user, id)
		if err != nil {
			return err
		}
		return c.JSON(NewStoreResponse(store))
	}
}

// PUT /api/pymes/:id/
func UpdateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body StoreInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		store, err := Update(database.DB, user, id, body)
		if err != nil {
			return err
		}
		return c.JSON(NewStoreResponse(store))
	}
}

// POST /api/pymes/:id/empleados/
func AddEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body AddEmployeeRequest
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Usuario == 0 {
			return httpx.ErrRequired("usuario")
		}

		store, err := AddEmployee(database.DB, user, id, body.Usuario)
		if err != nil {
			return err
		}
		return c.JSON(NewStoreResponse(store))
	}
}

// DELETE /api/pymes/:id/empleados/:usuario/
func RemoveEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		employeeID, err := httpx.ParamID(c, "usuario")
		if err != nil {
			return err
		}

		store, err := RemoveEmployee(database.DB, user, id, employeeID)
		if err != nil {
			return err
		}
		return c.JSON(NewStoreResponse(store))
	}
}
