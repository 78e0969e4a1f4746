package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// POST /api/productos/
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateProductInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		product, err := Create(database.DB, user, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(NewProductResponse(product))
	}
}

// GET /api/productos/?tienda=1
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var storeID *uint
		if s := c.Query("tienda"); s != "" {
			var id uint
			if _, err := fmt.Sscan(s, &id); err != nil || id == 0 {
				return apperr.Invalid("tienda", "ID de tienda inválido")
			}
			storeID = &id
		}

		products, err := List(database.DB, user, storeID)
		if err != nil {
			return err
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, NewProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/productos/:id/
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		product, err := Get(database.DB, user, id)
		if err != nil {
			return err
		}
		return c.JSON(NewProductResponse(product))
	}
}

// PUT /api/productos/:id/
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateProductInput
		if err := httpx.ParseBody(c, &body); err != nil {
			return err
		}

		product, err := Update(database.DB, user, id, body)
		if err != nil {
			return err
		}
		return c.JSON(NewProductResponse(product))
	}
}

// DELETE /api/productos/:id/
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		if err := Delete(database.DB, user, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/productos/importar/  (multipart: tienda, archivo .xlsx)
func ImportProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		storeID, err := strconv.ParseUint(c.FormValue("tienda"), 10, 64)
		if err != nil || storeID == 0 {
			return apperr.Invalid("tienda", "Se requiere el ID de la tienda")
		}

		fileHeader, err := c.FormFile("archivo")
		if err != nil {
			return apperr.Invalid("archivo", "Este campo es requerido.")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.Invalid("archivo", "Solo se aceptan archivos .xlsx")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return err
		}
		defer file.Close()

		products, err := ImportProducts(database.DB, user, uint(storeID), file)
		if err != nil {
			return err
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, NewProductResponse(&products[i]))
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"creados":   len(resp),
			"productos": resp,
		})
	}
}
