package httpx

import (
	"errors"
	"log/slog"

	"pyme-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandler traduce los errores de los handlers a una sola respuesta
// JSON: apperr.Error con su código estable, fiber.Error con su estado y
// cualquier otro como 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		resp := ErrorResponse{Error: ae.Message, Code: string(ae.Kind)}
		if len(ae.Fields) > 0 {
			resp.Details = ae.Fields
		}
		return c.Status(ae.Status()).JSON(resp)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
	}

	slog.Error("error inesperado",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
		"err", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Error interno del servidor",
	})
}

// ParamID lee un parámetro de ruta numérico y positivo.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, "ID inválido")
	}
	return uint(id), nil
}

// ParseBody decodifica el JSON del cuerpo; un cuerpo malformado es 400.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("Cuerpo de la petición inválido", map[string]string{
			"non_field_errors": err.Error(),
		})
	}
	return nil
}

func ErrRequired(field string) error {
	return apperr.Invalid(field, "Este campo es requerido.")
}
