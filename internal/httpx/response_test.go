package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"pyme-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/apperr", func(c *fiber.Ctx) error {
		return apperr.Validation("Faltan datos requeridos", map[string]string{
			"turno":       "Este campo es requerido.",
			"metodo_pago": "Este campo es requerido.",
		})
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "Token inválido o expirado")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})
	return app
}

func do(t *testing.T, app *fiber.App, path string) (int, ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()
	var body ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestErrorHandlerAppErr(t *testing.T) {
	status, body := do(t, newApp(), "/apperr")
	if status != 400 {
		t.Fatalf("status = %d", status)
	}
	if body.Code != "validation" {
		t.Fatalf("code = %q", body.Code)
	}
	details, ok := body.Details.(map[string]any)
	if !ok || len(details) != 2 {
		t.Fatalf("details = %#v", body.Details)
	}
}

func TestErrorHandlerFiberAndPlain(t *testing.T) {
	app := newApp()
	if status, body := do(t, app, "/fiber"); status != 401 || body.Error == "" {
		t.Fatalf("fiber error: %d %+v", status, body)
	}
	if status, body := do(t, app, "/plain"); status != 500 || body.Error != "Error interno del servidor" {
		t.Fatalf("plain error: %d %+v", status, body)
	}
}

func TestParamID(t *testing.T) {
	app := newApp()
	if status, _ := do(t, app, "/items/abc"); status != 400 {
		t.Fatalf("non numeric id: status %d", status)
	}
	if status, _ := do(t, app, "/items/0"); status != 400 {
		t.Fatalf("zero id: status %d", status)
	}
	if status, _ := do(t, app, "/items/7"); status != 200 {
		t.Fatalf("valid id: status %d", status)
	}
}
