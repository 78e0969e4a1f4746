// Package server arma la aplicación fiber con todas las rutas.
package server

import (
	"strings"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/catalog"
	"pyme-backend/internal/config"
	"pyme-backend/internal/dashboard"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/pyme"
	"pyme-backend/internal/report"
	"pyme-backend/internal/sale"
	"pyme-backend/internal/shift"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func NewApp(cfg *config.Config, revoker auth.Revoker) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "pyme-backend",
		ErrorHandler: httpx.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // planillas de importación
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}\n",
	}))

	// CORS_ALLOWED_ORIGINS viene separado por comas
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	limit, err := auth.RateLimit(cfg.AuthRateLimit)
	if err != nil {
		return nil, err
	}
	api.Post("/auth/register", limit, auth.RegisterHandler())
	api.Post("/auth/login", limit, auth.LoginHandler(cfg))
	api.Post("/auth/refresh", limit, auth.RefreshHandler(cfg, revoker))

	// Protected: el JWT se monta por prefijo para que una ruta inexistente
	// responda 404 y no 401
	jwt := auth.JWTMiddleware(cfg, revoker)

	api.Post("/auth/logout", jwt, auth.LogoutHandler(cfg, revoker))
	api.Get("/auth/me", jwt, auth.MeHandler())
	api.Get("/auth/usuarios", jwt, auth.ListUsersHandler())

	// PYMEs
	pymes := api.Group("/pymes", jwt)
	pymes.Post("/", pyme.CreateStoreHandler())
	pymes.Post("/crear", pyme.CreateStoreHandler())
	pymes.Get("/", pyme.ListStoresHandler())
	pymes.Get("/:id", pyme.GetStoreHandler())
	pymes.Put("/:id", pyme.UpdateStoreHandler())
	pymes.Post("/:id/empleados", pyme.AddEmployeeHandler())
	pymes.Delete("/:id/empleados/:usuario", pyme.RemoveEmployeeHandler())
	pymes.Get("/:id/resumen", dashboard.StoreSummaryHandler())
	pymes.Get("/:id/auditoria", audit.ListStoreAuditLogsHandler())

	// Productos
	productos := api.Group("/productos", jwt)
	productos.Post("/", catalog.CreateProductHandler())
	productos.Post("/crear", catalog.CreateProductHandler())
	productos.Post("/importar", catalog.ImportProductsHandler())
	productos.Get("/", catalog.ListProductsHandler())
	productos.Get("/:id", catalog.GetProductHandler())
	productos.Put("/:id", catalog.UpdateProductHandler())
	productos.Delete("/:id", catalog.DeleteProductHandler())

	// Turnos
	turnos := api.Group("/turnos", jwt)
	turnos.Post("/abrir", shift.OpenShiftHandler())
	turnos.Get("/", shift.ListShiftsHandler())
	turnos.Get("/:id", shift.GetShiftHandler())
	turnos.Post("/:id/cerrar", shift.CloseShiftHandler())
	turnos.Get("/:id/ventas", sale.ListShiftSalesHandler())
	turnos.Get("/:id/reporte", report.ShiftReportHandler())

	// Ventas
	ventas := api.Group("/ventas", jwt)
	ventas.Post("/registrar", sale.RecordSaleHandler())
	ventas.Get("/:id", sale.GetSaleHandler())

	return app, nil
}
