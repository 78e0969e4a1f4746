package auth

import (
	"log/slog"
	"strings"
	"time"

	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"
	CtxTokenIDKey  = "token_id"
	CtxTokenTTLKey = "token_ttl"
)

func JWTMiddleware(cfg *config.Config, revoker Revoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Falta la cabecera Authorization")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "El formato de Authorization debe ser 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1], TokenTypeAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token inválido o expirado")
		}

		revoked, err := revoker.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			slog.Error("no se pudo consultar la lista de revocación", "err", err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "No se pudo validar la sesión")
		}
		if revoked {
			return fiber.NewError(fiber.StatusUnauthorized, "La sesión fue cerrada")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxTokenIDKey, claims.ID)
		c.Locals(CtxTokenTTLKey, claims.remaining())

		return c.Next()
	}
}

// CurrentUser relee el usuario autenticado en cada petición, así los
// cambios de rol o una baja se aplican de inmediato.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Usuario no autenticado")
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Usuario no encontrado")
	}
	return &user, nil
}

func tokenTTL(c *fiber.Ctx) time.Duration {
	ttl, _ := c.Locals(CtxTokenTTLKey).(time.Duration)
	return ttl
}
