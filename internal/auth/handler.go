package auth

import (
	"errors"
	"log/slog"

	"pyme-backend/internal/access"
	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		IsStaff:     u.IsStaff,
	}
}

// POST /api/auth/register/
func RegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		user, err := Register(database.DB, body)
		if err != nil {
			return err
		}
		if user.IsSuperuser {
			slog.Info("primer usuario registrado como superusuario", "user_id", user.ID)
		}

		return c.Status(fiber.StatusCreated).JSON(NewUserResponse(user))
	}
}

// POST /api/auth/login/
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Usuario y contraseña son obligatorios")
		}

		user, err := Authenticate(database.DB, body.Username, body.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusUnauthorized, "Credenciales inválidas")
			}
			return err
		}

		pair, err := GenerateTokenPair(cfg, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}

		return c.JSON(fiber.Map{
			"refresh": pair.Refresh,
			"access":  pair.Access,
			"user":    NewUserResponse(user),
		})
	}
}

// POST /api/auth/refresh/
func RefreshHandler(cfg *config.Config, revoker Revoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil || body.Refresh == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Falta el token de refresco")
		}

		claims, err := ParseToken(cfg.JWTSecret, body.Refresh, TokenTypeRefresh)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token inválido o expirado")
		}
		revoked, err := revoker.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return err
		}
		if revoked {
			return fiber.NewError(fiber.StatusUnauthorized, "La sesión fue cerrada")
		}

		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario no encontrado")
		}

		accessToken, err := GenerateToken(cfg.JWTSecret, &user, TokenTypeAccess, cfg.AccessTokenTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}
		return c.JSON(fiber.Map{"access": accessToken})
	}
}

// POST /api/auth/logout/
// Revoca el token de acceso actual y, si viene en el cuerpo, el de refresco.
func LogoutHandler(cfg *config.Config, revoker Revoker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jti, _ := c.Locals(CtxTokenIDKey).(string)
		if err := revoker.Revoke(c.UserContext(), jti, tokenTTL(c)); err != nil {
			return err
		}

		var body RefreshRequest
		_ = c.BodyParser(&body)
		if body.Refresh != "" {
			if claims, err := ParseToken(cfg.JWTSecret, body.Refresh, TokenTypeRefresh); err == nil {
				if err := revoker.Revoke(c.UserContext(), claims.ID, claims.remaining()); err != nil {
					return err
				}
			}
		}

		return c.JSON(fiber.Map{"message": "Sesión cerrada"})
	}
}

// GET /api/auth/me/
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(NewUserResponse(user))
	}
}

// GET /api/auth/usuarios/
// Superusuarios y propietarios ven a todos; el resto solo se ve a sí mismo.
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}

		owns, err := access.OwnsAnyStore(database.DB, user.ID)
		if err != nil {
			return err
		}
		if !access.CanListAllUsers(user, owns) {
			return c.JSON([]UserResponse{NewUserResponse(user)})
		}

		var users []models.User
		if err := database.DB.Order("username ASC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los usuarios")
		}

		resp := make([]UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, NewUserResponse(&users[i]))
		}
		return c.JSON(resp)
	}
}
