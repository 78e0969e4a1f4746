package auth

import (
	"errors"
	"strings"
	"unicode"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/database"
	"pyme-backend/internal/models"
	"pyme-backend/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("credenciales inválidas")

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// Register crea un usuario. El primero que se registra en el sistema recibe
// is_superuser e is_staff; la marca Bootstrap se inserta en la misma
// transacción para que dos registros simultáneos no puedan ganar ambos.
func Register(db *gorm.DB, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v := validation.Struct(in)
	if in.Password != "" && in.Password2 != "" && in.Password != in.Password2 {
		v.Add("password", "Las contraseñas no coinciden.")
	}
	if in.Password != "" {
		checkPassword(v, in.Password, in.Username)
	}
	if err := v.Err(""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		taken := validation.Violations{}
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			taken.Add("username", "Ya existe un usuario con este nombre.")
		}
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			taken.Add("email", "Ya existe un usuario con este correo.")
		}
		if err := taken.Err(""); err != nil {
			return err
		}

		if err := tx.Create(&user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Invalid("username", "Ya existe un usuario con este nombre o correo.")
			}
			return err
		}

		marker := models.Bootstrap{ID: models.BootstrapID, UserID: user.ID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			user.IsSuperuser = true
			user.IsStaff = true
			return tx.Model(&user).Updates(map[string]any{
				"is_superuser": true,
				"is_staff":     true,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate compara usuario y contraseña. Usuario inexistente y
// contraseña incorrecta dan el mismo error.
func Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func checkPassword(v validation.Violations, password, username string) {
	if len([]rune(password)) < minPasswordLength {
		v.Add("password", "Esta contraseña es demasiado corta. Debe contener al menos 8 caracteres.")
		return
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		v.Add("password", "Esta contraseña es completamente numérica.")
		return
	}
	if username != "" && strings.EqualFold(password, username) {
		v.Add("password", "La contraseña es demasiado similar al nombre de usuario.")
	}
}
