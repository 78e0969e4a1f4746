package auth

import (
	"errors"
	"testing"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/database/dbtest"
)

func registerInput(username string) RegisterInput {
	return RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "clave-segura-1",
		Password2: "clave-segura-1",
	}
}

func TestRegisterFirstUserIsSuperuser(t *testing.T) {
	db := dbtest.Open(t)

	first, err := Register(db, registerInput("primera"))
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if !first.IsSuperuser || !first.IsStaff {
		t.Fatalf("first user flags = %v/%v", first.IsSuperuser, first.IsStaff)
	}

	second, err := Register(db, registerInput("segunda"))
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.IsSuperuser || second.IsStaff {
		t.Fatal("second user must not be privileged")
	}
}

func TestRegisterRejects(t *testing.T) {
	db := dbtest.Open(t)
	if _, err := Register(db, registerInput("ana")); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := map[string]struct {
		in    RegisterInput
		field string
	}{
		"mismatch": {
			in:    RegisterInput{Username: "b", Email: "b@example.com", Password: "clave-segura-1", Password2: "otra-clave-22"},
			field: "password",
		},
		"short": {
			in:    RegisterInput{Username: "b", Email: "b@example.com", Password: "corta", Password2: "corta"},
			field: "password",
		},
		"numeric": {
			in:    RegisterInput{Username: "b", Email: "b@example.com", Password: "12345678", Password2: "12345678"},
			field: "password",
		},
		"same as username": {
			in:    RegisterInput{Username: "benjamin1", Email: "b@example.com", Password: "Benjamin1", Password2: "Benjamin1"},
			field: "password",
		},
		"taken username": {
			in:    RegisterInput{Username: "ana", Email: "otra@example.com", Password: "clave-segura-1", Password2: "clave-segura-1"},
			field: "username",
		},
		"taken email": {
			in:    RegisterInput{Username: "b", Email: "ANA@example.com", Password: "clave-segura-1", Password2: "clave-segura-1"},
			field: "email",
		},
		"bad email": {
			in:    RegisterInput{Username: "b", Email: "no-es-correo", Password: "clave-segura-1", Password2: "clave-segura-1"},
			field: "email",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Register(db, tc.in)
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
				t.Fatalf("err = %v", err)
			}
			if _, ok := ae.Fields[tc.field]; !ok {
				t.Fatalf("fields = %v, want %s", ae.Fields, tc.field)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	db := dbtest.Open(t)
	if _, err := Register(db, registerInput("ana")); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := Authenticate(db, " ana ", "clave-segura-1")
	if err != nil || u.Username != "ana" {
		t.Fatalf("authenticate: %v %v", u, err)
	}
	if _, err := Authenticate(db, "ana", "incorrecta"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := Authenticate(db, "nadie", "clave-segura-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}
}
