// Package validation reúne todos los errores de entrada de una petición en un
// solo mapa campo -> motivo, para responder con un único 400.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"pyme-backend/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MsgRequired = "Este campo es requerido."
	MsgInvalid  = "Datos inválidos"
)

type Violations map[string]string

func (v Violations) Add(field, msg string) {
	if _, exists := v[field]; !exists {
		v[field] = msg
	}
}

func (v Violations) Empty() bool { return len(v) == 0 }

// Err devuelve nil si no hay violaciones o un error de validación con todas.
func (v Violations) Err(msg string) error {
	if v.Empty() {
		return nil
	}
	if msg == "" {
		msg = MsgInvalid
	}
	return apperr.Validation(msg, v)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// los errores se reportan con el nombre JSON del campo
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct valida las etiquetas `validate` de s.
func Struct(s any) Violations {
	out := Violations{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("non_field_errors", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// "CreateSaleRequest.productos[0].producto" -> "productos[0].producto"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Asegúrate de que este campo no tenga más de %s caracteres.", fe.Param())
		}
		return fmt.Sprintf("Asegúrate de que este valor sea menor o igual a %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return "Esta lista no puede estar vacía."
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Asegúrate de que este campo tenga al menos %s caracteres.", fe.Param())
		}
		return fmt.Sprintf("Asegúrate de que este valor sea mayor o igual a %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Asegúrate de que este valor sea mayor que %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("\"%v\" no es una elección válida.", fe.Value())
	case "email":
		return "Introduzca una dirección de correo electrónico válida."
	case "eqfield":
		return "Los valores no coinciden."
	}
	return "Valor no válido."
}

// Required marca field si value está vacío tras recortar espacios.
func Required(v Violations, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, MsgRequired)
	}
}

// NonNegative marca field si d falta o es negativo.
func NonNegative(v Violations, field string, d *decimal.Decimal) {
	if d == nil {
		v.Add(field, MsgRequired)
		return
	}
	if d.IsNegative() {
		v.Add(field, "Asegúrate de que este valor sea mayor o igual a 0.")
	}
}

// MaxDigits rechaza importes que no caben en decimal(p, 2).
func MaxDigits(v Violations, field string, d *decimal.Decimal, intDigits int) {
	if d == nil {
		return
	}
	limit := decimal.New(1, int32(intDigits))
	if d.Abs().GreaterThanOrEqual(limit) {
		v.Add(field, fmt.Sprintf("Asegúrate de que no haya más de %d dígitos antes del punto decimal.", intDigits))
	}
}
