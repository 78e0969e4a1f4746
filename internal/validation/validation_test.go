package validation

import (
	"testing"

	"pyme-backend/internal/apperr"

	"github.com/shopspring/decimal"
)

type lineReq struct {
	Product  uint `json:"producto" validate:"required"`
	Quantity int  `json:"cantidad" validate:"required,gt=0"`
}

type saleReq struct {
	Shift  uint      `json:"turno" validate:"required"`
	Lines  []lineReq `json:"productos" validate:"required,min=1,dive"`
	Method string    `json:"metodo_pago" validate:"required,oneof=efectivo transferencia"`
}

func TestStructEnumeratesEveryField(t *testing.T) {
	v := Struct(saleReq{})
	for _, f := range []string{"turno", "productos", "metodo_pago"} {
		if _, ok := v[f]; !ok {
			t.Fatalf("missing violation for %q: %v", f, v)
		}
	}
}

func TestStructNestedLines(t *testing.T) {
	v := Struct(saleReq{
		Shift:  1,
		Lines:  []lineReq{{Product: 1, Quantity: 1}, {Product: 0, Quantity: -2}},
		Method: "cheque",
	})
	if _, ok := v["productos[1].producto"]; !ok {
		t.Fatalf("expected productos[1].producto violation: %v", v)
	}
	if _, ok := v["productos[1].cantidad"]; !ok {
		t.Fatalf("expected productos[1].cantidad violation: %v", v)
	}
	if _, ok := v["metodo_pago"]; !ok {
		t.Fatalf("expected metodo_pago violation: %v", v)
	}
	if _, ok := v["productos[0].cantidad"]; ok {
		t.Fatalf("valid line reported: %v", v)
	}
}

func TestEmptyLinesRejected(t *testing.T) {
	v := Struct(saleReq{Shift: 1, Lines: []lineReq{}, Method: "efectivo"})
	if _, ok := v["productos"]; !ok {
		t.Fatalf("empty productos accepted: %v", v)
	}
}

func TestErr(t *testing.T) {
	if err := (Violations{}).Err(""); err != nil {
		t.Fatalf("empty violations produced %v", err)
	}
	v := Violations{}
	Required(v, "nombre", "   ")
	neg := decimal.RequireFromString("-1")
	NonNegative(v, "precio_venta", &neg)
	NonNegative(v, "precio_compra", nil)

	err := v.Err("")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(v) != 3 {
		t.Fatalf("violations = %v", v)
	}
}

func TestMaxDigits(t *testing.T) {
	v := Violations{}
	big := decimal.RequireFromString("100000000")
	ok := decimal.RequireFromString("99999999.99")
	MaxDigits(v, "a", &big, 8)
	MaxDigits(v, "b", &ok, 8)
	if _, bad := v["a"]; !bad {
		t.Fatalf("9-digit amount accepted")
	}
	if _, bad := v["b"]; bad {
		t.Fatalf("8-digit amount rejected")
	}
}
