package sale

import (
	"testing"

	"pyme-backend/internal/apperr"
	"pyme-backend/internal/database/dbtest"
	"pyme-backend/internal/models"
	"pyme-backend/internal/shift"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	owner    *models.User
	emp      *models.User
	stranger *models.User
	store    *models.Store
	pan      *models.Product
	cafe     *models.Product
	shift    *models.Shift
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{db: db}
	f.owner = dbtest.CreateUser(t, db, "owner")
	f.emp = dbtest.CreateUser(t, db, "emp")
	f.stranger = dbtest.CreateUser(t, db, "stranger")
	f.store = dbtest.CreateStore(t, db, "Tienda", f.owner, nil, f.emp)
	f.pan = dbtest.CreateProduct(t, db, f.store, "Pan", "6.00", "10.00")
	f.cafe = dbtest.CreateProduct(t, db, f.store, "Cafe", "0.10", "0.35")

	sh, err := shift.Open(db, f.owner, shift.OpenInput{StoreID: &f.store.ID, EmployeeIDs: []uint{f.emp.ID}})
	if err != nil {
		t.Fatalf("open shift: %v", err)
	}
	f.shift = sh
	return f
}

func (f *fixture) count(t *testing.T) (sales, lines int64) {
	t.Helper()
	f.db.Model(&models.Sale{}).Count(&sales)
	f.db.Model(&models.SaleLine{}).Count(&lines)
	return sales, lines
}

func cash(shiftID uint, lines ...LineInput) RecordInput {
	return RecordInput{ShiftID: shiftID, Lines: lines, PaymentMethod: "efectivo"}
}

func strptr(s string) *string { return &s }

func TestRecordComputesExactTotal(t *testing.T) {
	f := setup(t)

	s, err := Record(f.db, f.emp, cash(f.shift.ID,
		LineInput{ProductID: f.pan.ID, Quantity: 2},
		LineInput{ProductID: f.cafe.ID, Quantity: 3},
	))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := s.Total.StringFixed(2); got != "21.05" {
		t.Fatalf("total = %s, want 21.05", got)
	}

	sum := decimal.Zero
	for _, l := range s.Lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if !sum.Equal(s.Total) {
		t.Fatalf("total %s != sum of lines %s", s.Total, sum)
	}
	if s.StoreID != f.store.ID || s.SellerID != f.emp.ID {
		t.Fatalf("sale = %+v", s)
	}
	if s.TransferCode != nil || s.CustomerPhone != nil {
		t.Fatalf("cash sale kept transfer fields")
	}

	resp := NewSaleResponse(s)
	if resp.Detalles[0].ProductoNombre != "Pan" || resp.Detalles[0].Ganancia != "8.00" {
		t.Fatalf("line response = %+v", resp.Detalles[0])
	}
	if resp.VendedorNombre != "emp" {
		t.Fatalf("seller name = %q", resp.VendedorNombre)
	}
}

func TestRecordRollsBackOnForeignProduct(t *testing.T) {
	f := setup(t)
	other := dbtest.CreateStore(t, f.db, "Otra", f.stranger, nil)
	foreign := dbtest.CreateProduct(t, f.db, other, "Ajeno", "1", "2")

	_, err := Record(f.db, f.emp, cash(f.shift.ID,
		LineInput{ProductID: f.pan.ID, Quantity: 1},
		LineInput{ProductID: foreign.ID, Quantity: 1},
		LineInput{ProductID: 9999, Quantity: 1},
	))
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := err.(*apperr.Error).Fields
	if _, ok := fields["productos[1].producto"]; !ok {
		t.Fatalf("foreign product not reported: %v", fields)
	}
	if _, ok := fields["productos[2].producto"]; !ok {
		t.Fatalf("unknown product not reported: %v", fields)
	}

	if sales, lines := f.count(t); sales != 0 || lines != 0 {
		t.Fatalf("partial sale persisted: %d sales, %d lines", sales, lines)
	}
}

func TestRecordTransferRequiresReferenceAndPhone(t *testing.T) {
	f := setup(t)

	in := cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 1})
	in.PaymentMethod = "transferencia"
	in.CustomerPhone = strptr("+56911111111")

	_, err := Record(f.db, f.emp, in)
	if !apperr.IsValidation(err) {
		t.Fatalf("missing code accepted: %v", err)
	}
	if sales, _ := f.count(t); sales != 0 {
		t.Fatalf("sale persisted without transfer code")
	}

	in.TransferCode = strptr("TRX-99")
	s, err := Record(f.db, f.emp, in)
	if err != nil {
		t.Fatalf("transfer sale: %v", err)
	}
	if s.TransferCode == nil || *s.TransferCode != "TRX-99" {
		t.Fatalf("transfer code = %v", s.TransferCode)
	}
}

func TestRecordCheckOrder(t *testing.T) {
	f := setup(t)

	_, err := Record(f.db, f.emp, RecordInput{})
	if !apperr.IsValidation(err) {
		t.Fatalf("empty request: %v", err)
	}
	if err.Error() != "Faltan datos requeridos" {
		t.Fatalf("message = %q", err.Error())
	}
	for _, field := range []string{"turno", "productos", "metodo_pago"} {
		if _, ok := err.(*apperr.Error).Fields[field]; !ok {
			t.Fatalf("missing %q violation", field)
		}
	}

	if _, err := Record(f.db, f.emp, cash(f.shift.ID)); !apperr.IsValidation(err) {
		t.Fatalf("empty productos: %v", err)
	}
	if _, err := Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 0})); !apperr.IsValidation(err) {
		t.Fatalf("zero quantity: %v", err)
	}
	if _, err := Record(f.db, f.emp, cash(4242, LineInput{ProductID: f.pan.ID, Quantity: 1})); !apperr.IsNotFound(err) {
		t.Fatalf("unknown shift: %v", err)
	}
	if _, err := Record(f.db, f.stranger, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 1})); !apperr.IsForbidden(err) {
		t.Fatalf("unassigned seller: %v", err)
	}
	// el propietario tampoco vende si no está asignado
	if _, err := Record(f.db, f.owner, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 1})); !apperr.IsForbidden(err) {
		t.Fatalf("owner not assigned: %v", err)
	}
}

func TestRecordOnClosedShiftIsNotFound(t *testing.T) {
	f := setup(t)
	if _, err := shift.Close(f.db, f.owner, f.shift.ID, shift.CloseInput{}); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 1}))
	if !apperr.IsNotFound(err) {
		t.Fatalf("closed shift: %v", err)
	}
	if err.Error() != "Turno no encontrado o inactivo" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestLinesSnapshotPrices(t *testing.T) {
	f := setup(t)
	s, err := Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := f.db.Model(&models.Product{}).Where("id = ?", f.pan.ID).
		Update("sale_price", decimal.RequireFromString("99.99")).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	reloaded, err := Load(f.db, s.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reloaded.Lines[0].UnitPrice.StringFixed(2); got != "10.00" {
		t.Fatalf("snapshot price = %s", got)
	}
	if got := reloaded.Total.StringFixed(2); got != "10.00" {
		t.Fatalf("total = %s", got)
	}
}

func TestGetAndListAccess(t *testing.T) {
	f := setup(t)
	s, err := Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := Get(f.db, f.emp, s.ID); err != nil {
		t.Fatalf("seller get: %v", err)
	}
	if _, err := Get(f.db, f.owner, s.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := Get(f.db, f.stranger, s.ID); !apperr.IsForbidden(err) {
		t.Fatalf("stranger get: %v", err)
	}
	if _, err := Get(f.db, f.owner, 777); !apperr.IsNotFound(err) {
		t.Fatalf("missing sale: %v", err)
	}

	sales, err := ListForShift(f.db, f.emp, f.shift.ID)
	if err != nil || len(sales) != 1 {
		t.Fatalf("list for shift: %v %d", err, len(sales))
	}
	if _, err := ListForShift(f.db, f.stranger, f.shift.ID); !apperr.IsForbidden(err) {
		t.Fatalf("stranger list: %v", err)
	}
}

func TestRecordRejectsTotalsBeyondColumnWidth(t *testing.T) {
	f := setup(t)
	caro := dbtest.CreateProduct(t, f.db, f.store, "Caro", "1.00", "99999999.99")

	_, err := Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: f.pan.ID, Quantity: 100001}))
	if !apperr.IsValidation(err) {
		t.Fatalf("huge quantity: %v", err)
	}
	if _, ok := err.(*apperr.Error).Fields["productos[0].cantidad"]; !ok {
		t.Fatalf("fields = %v", err.(*apperr.Error).Fields)
	}

	_, err = Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: caro.ID, Quantity: 101}))
	if !apperr.IsValidation(err) {
		t.Fatalf("sale total overflow: %v", err)
	}

	if _, err := Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: caro.ID, Quantity: 60})); err != nil {
		t.Fatalf("first large sale: %v", err)
	}
	_, err = Record(f.db, f.emp, cash(f.shift.ID, LineInput{ProductID: caro.ID, Quantity: 60}))
	if !apperr.IsValidation(err) {
		t.Fatalf("shift total overflow: %v", err)
	}
	if _, ok := err.(*apperr.Error).Fields["productos"]; !ok {
		t.Fatalf("fields = %v", err.(*apperr.Error).Fields)
	}

	if sales, _ := f.count(t); sales != 1 {
		t.Fatalf("sales persisted = %d, want 1", sales)
	}
}
