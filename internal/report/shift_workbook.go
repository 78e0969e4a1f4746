// Package report genera la planilla de cierre de un turno.
package report

import (
	"fmt"

	"pyme-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary = "Resumen"
	SheetSales   = "Ventas"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timeLayout = "2006-01-02 15:04:05"
)

var salesHeader = []any{
	"Venta", "Fecha", "Vendedor", "Método de pago", "Producto",
	"Cantidad", "Precio unitario", "Costo unitario", "Subtotal", "Ganancia",
}

// ShiftWorkbook arma un libro con el resumen del turno y una fila por cada
// línea de venta. sh debe traer Store, OpenedBy, ClosedBy y Employees; las
// ventas, Seller y Lines.Product.
func ShiftWorkbook(sh *models.Shift, sales []models.Sale) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	if err := writeSummary(f, sh, len(sales)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetSales); err != nil {
		return nil, err
	}
	if err := writeSales(f, sales); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetSales, "A1", "J1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColStyle(SheetSummary, "A", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetSales, "B", "E", 20); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, sh *models.Shift, salesCount int) error {
	estado := "Abierto"
	fin := ""
	cerradoPor := ""
	if !sh.Active {
		estado = "Cerrado"
	}
	if sh.EndedAt != nil {
		fin = sh.EndedAt.Format(timeLayout)
	}
	if sh.ClosedBy != nil {
		cerradoPor = sh.ClosedBy.Username
	}

	empleados := ""
	for i, e := range sh.Employees {
		if i > 0 {
			empleados += ", "
		}
		empleados += e.Username
	}

	rows := [][]any{
		{"Turno", sh.ID},
		{"PYME", sh.Store.Name},
		{"Estado", estado},
		{"Inicio", sh.StartedAt.Format(timeLayout)},
		{"Fin", fin},
		{"Abierto por", sh.OpenedBy.Username},
		{"Cerrado por", cerradoPor},
		{"Empleados", empleados},
		{"Ventas registradas", salesCount},
		{"Total ventas", sh.TotalSales.InexactFloat64()},
		{"Ganancia bruta", sh.GrossProfit.InexactFloat64()},
		{"Salario empleados", sh.EmployeeWages.InexactFloat64()},
		{"Salario administrador", sh.AdminWages.InexactFloat64()},
		{"Gastos", sh.Expenses.InexactFloat64()},
		{"Notas de gastos", sh.ExpenseNotes},
		{"Ganancia neta", sh.NetProfit().InexactFloat64()},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSales(f *excelize.File, sales []models.Sale) error {
	if err := f.SetSheetRow(SheetSales, "A1", &salesHeader); err != nil {
		return err
	}

	r := 2
	for _, s := range sales {
		for _, l := range s.Lines {
			row := []any{
				s.ID,
				s.SoldAt.Format(timeLayout),
				s.Seller.Username,
				string(s.PaymentMethod),
				l.Product.Name,
				l.Quantity,
				l.UnitPrice.InexactFloat64(),
				l.UnitCost.InexactFloat64(),
				l.Subtotal().InexactFloat64(),
				l.Profit().InexactFloat64(),
			}
			if err := f.SetSheetRow(SheetSales, fmt.Sprintf("A%d", r), &row); err != nil {
				return err
			}
			r++
		}
	}
	return nil
}
