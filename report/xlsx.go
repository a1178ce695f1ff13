package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/stockmitra/stockmitra/internal/stock"
	"github.com/stockmitra/stockmitra/internal/txlog"
)

// MonthlyXLSX writes a monthly summary workbook to w.
func MonthlyXLSX(w io.Writer, rows []txlog.MonthlyRow, f *Formatter) error {
	file := excelize.NewFile()
	defer file.Close()
	const sheet = "Monthly Summary"
	if err := renameDefaultSheet(file, sheet); err != nil {
		return err
	}
	header := []any{
		"Month", "Product ID", "Product Name", "Units",
		"Sales Value", "Purchase Value", "Profit/Loss", "Margin",
		"Avg Sales Price", "Avg Purchase Price",
	}
	if err := writeSheetRow(file, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		row := []any{
			r.Month, r.ProductID, r.ProductName, r.Units,
			f.Money(r.SalesValue), f.Money(r.PurchaseValue),
			f.Money(r.ProfitLoss), f.Percent(r.ProfitMarginPct),
			f.Money(r.AvgSalesPrice), f.Money(r.AvgPurchasePrice),
		}
		if err := writeSheetRow(file, sheet, i+2, row); err != nil {
			return err
		}
	}
	return file.Write(w)
}

// StockXLSX writes the per-product company stock view workbook to w.
func StockXLSX(w io.Writer, rollups []stock.ProductRollup, f *Formatter) error {
	file := excelize.NewFile()
	defer file.Close()
	const sheet = "Stock"
	if err := renameDefaultSheet(file, sheet); err != nil {
		return err
	}
	header := []any{
		"Product ID", "Product Name", "Live Cartons", "Live Pieces",
		"Damaged/Expired", "Earliest Inwarded", "Earliest Expiry",
		"Avg MRP", "Avg Sales Price", "Locations", "Status",
	}
	if err := writeSheetRow(file, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range rollups {
		row := []any{
			r.ProductID, r.ProductName, r.LiveCartons, r.LivePieces,
			r.DamagedExpiredUnits, f.Date(r.EarliestInwarded), f.Date(r.EarliestExpiry),
			f.Money(r.AvgMRP), f.Money(r.AvgSalesPrice),
			joinLocations(r.Locations), string(r.Status),
		}
		if err := writeSheetRow(file, sheet, i+2, row); err != nil {
			return err
		}
	}
	return file.Write(w)
}

func renameDefaultSheet(file *excelize.File, name string) error {
	return file.SetSheetName(file.GetSheetName(0), name)
}

func writeSheetRow(file *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("report: cell for row %d: %w", row, err)
	}
	return file.SetSheetRow(sheet, cell, &values)
}
