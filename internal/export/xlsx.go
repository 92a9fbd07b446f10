// Package export renders inventory and invoice listings as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	InventorySheet = "Inventory"
	InvoiceSheet   = "Invoices"
)

var inventoryHeader = []string{
	"ID", "Product Name", "Color", "Category",
	"Yard Available", "Piece Available",
	"Loaded Yards", "Loaded Pieces",
	"Procurement Yards", "Procurement Pieces",
	"Sale Yards", "Sale Pieces",
	"Yards On Hold", "Pieces On Hold",
}

var invoiceHeader = []string{"Invoice Number", "Customer Name", "Total Price"}

// WriteInventory writes one row per inventory record.
func WriteInventory(w io.Writer, records []inventoryapi.InventoryRecord) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.ID, r.Product.ProductName, r.Color, r.Category,
			r.YardAvailable, r.PieceAvailable,
			r.LoadedYards, r.LoadedPieces,
			r.ProcurementYards, r.ProcurementPieces,
			r.SaleYards, r.SalePieces,
			r.YardsOnHold, r.PiecesOnHold,
		})
	}
	return writeWorkbook(w, InventorySheet, inventoryHeader, rows)
}

// WriteInvoices writes one row per invoice header.
func WriteInvoices(w io.Writer, headers []inventoryapi.InvoiceHeader) error {
	rows := make([][]any, 0, len(headers))
	for _, h := range headers {
		rows = append(rows, []any{h.InvoiceNumber, h.CustomerName, h.TotalPrice})
	}
	return writeWorkbook(w, InvoiceSheet, invoiceHeader, rows)
}

func writeWorkbook(w io.Writer, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: name sheet: %w", err)
	}
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("export: apply header style: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
