package billing

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const invoiceSheet = "Invoice"

// WriteXLSX renders inv as a single-sheet Excel workbook
func WriteXLSX(inv *Invoice, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := [][]any{
		{"Workspace", inv.Workspace.Name},
		{"Scope", string(inv.Scope)},
		{"Currency", string(inv.Workspace.Currency)},
		{"Hourly rate", inv.HourlyRate},
		{"Generated at", inv.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if inv.UserID != "" {
		header = append(header, []any{"User", inv.UserID})
	}

	row := 1
	for _, values := range header {
		if err := setRow(f, row, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(invoiceSheet, cell(1, row), cell(1, row), bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		row++
	}

	row++
	if err := setRow(f, row, []any{"#", "Type", "Title", "Description", "Hours", "Amount"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(invoiceSheet, cell(1, row), cell(6, row), bold); err != nil {
		return fmt.Errorf("style table header: %w", err)
	}
	row++

	for i, item := range inv.Items {
		values := []any{i + 1, string(item.ItemType), item.Title, item.Description, item.Hours, item.Hours * inv.HourlyRate}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	row++
	totals := [][]any{
		{"Total items", inv.Totals.TotalItems},
		{"Tickets", inv.Totals.TicketCount},
		{"Manual items", inv.Totals.ManualCount},
		{"Total hours", inv.Totals.TotalHours},
		{"Total amount", inv.Totals.TotalAmount},
	}
	for _, values := range totals {
		if err := setRow(f, row, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(invoiceSheet, cell(1, row), cell(1, row), bold); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
		row++
	}

	if err := f.SetColWidth(invoiceSheet, "C", "D", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	for i, v := range values {
		if err := f.SetCellValue(invoiceSheet, cell(i+1, row), v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell(i+1, row), err)
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
