package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportHeader is the column order of lead exports.
var ExportHeader = []string{"ID", "Name", "Email", "Phone", "Company", "Status", "Source", "Date", "Message"}

const exportSheet = "Leads"

func exportRow(l Lead) []string {
	return []string{
		l.ID,
		l.Name,
		l.Email,
		l.Phone,
		l.Company,
		string(l.Status),
		l.Source,
		l.CreatedAt.UTC().Format(time.DateOnly),
		l.Message,
	}
}

// WriteCSV writes items as CSV with a header row.
func WriteCSV(w io.Writer, items []Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("[leads WriteCSV] failed to write header: %w", err)
	}
	for _, l := range items {
		if err := cw.Write(exportRow(l)); err != nil {
			return fmt.Errorf("[leads WriteCSV] failed to write lead %s: %w", l.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes items as a single-sheet workbook with a frozen, styled header.
func WriteXLSX(w io.Writer, items []Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("[leads WriteXLSX] failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("[leads WriteXLSX] failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("[leads WriteXLSX] failed to create header style: %w", err)
	}

	if err := writeXLSXRow(f, 1, ExportHeader); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("[leads WriteXLSX] failed to style header: %w", err)
	}

	for i, l := range items {
		if err := writeXLSXRow(f, i+2, exportRow(l)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("[leads WriteXLSX] failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("[leads WriteXLSX] failed to write workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("[leads WriteXLSX] bad cell %d,%d: %w", col+1, row, err)
		}
		if err := f.SetCellValue(exportSheet, cell, v); err != nil {
			return fmt.Errorf("[leads WriteXLSX] failed to set %s: %w", cell, err)
		}
	}
	return nil
}
