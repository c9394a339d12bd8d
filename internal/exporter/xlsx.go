package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/models"
)

// XLSXFilename is the suggested download name for XLSX exports.
const XLSXFilename = "filtered_sales.xlsx"

const sheetName = "Filtered Orders"

// WriteXLSX writes rows as a single-sheet workbook with the same
// columns and formatting as the CSV export.
func WriteXLSX(w io.Writer, rows []models.TableRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(models.DisplayColumns))
	for i, col := range models.DisplayColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i, err)
		}

		record := []any{
			row.OrderDate,
			row.CustomerID,
			row.ProductName,
			row.Category,
			row.CustomerRegion,
			row.TotalAmount,
			nil,
		}
		if row.CustomerRating != models.RatingUnresolved {
			record[len(record)-1] = row.CustomerRating
		}
		if err := f.SetSheetRow(sheetName, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "G", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
