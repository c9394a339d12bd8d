// Package exporter writes filtered order rows to spreadsheet formats.
// Both writers emit the fixed display column set in a stable order.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"salesdash/internal/models"
)

// CSVFilename is the suggested download name for CSV exports.
const CSVFilename = "filtered_sales.csv"

// WriteCSV writes rows as CSV with a UTF-8 BOM so spreadsheet apps
// pick up the encoding.
func WriteCSV(w io.Writer, rows []models.TableRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(models.DisplayColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRecord(row models.TableRow) []string {
	return []string{
		row.OrderDate,
		row.CustomerID,
		row.ProductName,
		row.Category,
		row.CustomerRegion,
		strconv.FormatFloat(row.TotalAmount, 'f', 2, 64),
		ratingField(row.CustomerRating),
	}
}

// ratingField leaves unresolved ratings blank rather than writing a
// misleading zero.
func ratingField(rating int) string {
	if rating == models.RatingUnresolved {
		return ""
	}
	return strconv.Itoa(rating)
}
