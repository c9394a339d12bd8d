package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"salesdash/internal/exporter"
	"salesdash/internal/models"
	"salesdash/internal/services"
)

type ExportHandlers struct {
	filters *services.FilterService
	logger  *slog.Logger
}

func NewExportHandlers(filters *services.FilterService, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{filters: filters, logger: logger}
}

// HandleCSV downloads the last filtered row set as CSV. Export before
// any filter has run, or after one that matched nothing, is a no-op.
func (h *ExportHandlers) HandleCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.exportRows(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(exporter.CSVFilename))

	if err := exporter.WriteCSV(w, rows); err != nil {
		// Headers are out the door; all we can do is log.
		h.logger.Error("csv export failed", "error", err, "rows", len(rows))
	}
}

// HandleXLSX downloads the same rows as a workbook.
func (h *ExportHandlers) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.exportRows(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(exporter.XLSXFilename))

	if err := exporter.WriteXLSX(w, rows); err != nil {
		h.logger.Error("xlsx export failed", "error", err, "rows", len(rows))
	}
}

func (h *ExportHandlers) exportRows(w http.ResponseWriter) ([]models.TableRow, bool) {
	last := h.filters.LastResult()
	if last == nil || len(last.TableRows) == 0 {
		h.logger.Debug("export requested with no filtered data")
		w.WriteHeader(http.StatusNoContent)
		return nil, false
	}
	return last.TableRows, true
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
