package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"salesdash/internal/models"
	"salesdash/internal/services"
)

const maxTableRows = 50

var ordersTableTemplate = template.Must(template.New("ordersTable").Parse(`
<div id="orders-content">
<table class="modern-table">
<thead><tr><th>Date</th><th>Customer</th><th>Product</th><th>Category</th><th>Region</th><th>Amount</th><th>Rating</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.OrderDate}}</td>
<td>{{.CustomerID}}</td>
<td>{{.ProductName}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.CustomerRegion}}</td>
<td><strong>{{printf "%.2f" .TotalAmount}}</strong></td>
<td>{{if .CustomerRating}}{{.CustomerRating}}{{else}}&ndash;{{end}}</td>
</tr>{{end}}
</tbody>
</table>
{{if .Truncated}}<p class="table-note">Showing first {{.MaxRows}} of {{.Total}} rows.</p>{{end}}
</div>`))

const noDataFragment = `<div id="orders-content"><p class="no-data">No orders match the selected filters.</p></div>`

var kpiTemplate = template.Must(template.New("kpiCards").Parse(`
<div id="kpi-cards" class="kpi-row">
<div class="kpi-card"><div class="kpi-label">Total Sales</div><div class="kpi-value">{{.TotalSales}}</div></div>
<div class="kpi-card"><div class="kpi-label">Number of Orders</div><div class="kpi-value">{{.TotalOrders}}</div></div>
<div class="kpi-card"><div class="kpi-label">Average Order Value</div><div class="kpi-value">{{.AvgOrderValue}}</div></div>
<div class="kpi-card"><div class="kpi-label">Average Rating</div><div class="kpi-value">{{.AvgRating}}</div></div>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	filters   *services.FilterService
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, filters *services.FilterService, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		filters:   filters,
		logger:    logger,
	}
}

// HandleDashboard pushes the KPI cards and every precomputed chart
// series to a freshly opened dashboard.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	var buf strings.Builder
	if err := kpiTemplate.Execute(&buf, h.analytics.Summary()); err != nil {
		h.logger.Error("render kpi cards", "error", err)
		return
	}
	sse.PatchElements(buf.String())

	pre := h.analytics.Precomputed()
	signals, err := json.Marshal(map[string]any{
		"salesOverTime":      pre.SalesOverTime,
		"salesByRegion":      pre.SalesByRegion,
		"salesByCategory":    pre.SalesByCategory,
		"categoryMonth":      pre.CategoryMonth,
		"categoryQuarter":    pre.CategoryQuarter,
		"ordersByPayment":    pre.OrdersByPayment,
		"topProducts":        pre.TopProducts,
		"avgRatingRegion":    pre.AvgRatingByRegion,
		"avgOrderByDate":     pre.AvgOrderByDate,
		"ratingDistribution": pre.RatingDistribution,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleFilter recomputes the filtered view when a selection changes
// and patches the orders table plus the chart signals. A bad filter
// spec or an empty result degrades to the no-data fragment; filter
// errors are never surfaced as SSE stream failures.
func (h *SSEHandlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	spec, err := parseFilterSpec(r)
	if err != nil {
		h.logger.Warn("invalid filter spec", "error", err)
		sse.PatchElements(noDataFragment)
		return
	}

	res := h.filters.Apply(spec)

	if res.RowCount == 0 {
		sse.PatchElements(noDataFragment)
	} else {
		html, err := h.renderOrdersTable(res.TableRows)
		if err != nil {
			h.logger.Error("render orders table", "error", err)
			return
		}
		sse.PatchElements(html)
	}

	signals, err := json.Marshal(map[string]any{
		"salesGrowth":  res.SalesGrowth,
		"topProducts":  res.TopProducts,
		"filteredRows": res.RowCount,
	})
	if err != nil {
		h.logger.Error("marshal filter signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) renderOrdersTable(rows []models.TableRow) (string, error) {
	total := len(rows)
	truncated := total > maxTableRows
	if truncated {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := ordersTableTemplate.Execute(&buf, struct {
		Rows      []models.TableRow
		Truncated bool
		MaxRows   int
		Total     int
	}{rows, truncated, maxTableRows, total})
	return buf.String(), err
}
