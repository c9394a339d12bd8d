// Package templates holds the dashboard page components. The page is a
// thin shell: datastar fetches the KPI cards, chart signals and the
// filtered orders table over SSE, so everything dynamic comes from the
// handlers.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"salesdash/internal/models"
)

// DashboardData is everything the static page shell needs at render
// time; the rest arrives through /sse/dashboard.
type DashboardData struct {
	Summary    models.Summary
	Regions    []string
	Categories []string
}

func Dashboard(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return dashboardPage.Execute(w, data)
	})
}

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7fb;color:#1f2437}
.wrap{max-width:1200px;margin:0 auto;padding:24px}
.kpi-row{display:grid;grid-template-columns:repeat(4,1fr);gap:16px;margin-bottom:24px}
.kpi-card{background:#fff;border-radius:12px;padding:20px;box-shadow:0 1px 4px rgba(0,0,0,.08)}
.kpi-label{font-size:13px;color:#6b7280;text-transform:uppercase}
.kpi-value{font-size:26px;font-weight:700;margin-top:6px}
.filters{background:#fff;border-radius:12px;padding:16px;margin-bottom:24px;display:flex;gap:16px;flex-wrap:wrap;align-items:end}
.filters label{display:block;font-size:13px;color:#6b7280;margin-bottom:4px}
.modern-table{width:100%;border-collapse:collapse;background:#fff;border-radius:12px;overflow:hidden}
.modern-table th,.modern-table td{padding:10px 14px;text-align:left;border-bottom:1px solid #eef0f4}
.category-badge{background:#eef2ff;border-radius:999px;padding:2px 10px;font-size:12px}
.no-data{padding:32px;text-align:center;color:#6b7280}
.table-note{font-size:12px;color:#6b7280;padding:8px 14px}
.export{margin-left:auto}
button{background:#5879ff;color:#fff;border:0;border-radius:8px;padding:8px 16px;cursor:pointer}
</style>
</head>
<body data-signals="{start_date:'',end_date:'',regions:'',categories:''}" data-on-load="@get('/sse/dashboard')">
<div class="wrap">
<h1>Sales Dashboard</h1>

<div id="kpi-cards" class="kpi-row">
<div class="kpi-card"><div class="kpi-label">Total Sales</div><div class="kpi-value">{{.Summary.TotalSales}}</div></div>
<div class="kpi-card"><div class="kpi-label">Number of Orders</div><div class="kpi-value">{{.Summary.TotalOrders}}</div></div>
<div class="kpi-card"><div class="kpi-label">Average Order Value</div><div class="kpi-value">{{.Summary.AvgOrderValue}}</div></div>
<div class="kpi-card"><div class="kpi-label">Average Rating</div><div class="kpi-value">{{.Summary.AvgRating}}</div></div>
</div>

<div class="filters">
<div><label for="start">Start date</label><input id="start" type="date" data-bind-start_date></div>
<div><label for="end">End date</label><input id="end" type="date" data-bind-end_date></div>
<div><label for="region">Region</label>
<select id="region" data-bind-regions>
<option value="">All regions</option>
{{range .Regions}}<option value="{{.}}">{{.}}</option>{{end}}
</select></div>
<div><label for="category">Category</label>
<select id="category" data-bind-categories>
<option value="">All categories</option>
{{range .Categories}}<option value="{{.}}">{{.}}</option>{{end}}
</select></div>
<div><button data-on-click="@get('/sse/filter?start_date='+$start_date+'&end_date='+$end_date+'&regions='+$regions+'&categories='+$categories)">Apply</button></div>
<div class="export"><a href="/export/csv"><button type="button">Export CSV</button></a>
<a href="/export/xlsx"><button type="button">Export XLSX</button></a></div>
</div>

<div id="sales-growth" data-signals-sales_growth="[]"></div>
<div id="top-products" data-signals-top_products="[]"></div>

<div id="orders-content"><p class="no-data">Apply a filter to see matching orders.</p></div>
</div>
</body>
</html>`))
