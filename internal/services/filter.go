package services

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"salesdash/internal/dataset"
	"salesdash/internal/models"
)

// yoyOffset is how many period rows back the year-over-year comparison
// looks. Positional over the period sequence, not calendar-aware, which
// matches how the growth chart has always been computed.
const yoyOffset = 12

// FilterSpec is one filter request from the presentation layer. Zero
// time bounds or empty sets impose no constraint; all provided
// predicates are ANDed.
type FilterSpec struct {
	Start      time.Time
	End        time.Time
	Regions    []string
	Categories []string
}

func (s FilterSpec) hasDateRange() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// FilterResult is everything one filter invocation produces: the raw
// matching rows for export, the growth series, the scoped product
// ranking and the display table rows.
type FilterResult struct {
	Rows        []models.Order        `json:"-"`
	SalesGrowth []models.PeriodSales  `json:"sales_growth"`
	TopProducts []models.ProductSales `json:"top_products"`
	TableRows   []models.TableRow     `json:"table_rows"`
	RowCount    int                   `json:"row_count"`
}

// FilterService applies filter specs against the shared base table.
// Each Apply is a pure function of (table, spec); the only state kept
// is the most recent result, which backs the export endpoints.
type FilterService struct {
	analytics *Analytics
	logger    *slog.Logger

	mu   sync.Mutex
	last *FilterResult
}

func NewFilterService(analytics *Analytics, logger *slog.Logger) *FilterService {
	return &FilterService{analytics: analytics, logger: logger}
}

// Apply filters the base table and retains the result for export.
func (s *FilterService) Apply(spec FilterSpec) *FilterResult {
	res := ApplyFilter(s.analytics.Table(), spec)

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	s.logger.Debug("filter applied",
		"rows", res.RowCount,
		"regions", len(spec.Regions),
		"categories", len(spec.Categories),
		"date_range", spec.hasDateRange(),
	)
	return res
}

// LastResult returns the most recent filter result, or nil when no
// filter has run yet. Export treats nil as a no-op.
func (s *FilterService) LastResult() *FilterResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ApplyFilter is the pure filtering core: base table in, derived view
// out, no shared state touched.
func ApplyFilter(t *dataset.Table, spec FilterSpec) *FilterResult {
	rows := filterRows(t, spec)

	return &FilterResult{
		Rows:        rows,
		SalesGrowth: salesGrowth(rows, t),
		TopProducts: TopProductsOf(rows, t.HasColumn(dataset.ColProductName)),
		TableRows:   TableRowsOf(rows),
		RowCount:    len(rows),
	}
}

func filterRows(t *dataset.Table, spec FilterSpec) []models.Order {
	// Date filtering needs the derived calendar columns; without them
	// it is silently disabled rather than an error.
	dateActive := spec.hasDateRange() &&
		t.HasColumn(dataset.ColYear) && t.HasColumn(dataset.ColMonth)
	regions := toSet(spec.Regions)
	categories := toSet(spec.Categories)

	var out []models.Order
	for _, o := range t.Orders {
		if dateActive && !inMonthRange(o, spec.Start, spec.End) {
			continue
		}
		if len(regions) > 0 && !regions[o.CustomerRegion] {
			continue
		}
		if len(categories) > 0 && !categories[o.Category] {
			continue
		}
		out = append(out, o)
	}
	return out
}

// inMonthRange compares (year, month) pairs lexicographically, so the
// day of month of both the row and the bounds is ignored. Rows with an
// invalid date never match an active range.
func inMonthRange(o models.Order, start, end time.Time) bool {
	if !o.HasDate() {
		return false
	}
	sy, sm := start.Year(), int(start.Month())
	ey, em := end.Year(), int(end.Month())

	afterStart := o.Year > sy || (o.Year == sy && o.Month >= sm)
	beforeEnd := o.Year < ey || (o.Year == ey && o.Month <= em)
	return afterStart && beforeEnd
}

// salesGrowth buckets the filtered rows by (year, month) and derives
// month-over-month and year-over-year percent change. Both are nil for
// the leading periods and whenever the comparison base is zero.
func salesGrowth(rows []models.Order, t *dataset.Table) []models.PeriodSales {
	if !t.HasColumn(dataset.ColYear) || !t.HasColumn(dataset.ColMonth) ||
		!t.HasColumn(dataset.ColTotalAmount) {
		return nil
	}

	type bucket struct{ year, month int }
	sums := make(map[bucket]float64)
	for _, o := range rows {
		if !o.HasDate() {
			continue
		}
		sums[bucket{o.Year, o.Month}] += o.TotalAmount
	}

	out := make([]models.PeriodSales, 0, len(sums))
	for b, total := range sums {
		out = append(out, models.PeriodSales{
			Year:   b.year,
			Month:  b.month,
			Period: MonthPeriod(b.year, b.month),
			Total:  total,
		})
	}
	slices.SortFunc(out, func(a, b models.PeriodSales) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return a.Month - b.Month
	})

	for i := range out {
		out[i].MoM = percentChange(out, i, 1)
		out[i].YoY = percentChange(out, i, yoyOffset)
	}
	return out
}

func percentChange(series []models.PeriodSales, i, offset int) *float64 {
	if i < offset {
		return nil
	}
	prev := series[i-offset].Total
	if prev == 0 {
		return nil
	}
	change := (series[i].Total - prev) / prev * 100
	return &change
}

// TableRowsOf projects orders onto the fixed display column set, with
// order dates rendered as YYYY-MM-DD and invalid dates left blank.
func TableRowsOf(rows []models.Order) []models.TableRow {
	out := make([]models.TableRow, 0, len(rows))
	for _, o := range rows {
		date := ""
		if o.HasDate() {
			date = o.OrderDate.Format("2006-01-02")
		}
		out = append(out, models.TableRow{
			OrderDate:      date,
			CustomerID:     o.CustomerID,
			ProductName:    o.ProductName,
			Category:       o.Category,
			CustomerRegion: o.CustomerRegion,
			TotalAmount:    o.TotalAmount,
			CustomerRating: o.CustomerRating,
		})
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
