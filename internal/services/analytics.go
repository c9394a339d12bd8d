package services

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"salesdash/internal/dataset"
	"salesdash/internal/models"
)

const topProductLimit = 10

// Precomputed holds every aggregate derived from the cleaned table.
// Computed once after load; served read-only afterwards.
type Precomputed struct {
	Summary            models.Summary               `json:"summary"`
	SalesOverTime      []models.DatePoint           `json:"sales_over_time"`
	SalesByRegion      []models.KeyTotal            `json:"sales_by_region"`
	SalesByCategory    []models.KeyTotal            `json:"sales_by_category"`
	CategoryMonth      []models.CategoryPeriodSales `json:"sales_by_category_month"`
	CategoryQuarter    []models.CategoryPeriodSales `json:"sales_by_category_quarter"`
	OrdersByPayment    []models.PaymentCount        `json:"orders_by_payment"`
	TopProducts        []models.ProductSales        `json:"top_products"`
	AvgRatingByRegion  []models.RegionRating        `json:"avg_rating_region"`
	AvgOrderByDate     []models.DatePoint           `json:"avg_order_by_date"`
	RatingDistribution []models.RatingCount         `json:"rating_distribution"`
	RecordCount        int                          `json:"record_count"`
	ComputedAt         time.Time                    `json:"computed_at"`
}

// Analytics owns the immutable base table and its precomputed
// aggregates. Safe for concurrent readers; the table is never mutated
// after SetTable.
type Analytics struct {
	mu          sync.RWMutex
	table       *dataset.Table
	precomputed *Precomputed
	logger      *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		table:       dataset.NewTable(nil),
		precomputed: &Precomputed{},
		logger:      slog.Default(),
	}
}

// SetTable installs a cleaned table as the process-wide dataset and
// recomputes every aggregate.
func (a *Analytics) SetTable(t *dataset.Table) {
	pre := computeAggregates(t)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.table = t
	a.precomputed = pre

	a.logger.Info("aggregates computed",
		"rows", t.Len(),
		"regions", len(pre.SalesByRegion),
		"categories", len(pre.SalesByCategory),
		"products", len(pre.TopProducts),
	)
}

// Table returns the shared base table for read-only use.
func (a *Analytics) Table() *dataset.Table {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table
}

func (a *Analytics) Precomputed() *Precomputed {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed
}

func (a *Analytics) Summary() models.Summary {
	return a.Precomputed().Summary
}

func (a *Analytics) SalesOverTime() []models.DatePoint { return a.Precomputed().SalesOverTime }

func (a *Analytics) SalesByRegion() []models.KeyTotal { return a.Precomputed().SalesByRegion }

func (a *Analytics) SalesByCategory() []models.KeyTotal { return a.Precomputed().SalesByCategory }

func (a *Analytics) SalesByCategoryMonth() []models.CategoryPeriodSales {
	return a.Precomputed().CategoryMonth
}

func (a *Analytics) SalesByCategoryQuarter() []models.CategoryPeriodSales {
	return a.Precomputed().CategoryQuarter
}

func (a *Analytics) OrdersByPayment() []models.PaymentCount { return a.Precomputed().OrdersByPayment }

func (a *Analytics) TopProducts() []models.ProductSales { return a.Precomputed().TopProducts }

func (a *Analytics) AvgRatingByRegion() []models.RegionRating {
	return a.Precomputed().AvgRatingByRegion
}

func (a *Analytics) AvgOrderByDate() []models.DatePoint { return a.Precomputed().AvgOrderByDate }

func (a *Analytics) RatingDistribution() []models.RatingCount {
	return a.Precomputed().RatingDistribution
}

// Stats reports dataset shape for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count": a.precomputed.RecordCount,
		"skipped_rows": a.table.SkippedRows,
		"computed_at":  a.precomputed.ComputedAt,
		"regions":      len(a.precomputed.SalesByRegion),
		"categories":   len(a.precomputed.SalesByCategory),
		"products":     len(a.precomputed.TopProducts),
		"dates":        len(a.precomputed.SalesOverTime),
	}
}

func computeAggregates(t *dataset.Table) *Precomputed {
	return &Precomputed{
		Summary:            computeSummary(t),
		SalesOverTime:      sumByDate(t),
		SalesByRegion:      sumByKey(t, dataset.ColCustomerRegion, func(o models.Order) string { return o.CustomerRegion }),
		SalesByCategory:    sumByKey(t, dataset.ColCategory, func(o models.Order) string { return o.Category }),
		CategoryMonth:      sumByCategoryMonth(t),
		CategoryQuarter:    sumByCategoryQuarter(t),
		OrdersByPayment:    countByPayment(t),
		TopProducts:        TopProductsOf(t.Orders, t.HasColumn(dataset.ColProductName)),
		AvgRatingByRegion:  avgRatingByRegion(t),
		AvgOrderByDate:     avgByDate(t),
		RatingDistribution: ratingDistribution(t),
		RecordCount:        t.Len(),
		ComputedAt:         time.Now(),
	}
}

func computeSummary(t *dataset.Table) models.Summary {
	s := models.Summary{
		TotalSales:    FormatCurrency(0, 0),
		TotalOrders:   formatCount(t.Len()),
		AvgOrderValue: FormatCurrency(0, 2),
		AvgRating:     "N/A",
	}

	if t.HasColumn(dataset.ColTotalAmount) {
		var total float64
		for _, o := range t.Orders {
			total += o.TotalAmount
		}
		s.TotalSales = FormatCurrency(total, 0)
		if t.Len() > 0 {
			s.AvgOrderValue = FormatCurrency(total/float64(t.Len()), 2)
		}
	}

	if t.HasColumn(dataset.ColCustomerRating) {
		sum, n := 0, 0
		for _, o := range t.Orders {
			if o.CustomerRating != models.RatingUnresolved {
				sum += o.CustomerRating
				n++
			}
		}
		if n > 0 {
			s.AvgRating = fmt.Sprintf("%.1f", float64(sum)/float64(n))
		}
	}
	return s
}

// sumByDate groups total_amount by order date in ascending date order.
// Rows without a valid date are excluded from date-keyed groupings.
func sumByDate(t *dataset.Table) []models.DatePoint {
	if !t.HasColumn(dataset.ColOrderDate) || !t.HasColumn(dataset.ColTotalAmount) {
		return nil
	}

	sums := make(map[string]float64)
	for _, o := range t.Orders {
		if !o.HasDate() {
			continue
		}
		sums[o.OrderDate.Format("2006-01-02")] += o.TotalAmount
	}
	return sortedDatePoints(sums)
}

func avgByDate(t *dataset.Table) []models.DatePoint {
	if !t.HasColumn(dataset.ColOrderDate) || !t.HasColumn(dataset.ColTotalAmount) {
		return nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, o := range t.Orders {
		if !o.HasDate() {
			continue
		}
		key := o.OrderDate.Format("2006-01-02")
		sums[key] += o.TotalAmount
		counts[key]++
	}
	for key := range sums {
		sums[key] /= float64(counts[key])
	}
	return sortedDatePoints(sums)
}

func sortedDatePoints(sums map[string]float64) []models.DatePoint {
	out := make([]models.DatePoint, 0, len(sums))
	for date, total := range sums {
		out = append(out, models.DatePoint{Date: date, Total: total})
	}
	slices.SortFunc(out, func(a, b models.DatePoint) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

func sumByKey(t *dataset.Table, column string, key func(models.Order) string) []models.KeyTotal {
	if !t.HasColumn(column) || !t.HasColumn(dataset.ColTotalAmount) {
		return nil
	}

	sums := make(map[string]float64)
	for _, o := range t.Orders {
		sums[key(o)] += o.TotalAmount
	}

	out := make([]models.KeyTotal, 0, len(sums))
	for k, total := range sums {
		out = append(out, models.KeyTotal{Key: k, Total: total})
	}
	slices.SortFunc(out, func(a, b models.KeyTotal) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

func sumByCategoryMonth(t *dataset.Table) []models.CategoryPeriodSales {
	if !t.HasColumn(dataset.ColYear) || !t.HasColumn(dataset.ColMonth) ||
		!t.HasColumn(dataset.ColCategory) || !t.HasColumn(dataset.ColTotalAmount) {
		return nil
	}

	type bucket struct {
		year, month int
		category    string
	}
	sums := make(map[bucket]float64)
	for _, o := range t.Orders {
		if !o.HasDate() {
			continue
		}
		sums[bucket{o.Year, o.Month, o.Category}] += o.TotalAmount
	}

	out := make([]models.CategoryPeriodSales, 0, len(sums))
	for b, total := range sums {
		out = append(out, models.CategoryPeriodSales{
			Year:     b.year,
			Month:    b.month,
			Category: b.category,
			Period:   MonthPeriod(b.year, b.month),
			Total:    total,
		})
	}
	slices.SortFunc(out, func(a, b models.CategoryPeriodSales) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		if a.Month != b.Month {
			return a.Month - b.Month
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

func sumByCategoryQuarter(t *dataset.Table) []models.CategoryPeriodSales {
	if !t.HasColumn(dataset.ColYear) || !t.HasColumn(dataset.ColQuarter) ||
		!t.HasColumn(dataset.ColCategory) || !t.HasColumn(dataset.ColTotalAmount) {
		return nil
	}

	type bucket struct {
		year, quarter int
		category      string
	}
	sums := make(map[bucket]float64)
	for _, o := range t.Orders {
		if !o.HasDate() {
			continue
		}
		sums[bucket{o.Year, o.Quarter, o.Category}] += o.TotalAmount
	}

	out := make([]models.CategoryPeriodSales, 0, len(sums))
	for b, total := range sums {
		out = append(out, models.CategoryPeriodSales{
			Year:     b.year,
			Quarter:  b.quarter,
			Category: b.category,
			Period:   QuarterPeriod(b.year, b.quarter),
			Total:    total,
		})
	}
	slices.SortFunc(out, func(a, b models.CategoryPeriodSales) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		if a.Quarter != b.Quarter {
			return a.Quarter - b.Quarter
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// countByPayment counts orders per payment method, most frequent first,
// ties stable by first encounter.
func countByPayment(t *dataset.Table) []models.PaymentCount {
	if !t.HasColumn(dataset.ColPaymentMethod) {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, o := range t.Orders {
		if counts[o.PaymentMethod] == 0 {
			order = append(order, o.PaymentMethod)
		}
		counts[o.PaymentMethod]++
	}

	out := make([]models.PaymentCount, 0, len(order))
	for _, method := range order {
		out = append(out, models.PaymentCount{PaymentMethod: method, Count: counts[method]})
	}
	slices.SortStableFunc(out, func(a, b models.PaymentCount) int {
		return b.Count - a.Count
	})
	return out
}

// TopProductsOf sums total_amount per product name over the given rows,
// descending, truncated to the top 10. Ties keep first-encounter order.
// Shared between the precomputed aggregates and the filter engine.
func TopProductsOf(orders []models.Order, hasProductName bool) []models.ProductSales {
	if !hasProductName {
		return nil
	}

	sums := make(map[string]float64)
	var order []string
	for _, o := range orders {
		if _, seen := sums[o.ProductName]; !seen {
			order = append(order, o.ProductName)
		}
		sums[o.ProductName] += o.TotalAmount
	}

	out := make([]models.ProductSales, 0, len(order))
	for _, name := range order {
		out = append(out, models.ProductSales{ProductName: name, Total: sums[name]})
	}
	slices.SortStableFunc(out, func(a, b models.ProductSales) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		default:
			return 0
		}
	})
	if len(out) > topProductLimit {
		out = out[:topProductLimit]
	}
	return out
}

func avgRatingByRegion(t *dataset.Table) []models.RegionRating {
	if !t.HasColumn(dataset.ColCustomerRating) || !t.HasColumn(dataset.ColCustomerRegion) {
		return nil
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, o := range t.Orders {
		if o.CustomerRating == models.RatingUnresolved {
			continue
		}
		sums[o.CustomerRegion] += o.CustomerRating
		counts[o.CustomerRegion]++
	}

	out := make([]models.RegionRating, 0, len(sums))
	for region, sum := range sums {
		out = append(out, models.RegionRating{
			Region:    region,
			AvgRating: float64(sum) / float64(counts[region]),
		})
	}
	slices.SortFunc(out, func(a, b models.RegionRating) int {
		return strings.Compare(a.Region, b.Region)
	})
	return out
}

func ratingDistribution(t *dataset.Table) []models.RatingCount {
	if !t.HasColumn(dataset.ColCustomerRating) {
		return nil
	}

	counts := make(map[int]int)
	for _, o := range t.Orders {
		if o.CustomerRating != models.RatingUnresolved {
			counts[o.CustomerRating]++
		}
	}

	out := make([]models.RatingCount, 0, len(counts))
	for rating, n := range counts {
		out = append(out, models.RatingCount{Rating: rating, Count: n})
	}
	slices.SortFunc(out, func(a, b models.RatingCount) int {
		return a.Rating - b.Rating
	})
	return out
}

// MonthPeriod labels a (year, month) bucket the way the charts expect,
// without zero padding: "2024-3".
func MonthPeriod(year, month int) string {
	return fmt.Sprintf("%d-%d", year, month)
}

// QuarterPeriod labels a (year, quarter) bucket: "Q1 2024".
func QuarterPeriod(year, quarter int) string {
	return fmt.Sprintf("Q%d %d", quarter, year)
}

// FormatCurrency renders an amount as a display string with thousands
// separators, e.g. "SAR 1,234,567" or "SAR 1,234.56".
func FormatCurrency(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return "SAR " + out
}

func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
