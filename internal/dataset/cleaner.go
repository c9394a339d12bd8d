package dataset

import (
	"time"

	"salesdash/internal/models"
)

const (
	UnknownRegion  = "Unknown Region"
	UnknownPayment = "Unknown"
)

// Layouts tried when parsing order dates, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// Clean runs the full cleaning pipeline in place and returns the table.
// Each step is skipped when its source columns are absent. The pipeline
// is idempotent: a second run recomputes every derived value from the
// same raw inputs and lands on the same result.
func Clean(t *Table) *Table {
	imputeRatings(t)
	imputeRegions(t)
	deriveCalendar(t)
	fillResiduals(t)
	return t
}

// imputeRatings fills missing ratings with the most frequent rating
// observed for the same product. Ties break toward the value seen
// first in row order. A product with no observed ratings at all stays
// unresolved; there is deliberately no global fallback.
func imputeRatings(t *Table) {
	if !t.HasColumn(ColCustomerRating) || !t.HasColumn(ColProductID) {
		return
	}

	counts := make(map[string]map[int]int)
	order := make(map[string][]int)
	for _, o := range t.Orders {
		if o.CustomerRating == models.RatingUnresolved {
			continue
		}
		if counts[o.ProductID] == nil {
			counts[o.ProductID] = make(map[int]int)
		}
		if counts[o.ProductID][o.CustomerRating] == 0 {
			order[o.ProductID] = append(order[o.ProductID], o.CustomerRating)
		}
		counts[o.ProductID][o.CustomerRating]++
	}

	modes := make(map[string]int, len(counts))
	for pid, seen := range order {
		best, bestN := models.RatingUnresolved, 0
		for _, r := range seen {
			if counts[pid][r] > bestN {
				best, bestN = r, counts[pid][r]
			}
		}
		modes[pid] = best
	}

	for i := range t.Orders {
		o := &t.Orders[i]
		if o.CustomerRating == models.RatingUnresolved {
			o.CustomerRating = modes[o.ProductID]
		}
	}
}

// imputeRegions fills missing regions with the most frequent region
// observed for the same customer, same tie-break as imputeRatings.
func imputeRegions(t *Table) {
	if !t.HasColumn(ColCustomerRegion) || !t.HasColumn(ColCustomerID) {
		return
	}

	counts := make(map[string]map[string]int)
	order := make(map[string][]string)
	for _, o := range t.Orders {
		if o.CustomerRegion == "" {
			continue
		}
		if counts[o.CustomerID] == nil {
			counts[o.CustomerID] = make(map[string]int)
		}
		if counts[o.CustomerID][o.CustomerRegion] == 0 {
			order[o.CustomerID] = append(order[o.CustomerID], o.CustomerRegion)
		}
		counts[o.CustomerID][o.CustomerRegion]++
	}

	modes := make(map[string]string, len(counts))
	for cid, seen := range order {
		best, bestN := "", 0
		for _, region := range seen {
			if counts[cid][region] > bestN {
				best, bestN = region, counts[cid][region]
			}
		}
		modes[cid] = best
	}

	for i := range t.Orders {
		o := &t.Orders[i]
		if o.CustomerRegion == "" {
			o.CustomerRegion = modes[o.CustomerID]
		}
	}
}

// deriveCalendar parses order dates and derives year, month, month name
// and quarter. Unparseable dates stay as the zero time and leave the
// calendar fields zeroed; the row itself is kept.
func deriveCalendar(t *Table) {
	if !t.HasColumn(ColOrderDate) {
		return
	}

	for i := range t.Orders {
		o := &t.Orders[i]
		o.OrderDate = parseDate(o.OrderDateRaw)
		if !o.HasDate() {
			o.Year, o.Month, o.MonthName, o.Quarter = 0, 0, "", 0
			continue
		}
		o.Year = o.OrderDate.Year()
		o.Month = int(o.OrderDate.Month())
		o.MonthName = o.OrderDate.Month().String()
		o.Quarter = (o.Month-1)/3 + 1
	}

	t.addColumn(ColYear)
	t.addColumn(ColMonth)
	t.addColumn(ColMonthName)
	t.addColumn(ColQuarter)
}

// fillResiduals replaces whatever the imputation passes could not fill
// with explicit sentinels, so regions and payment methods are never
// blank after cleaning.
func fillResiduals(t *Table) {
	for i := range t.Orders {
		o := &t.Orders[i]
		if t.HasColumn(ColCustomerRegion) && o.CustomerRegion == "" {
			o.CustomerRegion = UnknownRegion
		}
		if t.HasColumn(ColPaymentMethod) && o.PaymentMethod == "" {
			o.PaymentMethod = UnknownPayment
		}
	}
}

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d
		}
	}
	return time.Time{}
}
