package services

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"salesdash/internal/dataset"
	"salesdash/internal/models"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestApplyFilter_WholeRangeReturnsAllRows(t *testing.T) {
	table := newTestTable(t, sampleOrders())

	res := ApplyFilter(table, FilterSpec{Start: date(2020, 1, 1), End: date(2030, 12, 31)})
	if res.RowCount != table.Len() {
		t.Errorf("whole-dataset range should return all rows: got %d, want %d", res.RowCount, table.Len())
	}
}

func TestApplyFilter_RangeBeforeMinReturnsNothing(t *testing.T) {
	table := newTestTable(t, sampleOrders())

	res := ApplyFilter(table, FilterSpec{Start: date(2000, 1, 1), End: date(2000, 12, 31)})
	if res.RowCount != 0 {
		t.Errorf("range before the dataset should return zero rows, got %d", res.RowCount)
	}
	if len(res.SalesGrowth) != 0 || len(res.TopProducts) != 0 {
		t.Error("empty filter result should carry empty aggregates")
	}
}

func TestApplyFilter_DayOfMonthIgnored(t *testing.T) {
	table := newTestTable(t, []models.Order{
		{OrderDateRaw: "2024-01-31", TotalAmount: 10},
	})

	// The range ends on the 1st, but (year, month) comparison admits
	// the row from the 31st.
	res := ApplyFilter(table, FilterSpec{Start: date(2024, 1, 15), End: date(2024, 1, 1)})
	if res.RowCount != 1 {
		t.Errorf("month-granular range should match the row, got %d rows", res.RowCount)
	}
}

func TestApplyFilter_RegionPredicate(t *testing.T) {
	table := newTestTable(t, sampleOrders())

	res := ApplyFilter(table, FilterSpec{Regions: []string{"RegionA"}})
	if res.RowCount != 1 {
		t.Fatalf("expected exactly 1 row, got %d", res.RowCount)
	}
	if res.Rows[0].CustomerRegion != "RegionA" {
		t.Errorf("wrong row matched: %+v", res.Rows[0])
	}

	// sales_by_category over the filtered set is {Electronics: 100}.
	categories := make(map[string]float64)
	for _, o := range res.Rows {
		categories[o.Category] += o.TotalAmount
	}
	want := map[string]float64{"Electronics": 100}
	if diff := cmp.Diff(want, categories); diff != "" {
		t.Errorf("filtered category totals mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFilter_PredicatesAreANDed(t *testing.T) {
	table := newTestTable(t, sampleOrders())

	res := ApplyFilter(table, FilterSpec{
		Start:      date(2024, 1, 1),
		End:        date(2024, 12, 31),
		Regions:    []string{"RegionA"},
		Categories: []string{"Clothing"},
	})
	if res.RowCount != 0 {
		t.Errorf("RegionA has no Clothing orders; got %d rows", res.RowCount)
	}
}

func TestApplyFilter_InvalidDatesExcludedFromActiveRange(t *testing.T) {
	table := newTestTable(t, []models.Order{
		{OrderDateRaw: "2024-01-10", TotalAmount: 10},
		{OrderDateRaw: "not-a-date", TotalAmount: 20},
	})

	res := ApplyFilter(table, FilterSpec{Start: date(2020, 1, 1), End: date(2030, 1, 1)})
	if res.RowCount != 1 {
		t.Errorf("invalid-date rows must not match an active range, got %d", res.RowCount)
	}

	// Without a date range they pass through.
	res = ApplyFilter(table, FilterSpec{})
	if res.RowCount != 2 {
		t.Errorf("no date range imposes no constraint, got %d", res.RowCount)
	}
}

func TestApplyFilter_DateFilterDisabledWithoutCalendarColumns(t *testing.T) {
	// Uncleaned table: no derived year/month columns.
	table := dataset.NewTable([]models.Order{
		{OrderDateRaw: "2024-01-10", TotalAmount: 10},
	}, dataset.ColOrderDate, dataset.ColTotalAmount)

	res := ApplyFilter(table, FilterSpec{Start: date(2000, 1, 1), End: date(2000, 2, 1)})
	if res.RowCount != 1 {
		t.Errorf("date filtering must be silently disabled without year/month, got %d rows", res.RowCount)
	}
}

func TestSalesGrowth_MoM(t *testing.T) {
	table := newTestTable(t, []models.Order{
		{OrderDateRaw: "2024-01-10", TotalAmount: 100},
		{OrderDateRaw: "2024-02-15", TotalAmount: 150},
	})

	res := ApplyFilter(table, FilterSpec{})
	if len(res.SalesGrowth) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(res.SalesGrowth))
	}

	first, second := res.SalesGrowth[0], res.SalesGrowth[1]
	if first.Period != "2024-1" || second.Period != "2024-2" {
		t.Errorf("unexpected period labels: %q, %q", first.Period, second.Period)
	}
	if first.MoM != nil {
		t.Errorf("first period MoM must be nil, got %v", *first.MoM)
	}
	if second.MoM == nil || *second.MoM != 50.0 {
		t.Errorf("expected MoM 50.0 for 2024-2, got %v", second.MoM)
	}
}

func TestSalesGrowth_YoYOffset(t *testing.T) {
	var orders []models.Order
	for m := 1; m <= 12; m++ {
		orders = append(orders, models.Order{
			OrderDateRaw: fmt.Sprintf("2023-%02d-01", m),
			TotalAmount:  100,
		})
	}
	orders = append(orders, models.Order{OrderDateRaw: "2024-01-01", TotalAmount: 120})

	table := newTestTable(t, orders)
	res := ApplyFilter(table, FilterSpec{})
	if len(res.SalesGrowth) != 13 {
		t.Fatalf("expected 13 periods, got %d", len(res.SalesGrowth))
	}

	for i := 0; i < 12; i++ {
		if res.SalesGrowth[i].YoY != nil {
			t.Errorf("period %d: YoY must be nil within the first 12 periods", i)
		}
	}
	last := res.SalesGrowth[12]
	if last.YoY == nil || *last.YoY != 20.0 {
		t.Errorf("expected YoY 20.0 for 2024-1, got %v", last.YoY)
	}
}

func TestSalesGrowth_ZeroBaseYieldsNil(t *testing.T) {
	table := newTestTable(t, []models.Order{
		{OrderDateRaw: "2024-01-10", TotalAmount: 0},
		{OrderDateRaw: "2024-02-15", TotalAmount: 150},
	})

	res := ApplyFilter(table, FilterSpec{})
	if got := res.SalesGrowth[1].MoM; got != nil {
		t.Errorf("percent change over a zero base must be nil, got %v", *got)
	}
}

func TestApplyFilter_TopProductsScopedToSubset(t *testing.T) {
	table := newTestTable(t, []models.Order{
		{OrderDateRaw: "2024-01-01", CustomerRegion: "RegionA", ProductName: "Laptop", TotalAmount: 100},
		{OrderDateRaw: "2024-01-02", CustomerRegion: "RegionB", ProductName: "Phone", TotalAmount: 500},
	})

	res := ApplyFilter(table, FilterSpec{Regions: []string{"RegionA"}})
	if len(res.TopProducts) != 1 || res.TopProducts[0].ProductName != "Laptop" {
		t.Errorf("top products must be scoped to the filtered subset, got %+v", res.TopProducts)
	}
}

func TestApplyFilter_TableRowsFormatting(t *testing.T) {
	table := newTestTable(t, []models.Order{
		{OrderDateRaw: "2024-03-07", CustomerID: "C1", ProductName: "Laptop", Category: "Electronics", CustomerRegion: "RegionA", TotalAmount: 99.9, CustomerRating: 4, ProductID: "P1"},
	})

	res := ApplyFilter(table, FilterSpec{})
	if len(res.TableRows) != res.RowCount {
		t.Fatalf("table rows must preserve row count: %d vs %d", len(res.TableRows), res.RowCount)
	}
	row := res.TableRows[0]
	if row.OrderDate != "2024-03-07" {
		t.Errorf("order_date must be YYYY-MM-DD, got %q", row.OrderDate)
	}
}

func TestApplyFilter_DoesNotMutateBaseTable(t *testing.T) {
	table := newTestTable(t, sampleOrders())
	before := make([]models.Order, len(table.Orders))
	copy(before, table.Orders)

	ApplyFilter(table, FilterSpec{Regions: []string{"RegionA"}})

	if diff := cmp.Diff(before, table.Orders); diff != "" {
		t.Errorf("base table mutated by filtering (-before +after):\n%s", diff)
	}
}

func TestFilterService_RetainsLastResult(t *testing.T) {
	a := NewAnalytics()
	a.SetTable(newTestTable(t, sampleOrders()))
	fs := NewFilterService(a, slog.Default())

	if fs.LastResult() != nil {
		t.Fatal("LastResult() before any filter must be nil")
	}

	res := fs.Apply(FilterSpec{Regions: []string{"RegionA"}})
	if got := fs.LastResult(); got != res {
		t.Error("LastResult() should return the most recent result")
	}
}
