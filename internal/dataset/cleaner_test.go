package dataset

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"salesdash/internal/models"
)

func TestClean_RatingImputation(t *testing.T) {
	table := NewTable([]models.Order{
		{ProductID: "P1", CustomerRating: 5},
		{ProductID: "P1", CustomerRating: 4},
		{ProductID: "P1", CustomerRating: 4},
		{ProductID: "P1"}, // missing
		{ProductID: "P2"}, // product with no ratings at all
	}, ColProductID, ColCustomerRating)

	Clean(table)

	if got := table.Orders[3].CustomerRating; got != 4 {
		t.Errorf("missing rating should take the product mode 4, got %d", got)
	}
	if got := table.Orders[4].CustomerRating; got != models.RatingUnresolved {
		t.Errorf("product with no ratings must stay unresolved, got %d", got)
	}
}

func TestClean_RatingModeTieBreak(t *testing.T) {
	// 5 and 4 both occur twice; the first value encountered wins.
	table := NewTable([]models.Order{
		{ProductID: "P1", CustomerRating: 5},
		{ProductID: "P1", CustomerRating: 4},
		{ProductID: "P1", CustomerRating: 5},
		{ProductID: "P1", CustomerRating: 4},
		{ProductID: "P1"},
	}, ColProductID, ColCustomerRating)

	Clean(table)

	if got := table.Orders[4].CustomerRating; got != 5 {
		t.Errorf("tie should break to first-encountered value 5, got %d", got)
	}
}

func TestClean_RegionImputation(t *testing.T) {
	table := NewTable([]models.Order{
		{CustomerID: "C1", CustomerRegion: "RegionA"},
		{CustomerID: "C1", CustomerRegion: "RegionA"},
		{CustomerID: "C1"},
		{CustomerID: "C2"}, // no region anywhere for C2
	}, ColCustomerID, ColCustomerRegion)

	Clean(table)

	if got := table.Orders[2].CustomerRegion; got != "RegionA" {
		t.Errorf("missing region should take the customer mode, got %q", got)
	}
	if got := table.Orders[3].CustomerRegion; got != UnknownRegion {
		t.Errorf("unresolvable region should fall back to sentinel, got %q", got)
	}
}

func TestClean_CalendarDerivation(t *testing.T) {
	table := NewTable([]models.Order{
		{OrderDateRaw: "2024-05-17"},
		{OrderDateRaw: "garbage"},
		{OrderDateRaw: ""},
	}, ColOrderDate)

	Clean(table)

	valid := table.Orders[0]
	if !valid.HasDate() {
		t.Fatal("valid date should parse")
	}
	want := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	if !valid.OrderDate.Equal(want) {
		t.Errorf("expected date %v, got %v", want, valid.OrderDate)
	}
	if valid.Year != 2024 || valid.Month != 5 || valid.MonthName != "May" || valid.Quarter != 2 {
		t.Errorf("unexpected calendar fields: %+v", valid)
	}

	for _, i := range []int{1, 2} {
		o := table.Orders[i]
		if o.HasDate() {
			t.Errorf("row %d: invalid date should stay null, got %v", i, o.OrderDate)
		}
		if o.Year != 0 || o.Month != 0 || o.MonthName != "" || o.Quarter != 0 {
			t.Errorf("row %d: calendar fields should stay zero: %+v", i, o)
		}
	}

	for _, col := range []string{ColYear, ColMonth, ColMonthName, ColQuarter} {
		if !table.HasColumn(col) {
			t.Errorf("derived column %q should be present after cleaning", col)
		}
	}
}

func TestClean_QuarterBoundaries(t *testing.T) {
	tests := []struct {
		raw     string
		quarter int
	}{
		{"2024-01-01", 1},
		{"2024-03-31", 1},
		{"2024-04-01", 2},
		{"2024-09-30", 3},
		{"2024-12-25", 4},
	}

	for _, tt := range tests {
		table := NewTable([]models.Order{{OrderDateRaw: tt.raw}}, ColOrderDate)
		Clean(table)
		if got := table.Orders[0].Quarter; got != tt.quarter {
			t.Errorf("%s: expected quarter %d, got %d", tt.raw, tt.quarter, got)
		}
	}
}

func TestClean_ResidualFill(t *testing.T) {
	table := NewTable([]models.Order{
		{CustomerID: "C1"},
	}, ColCustomerID, ColCustomerRegion, ColPaymentMethod)

	Clean(table)

	o := table.Orders[0]
	if o.CustomerRegion != UnknownRegion {
		t.Errorf("expected region %q, got %q", UnknownRegion, o.CustomerRegion)
	}
	if o.PaymentMethod != UnknownPayment {
		t.Errorf("expected payment %q, got %q", UnknownPayment, o.PaymentMethod)
	}
}

func TestClean_SkipsAbsentColumns(t *testing.T) {
	table := NewTable([]models.Order{
		{OrderID: "O1"},
	}, ColOrderID)

	Clean(table)

	o := table.Orders[0]
	if o.CustomerRegion != "" || o.PaymentMethod != "" {
		t.Errorf("absent columns must not be fabricated: %+v", o)
	}
	if table.HasColumn(ColYear) {
		t.Error("calendar columns must not appear without order_date")
	}
}

func TestClean_NoMissingValuesAfterClean(t *testing.T) {
	table := NewTable([]models.Order{
		{OrderDateRaw: "2024-01-01", CustomerID: "C1", ProductID: "P1", CustomerRegion: "RegionA", CustomerRating: 5, PaymentMethod: "Cash"},
		{OrderDateRaw: "2024-01-02", CustomerID: "C1", ProductID: "P1"},
		{OrderDateRaw: "2024-01-03", CustomerID: "C2", ProductID: "P2"},
	}, AllColumns()...)

	Clean(table)

	for i, o := range table.Orders {
		if o.CustomerRegion == "" {
			t.Errorf("row %d: customer_region still blank", i)
		}
		if o.PaymentMethod == "" {
			t.Errorf("row %d: payment_method still blank", i)
		}
	}
	// P2 has no observed ratings; its row is the documented unresolved case.
	if table.Orders[2].CustomerRating != models.RatingUnresolved {
		t.Errorf("expected row 2 rating unresolved, got %d", table.Orders[2].CustomerRating)
	}
}

func TestClean_Idempotent(t *testing.T) {
	build := func() *Table {
		return NewTable([]models.Order{
			{OrderID: "O1", OrderDateRaw: "2024-01-15", CustomerID: "C1", ProductID: "P1", CustomerRegion: "RegionA", CustomerRating: 5, PaymentMethod: "Cash", TotalAmount: 100},
			{OrderID: "O2", OrderDateRaw: "2024-02-20", CustomerID: "C1", ProductID: "P1", TotalAmount: 200},
			{OrderID: "O3", OrderDateRaw: "bad-date", CustomerID: "C2", ProductID: "P2", TotalAmount: 50},
		}, AllColumns()...)
	}

	once := Clean(build())
	twice := Clean(Clean(build()))

	if diff := cmp.Diff(once.Orders, twice.Orders); diff != "" {
		t.Errorf("clean(clean(t)) differs from clean(t) (-once +twice):\n%s", diff)
	}
}
