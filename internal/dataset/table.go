package dataset

import "salesdash/internal/models"

// Known source columns. Derived columns are added by Clean.
const (
	ColOrderID        = "order_id"
	ColOrderDate      = "order_date"
	ColCustomerID     = "customer_id"
	ColCustomerRegion = "customer_region"
	ColProductID      = "product_id"
	ColProductName    = "product_name"
	ColCategory       = "category"
	ColTotalAmount    = "total_amount"
	ColCustomerRating = "customer_rating"
	ColPaymentMethod  = "payment_method"

	ColYear      = "year"
	ColMonth     = "month"
	ColMonthName = "month_name"
	ColQuarter   = "quarter"
)

// Table is the in-memory order dataset. It remembers which columns the
// source file actually carried so that cleaning and aggregation can
// degrade instead of fabricating values for columns that never existed.
// After cleaning it is treated as read-only shared state.
type Table struct {
	Orders      []models.Order
	SkippedRows int

	columns map[string]bool
}

// NewTable builds a table from in-memory orders, declaring the given
// columns present. Used by tests and anywhere data does not come from a
// CSV file.
func NewTable(orders []models.Order, columns ...string) *Table {
	t := &Table{
		Orders:  orders,
		columns: make(map[string]bool, len(columns)),
	}
	for _, c := range columns {
		t.columns[c] = true
	}
	return t
}

// AllColumns lists every known source column, for tests that want a
// fully populated table.
func AllColumns() []string {
	return []string{
		ColOrderID, ColOrderDate, ColCustomerID, ColCustomerRegion,
		ColProductID, ColProductName, ColCategory, ColTotalAmount,
		ColCustomerRating, ColPaymentMethod,
	}
}

func (t *Table) HasColumn(name string) bool {
	return t.columns[name]
}

func (t *Table) addColumn(name string) {
	if t.columns == nil {
		t.columns = make(map[string]bool)
	}
	t.columns[name] = true
}

func (t *Table) Len() int {
	return len(t.Orders)
}
