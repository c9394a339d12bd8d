package models

import "time"

// RatingUnresolved marks a rating that could not be imputed because the
// product has no observed ratings at all. Averages skip it.
const RatingUnresolved = 0

type Order struct {
	OrderID        string
	OrderDateRaw   string
	OrderDate      time.Time // zero when OrderDateRaw is unparseable
	CustomerID     string
	CustomerRegion string
	ProductID      string
	ProductName    string
	Category       string
	TotalAmount    float64
	CustomerRating int // 1-5, RatingUnresolved when unknown
	PaymentMethod  string

	// Derived calendar fields, zero-valued until cleaning runs or when
	// the order date is invalid.
	Year      int
	Month     int // 1-12
	MonthName string
	Quarter   int // 1-4
}

// HasDate reports whether the order carries a valid parsed date.
func (o Order) HasDate() bool {
	return !o.OrderDate.IsZero()
}

type Summary struct {
	TotalSales    string `json:"total_sales"`
	TotalOrders   string `json:"total_orders"`
	AvgOrderValue string `json:"avg_order_value"`
	AvgRating     string `json:"avg_rating"`
}

type DatePoint struct {
	Date  string  `json:"order_date"` // YYYY-MM-DD
	Total float64 `json:"total_amount"`
}

type KeyTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total_amount"`
}

type CategoryPeriodSales struct {
	Year     int     `json:"year"`
	Month    int     `json:"month,omitempty"`
	Quarter  int     `json:"quarter,omitempty"`
	Category string  `json:"category"`
	Period   string  `json:"period"`
	Total    float64 `json:"total_amount"`
}

type PaymentCount struct {
	PaymentMethod string `json:"payment_method"`
	Count         int    `json:"count"`
}

type ProductSales struct {
	ProductName string  `json:"product_name"`
	Total       float64 `json:"total_amount"`
}

type RegionRating struct {
	Region    string  `json:"customer_region"`
	AvgRating float64 `json:"avg_rating"`
}

type RatingCount struct {
	Rating int `json:"customer_rating"`
	Count  int `json:"count"`
}

// PeriodSales is one (year, month) bucket of the filtered sales-growth
// series. MoM and YoY are nil for the leading periods and whenever the
// comparison base is zero.
type PeriodSales struct {
	Year   int      `json:"year"`
	Month  int      `json:"month"`
	Period string   `json:"period"`
	Total  float64  `json:"total_amount"`
	MoM    *float64 `json:"mom_change"`
	YoY    *float64 `json:"yoy_change"`
}

// TableRow is one row of the orders table and of the export files,
// restricted to the display column set.
type TableRow struct {
	OrderDate      string  `json:"order_date"` // YYYY-MM-DD, "" when invalid
	CustomerID     string  `json:"customer_id"`
	ProductName    string  `json:"product_name"`
	Category       string  `json:"category"`
	CustomerRegion string  `json:"customer_region"`
	TotalAmount    float64 `json:"total_amount"`
	CustomerRating int     `json:"customer_rating"`
}

// DisplayColumns is the fixed column set shown in the orders table and
// written by the exporters, in order.
var DisplayColumns = []string{
	"order_date",
	"customer_id",
	"product_name",
	"category",
	"customer_region",
	"total_amount",
	"customer_rating",
}
