package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"salesdash/internal/dataset"
	"salesdash/internal/models"
	"salesdash/internal/services"
)

func testOrders() []models.Order {
	return []models.Order{
		{OrderID: "O1", OrderDateRaw: "2024-01-01", CustomerID: "C1", CustomerRegion: "RegionA", ProductID: "P1", ProductName: "Laptop", Category: "Electronics", TotalAmount: 100, CustomerRating: 5, PaymentMethod: "Credit Card"},
		{OrderID: "O2", OrderDateRaw: "2024-02-01", CustomerID: "C2", CustomerRegion: "RegionB", ProductID: "P2", ProductName: "Jacket", Category: "Clothing", TotalAmount: 200, CustomerRating: 3, PaymentMethod: "Cash"},
	}
}

func createTestServices(t *testing.T) (*services.Analytics, *services.FilterService) {
	t.Helper()
	table := dataset.Clean(dataset.NewTable(testOrders(), dataset.AllColumns()...))

	analytics := services.NewAnalytics()
	analytics.SetTable(table)
	return analytics, services.NewFilterService(analytics, slog.Default())
}

func decodeSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}
	return response
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	w := httptest.NewRecorder()
	h.HandleSummary(w, req)

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", response["data"])
	}
	if data["total_sales"] != "SAR 300" {
		t.Errorf("expected total_sales 'SAR 300', got %v", data["total_sales"])
	}
	if data["total_orders"] != "2" {
		t.Errorf("expected total_orders '2', got %v", data["total_orders"])
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control header, got %q", cc)
	}
}

func TestAPIHandlers_HandleTopProducts(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/top-products", nil)
	w := httptest.NewRecorder()
	h.HandleTopProducts(w, req)

	response := decodeSuccess(t, w)
	data, ok := response["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 products, got %v", response["data"])
	}
	first, _ := data[0].(map[string]any)
	if first["product_name"] != "Jacket" {
		t.Errorf("expected highest-grossing product first, got %v", first["product_name"])
	}
}

func TestAPIHandlers_HandleFilter(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/filter?regions=RegionA", nil)
	w := httptest.NewRecorder()
	h.HandleFilter(w, req)

	response := decodeSuccess(t, w)
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", response["data"])
	}
	if got := data["row_count"].(float64); got != 1 {
		t.Errorf("expected row_count 1, got %v", got)
	}
	rows, _ := data["table_rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 table row, got %d", len(rows))
	}
	row, _ := rows[0].(map[string]any)
	if row["order_date"] != "2024-01-01" {
		t.Errorf("expected order_date '2024-01-01', got %v", row["order_date"])
	}
}

func TestAPIHandlers_HandleFilterDateRange(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/filter?start_date=2024-02-01&end_date=2024-02-28", nil)
	w := httptest.NewRecorder()
	h.HandleFilter(w, req)

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)
	if got := data["row_count"].(float64); got != 1 {
		t.Errorf("expected 1 row in February, got %v", got)
	}
}

func TestAPIHandlers_HandleFilterValidation(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	tests := []struct {
		name  string
		query string
	}{
		{"start without end", "?start_date=2024-01-01"},
		{"malformed start", "?start_date=nope&end_date=2024-02-01"},
		{"malformed end", "?start_date=2024-01-01&end_date=nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/filter"+tt.query, nil)
			w := httptest.NewRecorder()
			h.HandleFilter(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", data["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	analytics, filters := createTestServices(t)
	h := NewAPIHandlers(analytics, filters, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	h.HandleStats(w, req)

	response := decodeSuccess(t, w)
	data := response["data"].(map[string]any)
	if got := data["record_count"].(float64); got != 2 {
		t.Errorf("expected record_count 2, got %v", got)
	}
}

func TestSplitMulti(t *testing.T) {
	got := splitMulti([]string{"RegionA,RegionB", " RegionC ", ""})
	want := []string{"RegionA", "RegionB", "RegionC"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
