package server

import (
	"log/slog"
	"net/http"

	"salesdash/internal/handlers"
	"salesdash/internal/services"
)

type Server struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	exportHandlers *handlers.ExportHandlers
}

// TemplateHandlers carries page handlers wired up in main, where the
// template data is assembled.
type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, filters *services.FilterService, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(analytics, filters, logger),
		sseHandlers:    handlers.NewSSEHandlers(analytics, filters, logger),
		exportHandlers: handlers.NewExportHandlers(filters, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard page
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/sales-over-time", s.apiHandlers.HandleSalesOverTime)
	s.mux.HandleFunc("GET /api/sales-by-region", s.apiHandlers.HandleSalesByRegion)
	s.mux.HandleFunc("GET /api/sales-by-category", s.apiHandlers.HandleSalesByCategory)
	s.mux.HandleFunc("GET /api/sales-by-category-month", s.apiHandlers.HandleSalesByCategoryMonth)
	s.mux.HandleFunc("GET /api/sales-by-category-quarter", s.apiHandlers.HandleSalesByCategoryQuarter)
	s.mux.HandleFunc("GET /api/orders-by-payment", s.apiHandlers.HandleOrdersByPayment)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/avg-rating-region", s.apiHandlers.HandleAvgRatingByRegion)
	s.mux.HandleFunc("GET /api/avg-order-by-date", s.apiHandlers.HandleAvgOrderByDate)
	s.mux.HandleFunc("GET /api/rating-distribution", s.apiHandlers.HandleRatingDistribution)
	s.mux.HandleFunc("GET /api/filter", s.apiHandlers.HandleFilter)

	// Datastar SSE
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /sse/filter", s.sseHandlers.HandleFilter)

	// Export
	s.mux.HandleFunc("GET /export/csv", s.exportHandlers.HandleCSV)
	s.mux.HandleFunc("GET /export/xlsx", s.exportHandlers.HandleXLSX)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
