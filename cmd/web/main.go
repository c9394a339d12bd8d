package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"salesdash/internal/config"
	"salesdash/internal/dataset"
	"salesdash/internal/middleware"
	"salesdash/internal/models"
	"salesdash/internal/observability"
	"salesdash/internal/server"
	"salesdash/internal/services"
	"salesdash/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

// newDashboardHandler renders the page shell with the summary cards and
// the filter options drawn from the precomputed aggregates.
func newDashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		data := templates.DashboardData{
			Summary:    analytics.Summary(),
			Regions:    keysOf(analytics.SalesByRegion()),
			Categories: keysOf(analytics.SalesByCategory()),
		}

		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(data).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func keysOf(totals []models.KeyTotal) []string {
	keys := make([]string, 0, len(totals))
	for _, kt := range totals {
		keys = append(keys, kt.Key)
	}
	return keys
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"csv_file", cfg.Data.CSVFile,
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	defer cancel()

	table, err := dataset.Load(ctx, cfg.Data.CSVFile)
	if err != nil {
		logger.Error("failed to load sales data", "error", err)
		os.Exit(1)
	}
	dataset.Clean(table)

	analytics := services.NewAnalytics()
	analytics.SetTable(table)

	filters := services.NewFilterService(analytics, logger)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(analytics),
	}

	srv := server.NewServer(analytics, filters, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Compression(cfg.Security, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service")
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
