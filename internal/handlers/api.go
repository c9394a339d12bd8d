package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"salesdash/internal/errors"
	"salesdash/internal/observability"
	"salesdash/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *services.Analytics
	filters   *services.FilterService
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, filters *services.FilterService, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		filters:   filters,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.Summary())
}

func (h *APIHandlers) HandleSalesOverTime(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.SalesOverTime())
}

func (h *APIHandlers) HandleSalesByRegion(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.SalesByRegion())
}

func (h *APIHandlers) HandleSalesByCategory(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.SalesByCategory())
}

func (h *APIHandlers) HandleSalesByCategoryMonth(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.SalesByCategoryMonth())
}

func (h *APIHandlers) HandleSalesByCategoryQuarter(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.SalesByCategoryQuarter())
}

func (h *APIHandlers) HandleOrdersByPayment(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.OrdersByPayment())
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.TopProducts())
}

func (h *APIHandlers) HandleAvgRatingByRegion(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.AvgRatingByRegion())
}

func (h *APIHandlers) HandleAvgOrderByDate(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.AvgOrderByDate())
}

func (h *APIHandlers) HandleRatingDistribution(w http.ResponseWriter, r *http.Request) {
	writeCached(w, h.analytics.RatingDistribution())
}

// HandleFilter applies the filter spec from the query string and
// returns the derived view: growth series, scoped top products and the
// display table rows.
func (h *APIHandlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccess(w, h.filters.Apply(spec))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func writeCached(w http.ResponseWriter, data any) {
	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

// parseFilterSpec reads start_date, end_date (YYYY-MM-DD), regions and
// categories (comma-separated, repeatable) from the query string. Both
// date bounds must come together; anything absent is no constraint.
func parseFilterSpec(r *http.Request) (services.FilterSpec, error) {
	q := r.URL.Query()
	var spec services.FilterSpec

	startRaw, endRaw := q.Get("start_date"), q.Get("end_date")
	if (startRaw == "") != (endRaw == "") {
		return spec, errors.Validation("start_date and end_date must be provided together")
	}
	if startRaw != "" {
		start, err := time.Parse("2006-01-02", startRaw)
		if err != nil {
			return spec, errors.BadRequestWrap(err, "start_date must be YYYY-MM-DD")
		}
		end, err := time.Parse("2006-01-02", endRaw)
		if err != nil {
			return spec, errors.BadRequestWrap(err, "end_date must be YYYY-MM-DD")
		}
		spec.Start, spec.End = start, end
	}

	spec.Regions = splitMulti(q["regions"])
	spec.Categories = splitMulti(q["categories"])
	return spec, nil
}

func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
