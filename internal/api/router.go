// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insight-service/internal/common/logger"
	"insight-service/internal/dispatch"
)

// NewRouter builds the HTTP router with all middleware and routes.
func NewRouter(h *Handler, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Metrics first so it observes every request, including rejected ones.
	r.Use(Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/action-codes", h.ActionCodes)
	r.Get("/preview-action/{action_code}", h.PreviewAction)
	r.Post("/card-action", h.CardAction)

	// One stable URL per dashboard card.
	r.Group(func(r chi.Router) {
		r.Post("/pricing/analyze", h.action(dispatch.CodePricingAnalyze))
		r.Post("/pricing/apply", h.action(dispatch.CodePricingApply))
		r.Post("/market/analyze", h.action(dispatch.CodeMarketAnalyze))
		r.Post("/review/analyze", h.action(dispatch.CodeReviewAnalyze))
		r.Post("/booking/analyze", h.action(dispatch.CodeBookingAnalyze))
		r.Post("/booking/discount", h.action(dispatch.CodeBookingDiscount))
	})

	return r
}
