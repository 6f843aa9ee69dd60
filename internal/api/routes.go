package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zapponejosh/ordinarium/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health
//	GET  /api/v1/season?date=YYYY-MM-DD
//	GET  /api/v1/observance?date=YYYY-MM-DD&handle=
//	GET  /api/v1/observance/options?date=YYYY-MM-DD
//	GET  /api/v1/calendar/{year}        almanac JSON
//	GET  /api/v1/calendar/{year}.ics    iCalendar feed
//	POST /api/v1/admin/reload           (X-API-Key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		middleware.RequestID,
		middleware.RealIP,
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/season", handlers.GetSeason)
		r.Get("/observance", handlers.GetObservance)
		r.Get("/observance/options", handlers.GetObservanceOptions)
		r.Get("/calendar/{year}", handlers.GetCalendar)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.With(AuthMiddleware(cfg, logger)).Post("/admin/reload", handlers.ReloadTables)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, CodeNotFound, "Route not found")
	})

	return r
}
