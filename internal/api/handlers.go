package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/ordinarium/internal/almanac"
	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/config"
	"github.com/zapponejosh/ordinarium/internal/ics"
	"github.com/zapponejosh/ordinarium/internal/logger"
	"github.com/zapponejosh/ordinarium/internal/observance"
)

// Years accepted by the calendar endpoints. The computus is Gregorian.
const (
	minYear = 1583
	maxYear = 9999
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	resolver *observance.Resolver
	health   HealthChecker
	cfg      *config.Config
}

// NewHandlers creates a new Handlers instance. health may be nil when
// tables are not read from a database.
func NewHandlers(resolver *observance.Resolver, health HealthChecker, cfg *config.Config) *Handlers {
	return &Handlers{
		resolver: resolver,
		health:   health,
		cfg:      cfg,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.health != nil {
		if err := h.health.Health(ctx); err != nil {
			logger.Warn(ctx, "health check failed", slog.Any("error", err))
			WriteProblem(w, CodeUnavailable, "Database unhealthy")
			return
		}
	}

	WriteSuccess(w, map[string]string{
		"status": "ok",
	})
}

// seasonResponse is the payload of GET /api/v1/season.
type seasonResponse struct {
	Date   string  `json:"date"`
	Season *string `json:"season"`
}

// GetSeason handles GET /api/v1/season?date=YYYY-MM-DD
func (h *Handlers) GetSeason(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		WriteSuccess(w, nil)
		return
	}

	WriteSuccess(w, seasonResponse{
		Date:   calendar.FormatDate(date),
		Season: seasonName(h.resolver.Season(date)),
	})
}

// observanceResponse is the payload of GET /api/v1/observance.
type observanceResponse struct {
	Date     string                  `json:"date"`
	Title    *string                 `json:"title"`
	Handle   *string                 `json:"handle"`
	Season   *string                 `json:"season"`
	Subcycle *string                 `json:"subcycle"`
	Options  []observance.Observance `json:"options"`
}

// GetObservance handles GET /api/v1/observance?date=YYYY-MM-DD&handle=
//
// handle selects among the date's options; an unknown handle falls back to
// the top-ranked observance.
func (h *Handlers) GetObservance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		WriteSuccess(w, nil)
		return
	}

	handle := strings.TrimSpace(r.URL.Query().Get("handle"))
	resp := observanceResponse{
		Date:     calendar.FormatDate(date),
		Season:   seasonName(h.resolver.Season(date)),
		Subcycle: optional(h.resolver.Subcycle(ctx, date)),
		Options:  h.resolver.Options(ctx, date),
	}
	if o := h.resolver.Resolve(ctx, date, handle); o != nil {
		resp.Title = optional(o.Title())
		resp.Handle = optional(o.Handle)
	}

	logger.Debug(ctx, "observance resolved",
		slog.String("date", resp.Date),
		slog.String("handle", handle),
		slog.Int("options", len(resp.Options)),
	)

	WriteSuccess(w, resp)
}

// optionsResponse is the payload of GET /api/v1/observance/options.
type optionsResponse struct {
	Date    string                  `json:"date"`
	Options []observance.Observance `json:"options"`
}

// GetObservanceOptions handles GET /api/v1/observance/options?date=YYYY-MM-DD
func (h *Handlers) GetObservanceOptions(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if date.IsZero() {
		WriteSuccess(w, optionsResponse{Options: []observance.Observance{}})
		return
	}

	WriteSuccess(w, optionsResponse{
		Date:    calendar.FormatDate(date),
		Options: h.resolver.Options(r.Context(), date),
	})
}

// GetCalendar handles GET /api/v1/calendar/{year} and its .ics variant.
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	param := chi.URLParam(r, "year")
	yearStr, asICS := strings.CutSuffix(param, ".ics")

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < minYear || year > maxYear {
		WriteProblem(w, CodeBadRequest, "Invalid year: %s. Use a year between %d and %d", param, minYear, maxYear)
		return
	}

	if asICS {
		var loadedAt time.Time
		if tables, err := h.resolver.Cache().Tables(ctx); err == nil {
			loadedAt = tables.LoadedAt
		}
		cal := ics.Export(ctx, h.resolver, year, loadedAt)
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fmt.Sprintf("ordinarium-%d.ics", year)))
		w.WriteHeader(http.StatusOK)
		if err := cal.SerializeTo(w); err != nil {
			logger.Error(ctx, "failed to write calendar feed", err, slog.Int("year", year))
		}
		return
	}

	WriteSuccess(w, almanac.Build(ctx, h.resolver, year))
}

// reloadResponse is the payload of POST /api/v1/admin/reload.
type reloadResponse struct {
	Observances int       `json:"observances"`
	Fragments   int       `json:"fragments"`
	Subcycles   int       `json:"subcycles"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// ReloadTables handles POST /api/v1/admin/reload
func (h *Handlers) ReloadTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tables, err := h.resolver.Cache().Reload(ctx)
	if err != nil {
		logger.Error(ctx, "table reload failed", err)
		WriteProblem(w, CodeInternal, "Failed to reload observance tables")
		return
	}
	logger.Info(ctx, "observance tables reloaded",
		slog.Int("observances", len(tables.Observances)),
		slog.Time("loaded_at", tables.LoadedAt),
	)

	WriteSuccess(w, reloadResponse{
		Observances: len(tables.Observances),
		Fragments:   len(tables.Fragments),
		Subcycles:   len(tables.Subcycles),
		LoadedAt:    tables.LoadedAt,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// dateParam reads the date query parameter. A missing parameter yields the
// zero time; a malformed one writes a 400 and reports false.
func dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		return time.Time{}, true
	}

	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteProblem(w, CodeBadRequest, "Invalid date format: %s. Use YYYY-MM-DD", dateStr)
		return time.Time{}, false
	}
	return date, true
}

func seasonName(s calendar.Season) *string {
	return optional(s.String())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
