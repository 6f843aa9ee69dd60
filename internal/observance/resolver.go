package observance

import (
	"context"
	"log/slog"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
)

// Resolver is the entry point used by the surrounding application.
//
// No method returns an error: a date without an observance is an ordinary
// outcome, and a table source that cannot be read is logged and treated as
// empty.
type Resolver struct {
	cache  *Cache
	logger *slog.Logger
}

// NewResolver creates a resolver over cache.
func NewResolver(cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cache: cache, logger: logger}
}

// Cache exposes the table cache so the application can reload it.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Season classifies date; see calendar.ResolveSeason.
func (r *Resolver) Season(date time.Time) calendar.Season {
	return calendar.ResolveSeason(date)
}

// Options returns every observance matching date, best first.
func (r *Resolver) Options(ctx context.Context, date time.Time) []Observance {
	return r.tables(ctx).Options(date)
}

// Resolve returns the observance for date, preferring handle when it is one
// of the date's options. It returns nil when there is none.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, handle string) *Observance {
	return r.tables(ctx).Resolve(date, handle)
}

// SundayTitle returns the title of the primary observance, or "".
func (r *Resolver) SundayTitle(ctx context.Context, date time.Time) string {
	if o := r.Resolve(ctx, date, ""); o != nil {
		return o.Title()
	}
	return ""
}

// Subcycle returns the reading-cycle handle for date, or "".
func (r *Resolver) Subcycle(ctx context.Context, date time.Time) string {
	return r.tables(ctx).Subcycle(date)
}

func (r *Resolver) tables(ctx context.Context) *Tables {
	if r == nil || r.cache == nil {
		return nil
	}
	t, err := r.cache.Tables(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "observance tables unavailable", slog.Any("error", err))
		return nil
	}
	return t
}
