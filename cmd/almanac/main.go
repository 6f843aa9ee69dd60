// Command almanac prints the key dates and Sunday observances of a year.
//
// Usage:
//
//	go run ./cmd/almanac -year 2025
//	go run ./cmd/almanac -year 2025 -json
//	go run ./cmd/almanac -year 2025 -ics > ordinarium-2025.ics
//
// Tables are read from the source configured in the environment
// (DATA_SOURCE, DATA_PATH, DATABASE_DSN).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/ordinarium/internal/almanac"
	"github.com/zapponejosh/ordinarium/internal/config"
	"github.com/zapponejosh/ordinarium/internal/ics"
	"github.com/zapponejosh/ordinarium/internal/logger"
	"github.com/zapponejosh/ordinarium/internal/observance"
	"github.com/zapponejosh/ordinarium/internal/source"
)

func main() {
	year := flag.Int("year", time.Now().Year(), "Year to generate the almanac for")
	asJSON := flag.Bool("json", false, "Print JSON instead of a table")
	asICS := flag.Bool("ics", false, "Print an iCalendar feed of every observance")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Diagnostics go to stderr so the output can be piped.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log, *year, *asJSON, *asICS); err != nil {
		log.Error("almanac failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, year int, asJSON, asICS bool) error {
	ctx := context.Background()

	src, db, err := source.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open data source: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	cache := observance.NewCache(src, log)
	tables, err := cache.Tables(ctx)
	if err != nil {
		return fmt.Errorf("load observance tables: %w", err)
	}
	resolver := observance.NewResolver(cache, log)

	switch {
	case asICS:
		return ics.Export(ctx, resolver, year, tables.LoadedAt).SerializeTo(os.Stdout)
	case asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(almanac.Build(ctx, resolver, year))
	default:
		return almanac.Build(ctx, resolver, year).Write(os.Stdout)
	}
}
