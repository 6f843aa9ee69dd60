// Command align spot-checks resolved Sunday titles and seasons against a
// published reference calendar.
//
// Usage:
//
//	go run ./cmd/align
//	go run ./cmd/align -file reference.ics -sample 0
//
// It exits non-zero when any sampled Sunday disagrees with the reference.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/config"
	"github.com/zapponejosh/ordinarium/internal/ics"
	"github.com/zapponejosh/ordinarium/internal/logger"
	"github.com/zapponejosh/ordinarium/internal/observance"
	"github.com/zapponejosh/ordinarium/internal/source"
)

func main() {
	file := flag.String("file", "", "Read the reference calendar from a local .ics file instead of REFERENCE_ICS_URL")
	years := flag.Int("years", 3, "How many years ahead of today to sample")
	sample := flag.Int("sample", 10, "Sundays to check; 0 checks all")
	seed := flag.Uint64("seed", 42, "Sampling seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	today := calendar.Day(time.Now())
	opts := ics.AlignOptions{
		From:   today,
		To:     today.AddDate(*years, 0, 0),
		Sample: *sample,
		Seed:   *seed,
	}

	failed, err := run(cfg, log, *file, opts)
	if err != nil {
		log.Error("alignment check failed", slog.Any("error", err))
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(2)
	}
}

func run(cfg *config.Config, log *slog.Logger, file string, opts ics.AlignOptions) (int, error) {
	ctx := context.Background()

	events, err := referenceEvents(ctx, cfg, log, file)
	if err != nil {
		return 0, err
	}

	src, db, err := source.Open(ctx, cfg, log)
	if err != nil {
		return 0, fmt.Errorf("open data source: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	cache := observance.NewCache(src, log)
	if _, err := cache.Tables(ctx); err != nil {
		return 0, fmt.Errorf("load observance tables: %w", err)
	}

	report := ics.Align(ctx, observance.NewResolver(cache, log), events, opts)
	for _, c := range report.Checks {
		fmt.Println(c)
	}
	fmt.Printf("\n%d checked, %d failed\n", report.Checked(), report.Failed)

	return report.Failed, nil
}

func referenceEvents(ctx context.Context, cfg *config.Config, log *slog.Logger, file string) ([]ics.ReferenceEvent, error) {
	if file == "" {
		return ics.NewFetcher(log).Fetch(ctx, cfg.ReferenceICSURL)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open reference calendar: %w", err)
	}
	defer f.Close()

	return ics.ParseReference(f)
}
