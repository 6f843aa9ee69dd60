// Command import loads observance tables from flat files into a database.
//
// Usage:
//
//	go run ./cmd/import -from data -db data/ordinarium.db
//	go run ./cmd/import -from data/tables.yaml -dsn postgres://localhost/ordinarium
//
// This tool:
// 1. Reads observances, fragments and subcycles from a directory of
// TSV/CSV files or from a single YAML document
// 2. Creates/opens the database and runs migrations
// 3. Replaces every table in a single transaction
//
// The import is idempotent: each run replaces the previous contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zapponejosh/ordinarium/internal/database"
	"github.com/zapponejosh/ordinarium/internal/observance"
	"github.com/zapponejosh/ordinarium/internal/source"
)

func main() {
	// Parse command line flags
	from := flag.String("from", "data", "Directory of TSV/CSV tables, or a .yaml file")
	dbPath := flag.String("db", "data/ordinarium.db", "Path to SQLite database")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides -db)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	dbCfg := database.DefaultConfig(*dbPath)
	if *dsn != "" {
		dbCfg = database.PostgresConfig(*dsn)
	}

	if err := run(*from, dbCfg, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(from string, dbCfg database.Config, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Pick the input format
	// =========================================================================
	var src observance.Source
	switch strings.ToLower(filepath.Ext(from)) {
	case ".yaml", ".yml":
		src = source.NewYAML(from, logger)
	default:
		src = source.NewDelimited(from, logger)
	}

	// Normalize once before touching the database so malformed rules show
	// up as warnings up front.
	tables, err := observance.LoadTables(ctx, src, logger)
	if err != nil {
		return fmt.Errorf("read tables: %w", err)
	}
	if len(tables.Observances) == 0 {
		return fmt.Errorf("no observances found in %s", from)
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("driver", dbCfg.Driver))

	db, err := database.Open(dbCfg, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import data in a transaction
	// =========================================================================
	summary, err := db.Import(ctx, src)
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	counts, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	elapsed := time.Since(startTime)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	for _, table := range observance.AllTables() {
		fmt.Printf("%-12s %5d read  %5d stored\n", table+":", summary[table], counts[table])
	}
	fmt.Printf("Usable observances: %d\n", len(tables.Observances))
	fmt.Printf("Time elapsed:       %v\n", elapsed.Round(time.Millisecond))

	return nil
}
