package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapponejosh/ordinarium/internal/config"
	"github.com/zapponejosh/ordinarium/internal/database"
	"github.com/zapponejosh/ordinarium/internal/observance"
)

// Open builds the Source selected by cfg.DataSource.
//
// For the database sources the schema is migrated and the returned
// *database.DB is non-nil; the caller owns it and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (observance.Source, *database.DB, error) {
	switch cfg.DataSource {
	case config.SourceFile:
		return NewDelimited(cfg.DataPath, logger), nil, nil
	case config.SourceYAML:
		return NewYAML(cfg.DataPath, logger), nil, nil
	case config.SourceSQLite, config.SourcePostgres:
		dbCfg := database.DefaultConfig(cfg.DataPath)
		if cfg.DataSource == config.SourcePostgres {
			dbCfg = database.PostgresConfig(cfg.DatabaseDSN)
		}

		db, err := database.Open(dbCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if _, err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
