package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/sinai-nexus/scheduling/internal/adapters/database"
	"github.com/sinai-nexus/scheduling/internal/adapters/file"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/clients/postgres"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	"github.com/sinai-nexus/scheduling/pkg/config"
)

// seed loads the cleaned scheduling CSV into the PostgreSQL catalog table,
// replacing whatever is there. The CSV path comes from CATALOG_CSV_PATH or
// the first argument.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("scheduling-seed", cfg.App.Env, cfg.App.LogLevel)

	path := cfg.Catalog.CSVPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ctx := context.Background()

	rows, err := file.NewCSVCatalogSource(path).LoadRows(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to read catalog CSV")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	adapter := database.NewCatalogAdapter(pgClient, cfg.Catalog.Table)
	if err := adapter.ReplaceRows(ctx, rows); err != nil {
		log.Fatal().Err(err).Msg("failed to seed catalog")
	}

	log.Info().Int("rows", len(rows)).Str("table", cfg.Catalog.Table).Str("path", path).Msg("catalog seeded")
}
