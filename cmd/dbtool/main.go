package main

import (
	"context"
	"flag"
	"flight-market-service/internal/adapters/repositories"
	"flight-market-service/internal/config"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool prepares a store ahead of deployment: schema first, then an optional seed file.
func main() {
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	location := flag.String("store", cfg.Store.Location, "sqlite path or postgres URI")
	seedPath := flag.String("seed", cfg.Store.SeedPath, "JSON seed file (empty skips seeding)")
	flag.Parse()

	conn, dialect, err := db.Open(*location)
	if err != nil {
		logging.Fatal().Err(err).Msg("open store")
	}
	defer conn.Close()

	ctx := context.Background()

	logging.Info().Str("dialect", string(dialect)).Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		logging.Fatal().Err(err).Msg("schema initialization failed")
	}
	logging.Info().Msg("schema ready")

	if *seedPath == "" {
		return
	}

	logging.Info().Str("path", *seedPath).Msg("seeding database")
	n, err := repositories.SeedFromJSON(ctx, repositories.NewSQLFlightRepository(conn, dialect), *seedPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}
	logging.Info().Int("flights", n).Msg("seeding complete")
}
