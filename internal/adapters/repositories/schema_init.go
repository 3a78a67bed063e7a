package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the flights, market_trends and insight_cache tables.
// The DDL is portable between sqlite and postgres and safe to re-run.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFlightsQuery := `
	CREATE TABLE IF NOT EXISTS flights (
		flight_number TEXT NOT NULL,
		departure_date TEXT NOT NULL,
		departure_airport TEXT NOT NULL,
		arrival_airport TEXT NOT NULL,
		departure_city TEXT NOT NULL,
		arrival_city TEXT NOT NULL,
		departure_at TEXT NOT NULL,
		arrival_at TEXT,
		airline TEXT NOT NULL,
		aircraft_type TEXT NOT NULL,
		status TEXT NOT NULL,
		price_estimate DOUBLE PRECISION NOT NULL,
		demand_score INTEGER NOT NULL,
		source TEXT NOT NULL,
		collected_at TEXT NOT NULL,
		PRIMARY KEY (flight_number, departure_date)
	);
	`

	createMarketTrendsQuery := `
	CREATE TABLE IF NOT EXISTS market_trends (
		route TEXT NOT NULL,
		trend_date TEXT NOT NULL,
		demand_level TEXT NOT NULL,
		avg_price DOUBLE PRECISION NOT NULL,
		flight_count INTEGER NOT NULL,
		popularity_score DOUBLE PRECISION NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (route, trend_date)
	);
	`

	createInsightCacheQuery := `
	CREATE TABLE IF NOT EXISTS insight_cache (
		digest TEXT PRIMARY KEY,
		narrative TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_flights_departure_arrival
	ON flights(departure_airport, arrival_airport);
	`

	statements := []string{
		createFlightsQuery,
		createMarketTrendsQuery,
		createInsightCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
