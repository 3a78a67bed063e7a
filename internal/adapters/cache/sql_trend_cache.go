package cache

import (
	"context"
	"database/sql"
	"errors"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/platform/db"
	"flight-market-service/internal/platform/obs"
	"fmt"
	"strings"
	"time"
)

// SQLTrendCache is a SQL-backed cache of per-route, per-day market trends.
// Rows are derived from the flights table and can be rebuilt at any time.
type SQLTrendCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLTrendCache(conn *sql.DB, dialect db.Dialect) *SQLTrendCache {
	return &SQLTrendCache{DB: conn, Dialect: dialect}
}

// Store many trend rows, replacing any existing row for the same route and date.
func (s *SQLTrendCache) PutMany(ctx context.Context, trends []domain.MarketTrend) (err error) {
	defer obs.Time(ctx, "trend.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("trend cache: db is nil")
	}

	if len(trends) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert trend cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Dialect, `
	INSERT INTO market_trends (route, trend_date, demand_level, avg_price, flight_count, popularity_score, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (route, trend_date) DO UPDATE
	SET demand_level = excluded.demand_level,
		avg_price = excluded.avg_price,
		flight_count = excluded.flight_count,
		popularity_score = excluded.popularity_score,
		created_at = excluded.created_at;
	`))
	if err != nil {
		return fmt.Errorf("insert trend cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, tr := range trends {
		if strings.TrimSpace(tr.Route) == "" || tr.Date == "" {
			return fmt.Errorf("insert trend cache: empty route or date key")
		}

		_, err := stmt.ExecContext(ctx,
			tr.Route,
			tr.Date,
			tr.DemandLevel,
			tr.AvgPrice,
			tr.FlightCount,
			tr.PopularityScore,
			tr.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert trend cache route=%q date=%s: %w", tr.Route, tr.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert trend cache commit: %w", err)
	}

	return nil
}

// List cached trends, newest date first.
func (s *SQLTrendCache) List(ctx context.Context) (_ []domain.MarketTrend, err error) {
	defer obs.Time(ctx, "trend.cache.List")(&err)

	if s.DB == nil {
		return nil, errors.New("trend cache: db is nil")
	}

	q := `
	SELECT route, trend_date, demand_level, avg_price, flight_count, popularity_score, created_at
	FROM market_trends
	ORDER BY trend_date DESC, popularity_score DESC, route;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list trend cache: query market_trends table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MarketTrend, 0, 64)
	for rows.Next() {
		var tr domain.MarketTrend
		var created string
		if err := rows.Scan(&tr.Route, &tr.Date, &tr.DemandLevel, &tr.AvgPrice, &tr.FlightCount, &tr.PopularityScore, &created); err != nil {
			return nil, fmt.Errorf("list trend cache: scan rows: %w", err)
		}
		if tr.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("list trend cache: route=%q created_at: %w", tr.Route, err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trend cache: row iteration: %w", err)
	}

	return out, nil
}
