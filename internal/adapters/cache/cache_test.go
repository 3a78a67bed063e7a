package cache

import (
	"context"
	"database/sql"
	"flight-market-service/internal/adapters/repositories"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/platform/db"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, _, err := db.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, repositories.InitSchema(context.Background(), conn))
	return conn
}

func TestTrendCachePutManyOverwrites(t *testing.T) {
	ctx := context.Background()
	c := NewSQLTrendCache(newTestDB(t), db.SQLite)
	created := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	err := c.PutMany(ctx, []domain.MarketTrend{
		{Route: "SYD → MEL", Date: "2026-03-01", DemandLevel: domain.DemandLow, AvgPrice: 300, FlightCount: 2, PopularityScore: 6, CreatedAt: created},
		{Route: "MEL → SYD", Date: "2026-03-02", DemandLevel: domain.DemandHigh, AvgPrice: 410.25, FlightCount: 3, PopularityScore: 24, CreatedAt: created},
	})
	require.NoError(t, err)

	err = c.PutMany(ctx, []domain.MarketTrend{
		{Route: "SYD → MEL", Date: "2026-03-01", DemandLevel: domain.DemandMedium, AvgPrice: 320, FlightCount: 4, PopularityScore: 20, CreatedAt: created},
	})
	require.NoError(t, err)

	trends, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, trends, 2)

	assert.Equal(t, "MEL → SYD", trends[0].Route, "newest date first")
	assert.Equal(t, 410.25, trends[0].AvgPrice)
	assert.True(t, created.Equal(trends[0].CreatedAt))

	assert.Equal(t, "SYD → MEL", trends[1].Route)
	assert.Equal(t, domain.DemandMedium, trends[1].DemandLevel)
	assert.Equal(t, 4, trends[1].FlightCount)
}

func TestTrendCacheRejectsEmptyKey(t *testing.T) {
	c := NewSQLTrendCache(newTestDB(t), db.SQLite)
	err := c.PutMany(context.Background(), []domain.MarketTrend{{Route: "", Date: "2026-03-01"}})
	assert.Error(t, err)
}

func TestInsightCacheGetPut(t *testing.T) {
	ctx := context.Background()
	c := NewSQLInsightCache(newTestDB(t), db.SQLite)

	_, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "abc", "first"))
	require.NoError(t, c.Put(ctx, "abc", "second"))

	text, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", text)

	assert.Error(t, c.Put(ctx, "", "x"))
}
