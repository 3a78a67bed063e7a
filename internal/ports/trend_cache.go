package ports

import (
	"context"
	"flight-market-service/internal/domain"
)

// Regenerable cache of per-route, per-day market trends.
type TrendCache interface {
	PutMany(ctx context.Context, trends []domain.MarketTrend) error
	List(ctx context.Context) ([]domain.MarketTrend, error)
}
