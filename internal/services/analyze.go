package services

import (
	"context"
	"errors"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/ports"
	"fmt"
	"time"
)

const (
	AnalyzeRoutesLimit = 15
	ChartRoutesLimit   = 10
	ChartPriceRoutes   = 5
)

// Analyzer reads the stored flights once per request and derives every
// aggregate from that snapshot.
type Analyzer struct {
	repo     ports.FlightRepository
	trends   ports.TrendCache
	narrator *Narrator
	now      func() time.Time
}

// NewAnalyzer accepts a nil trend cache.
func NewAnalyzer(repo ports.FlightRepository, trends ports.TrendCache, narrator *Narrator) *Analyzer {
	if narrator == nil {
		narrator = NewNarrator(nil, nil)
	}
	return &Analyzer{repo: repo, trends: trends, narrator: narrator, now: time.Now}
}

func (a *Analyzer) Analyze(ctx context.Context) (domain.MarketInsightSummary, error) {
	records, err := a.repo.ListFlights(ctx)
	if err != nil {
		return domain.MarketInsightSummary{}, fmt.Errorf("analyze: list flights: %w", err)
	}

	out := domain.MarketInsightSummary{
		PopularRoutes: PopularRoutes(records, AnalyzeRoutesLimit),
		Demand:        AnalyzeDemand(records),
		PriceTrends:   PriceTrends(records),
		Summary:       Summarize("", records),
	}
	out.Narrative = a.narrator.Narrate(ctx, InsightInput{
		Summary: out.Summary,
		Routes:  out.PopularRoutes,
		Demand:  out.Demand,
	})

	a.refreshTrends(ctx, records)

	return out, nil
}

// refreshTrends rewrites the market trend cache; failures are only logged.
func (a *Analyzer) refreshTrends(ctx context.Context, records []domain.FlightRecord) {
	if a.trends == nil || len(records) == 0 {
		return
	}
	if err := a.trends.PutMany(ctx, MarketTrends(records, a.now().UTC())); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("refresh market trend cache failed")
	}
}

// CachedTrends returns the last refreshed market trend rows.
func (a *Analyzer) CachedTrends(ctx context.Context) ([]domain.MarketTrend, error) {
	if a.trends == nil {
		return []domain.MarketTrend{}, nil
	}
	trends, err := a.trends.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("market trends: %w", err)
	}
	return trends, nil
}

func (a *Analyzer) Visualize(ctx context.Context) (Charts, error) {
	records, err := a.repo.ListFlights(ctx)
	if err != nil {
		return Charts{}, fmt.Errorf("visualize: list flights: %w", err)
	}
	return BuildCharts(records), nil
}

// AirportReport is the unpersisted view of one airport's live flights.
type AirportReport struct {
	Airport   string
	Source    domain.Provenance
	Flights   []domain.FlightRecord
	Summary   domain.FlightSummary
	Narrative domain.Narrative
	Attempts  []Attempt
}

// ReportAirport collects flights for one airport without storing them.
// An all-empty collection yields an empty report rather than an error.
func ReportAirport(
	ctx context.Context,
	coord *Coordinator,
	narrator *Narrator,
	airport string,
	limit int,
) (AirportReport, error) {
	res, err := coord.Collect(ctx, airport, limit)
	if err != nil && !errors.Is(err, ErrNoSourceData) {
		return AirportReport{}, fmt.Errorf("airport report %s: %w", airport, err)
	}

	summary := Summarize(airport, res.Records)
	return AirportReport{
		Airport:   airport,
		Source:    res.Source,
		Flights:   res.Records,
		Summary:   summary,
		Narrative: narrator.Narrate(ctx, InsightInput{Summary: summary, Routes: PopularRoutes(res.Records, ChartPriceRoutes)}),
		Attempts:  res.Attempts,
	}, nil
}
