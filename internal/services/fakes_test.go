package services

import (
	"context"
	"errors"
	"flight-market-service/internal/domain"
	"sync"
	"time"
)

// memRepo is an in-memory FlightRepository keyed by natural key.
type memRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.FlightRecord
	order   []string
	failErr error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]domain.FlightRecord{}}
}

func (m *memRepo) UpsertFlights(ctx context.Context, records []domain.FlightRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	for _, r := range records {
		k := r.NaturalKey()
		if _, ok := m.rows[k]; !ok {
			m.order = append(m.order, k)
		}
		m.rows[k] = r
	}
	return len(records), nil
}

func (m *memRepo) ListFlights(ctx context.Context) ([]domain.FlightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make([]domain.FlightRecord, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.rows[k])
	}
	return out, nil
}

func (m *memRepo) CountFlights(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
	last  string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.last = prompt
	return g.text, g.err
}

type memInsightCache struct {
	m      map[string]string
	putErr error
}

func (c *memInsightCache) Get(ctx context.Context, digest string) (string, bool, error) {
	v, ok := c.m[digest]
	return v, ok, nil
}

func (c *memInsightCache) Put(ctx context.Context, digest, narrative string) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.m[digest] = narrative
	return nil
}

type memTrendCache struct {
	trends []domain.MarketTrend
	err    error
}

func (c *memTrendCache) PutMany(ctx context.Context, trends []domain.MarketTrend) error {
	if c.err != nil {
		return c.err
	}
	c.trends = trends
	return nil
}

func (c *memTrendCache) List(ctx context.Context) ([]domain.MarketTrend, error) {
	return c.trends, c.err
}

var errStorage = errors.New("disk full")

var baseDay = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// flight builds a record departing on baseDay+day at hour.
func flight(number, origin, dest string, day, hour int, status domain.Status, price float64, demand int) domain.FlightRecord {
	dep := baseDay.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
	return domain.FlightRecord{
		FlightNumber:    number,
		Origin:          origin,
		Destination:     dest,
		OriginCity:      domain.CityFor(origin),
		DestinationCity: domain.CityFor(dest),
		DepartureAt:     dep,
		ArrivalAt:       dep.Add(2 * time.Hour),
		Airline:         "Qantas",
		Status:          status,
		PriceEstimate:   price,
		DemandScore:     demand,
		Source:          domain.SourceSeed,
	}
}
