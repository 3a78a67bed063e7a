package api

import (
	"bytes"
	"context"
	"database/sql"
	"flight-market-service/internal/adapters/cache"
	"flight-market-service/internal/adapters/repositories"
	"flight-market-service/internal/adapters/sources"
	"flight-market-service/internal/api/dto"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/platform/db"
	"flight-market-service/internal/ports"
	"flight-market-service/internal/services"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	conn    *sql.DB
	repo    *repositories.SQLFlightRepository
}

func newTestServer(t *testing.T, mutate func(*RouterConfig), srcs ...ports.FlightSource) *testServer {
	t.Helper()

	conn, dialect, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn))

	if len(srcs) == 0 {
		srcs = []ports.FlightSource{
			sources.NewAviationstackSource(sources.AviationstackConfig{}),
			sources.NewSyntheticSource(42),
		}
	}

	repo := repositories.NewSQLFlightRepository(conn, dialect)
	narrator := services.NewNarrator(nil, cache.NewSQLInsightCache(conn, dialect))
	cfg := RouterConfig{
		Coordinator:  services.NewCoordinator(srcs...),
		Repo:         repo,
		Analyzer:     services.NewAnalyzer(repo, cache.NewSQLTrendCache(conn, dialect), narrator),
		Narrator:     narrator,
		DefaultLimit: 200,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return &testServer{handler: NewRouter(cfg), conn: conn, repo: repo}
}

func (s *testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCollectFallsBackToSynthetic(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/collect-data?airport=syd&limit=25")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.CollectResponse](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 25, res.FlightsCollected)
	assert.Equal(t, string(domain.SourceSynthetic), res.Source)
	assert.Contains(t, res.Message, "25")
	require.Len(t, res.Attempts, 2)
	assert.False(t, res.Attempts[0].Accepted)
	assert.Equal(t, "missing credential", res.Attempts[0].Reason)

	n, err := s.repo.CountFlights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestCollectDefaultLimit(t *testing.T) {
	s := newTestServer(t, func(c *RouterConfig) { c.DefaultLimit = 12 })

	rec := s.do(t, http.MethodPost, "/api/collect-data")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, decode[dto.CollectResponse](t, rec).FlightsCollected)
}

func TestCollectRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	cases := map[string]string{
		"/api/collect-data?limit=0":      "limit must be between 1 and 1000",
		"/api/collect-data?limit=1001":   "limit must be between 1 and 1000",
		"/api/collect-data?limit=many":   "limit must be an integer",
		"/api/collect-data?airport=SY1":  "airport must be a 3-letter IATA code",
		"/api/collect-data?airport=SYDN": "airport must be a 3-letter IATA code",
		"/api/flights/12X":               "airport must be a 3-letter IATA code",
		"/api/flights/MEL?limit=-3":      "limit must be between 1 and 1000",
	}

	for target, want := range cases {
		t.Run(target, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			res := decode[dto.ErrorResponse](t, rec)
			assert.False(t, res.Success)
			assert.Equal(t, want, res.Error)
		})
	}
}

func TestCollectWithNoSourceData(t *testing.T) {
	s := newTestServer(t, nil, sources.NewFailingSource(domain.SourceAviationstack, "boom"))

	rec := s.do(t, http.MethodGet, "/api/collect-data")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, decode[dto.ErrorResponse](t, rec).Success)
}

func TestCollectStorageFailure(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.conn.Close())

	rec := s.do(t, http.MethodGet, "/api/collect-data?limit=5")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decode[dto.ErrorResponse](t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "failed to store collected flights", res.Error)
}

func TestCollectRateLimited(t *testing.T) {
	s := newTestServer(t, func(c *RouterConfig) { c.CollectRateLimit = 1 })

	first := s.do(t, http.MethodGet, "/api/collect-data?limit=3")
	second := s.do(t, http.MethodGet, "/api/collect-data?limit=3")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/analyze-trends").Code)
}

func TestAnalyzeTrendsAfterCollect(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/collect-data?limit=150").Code)

	rec := s.do(t, http.MethodGet, "/api/analyze-trends")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dto.AnalyzeResponse](t, rec)
	assert.True(t, res.Success)
	require.NotEmpty(t, res.PopularRoutes)
	assert.LessOrEqual(t, len(res.PopularRoutes), services.AnalyzeRoutesLimit)
	for i := 1; i < len(res.PopularRoutes); i++ {
		assert.GreaterOrEqual(t, res.PopularRoutes[i-1].FlightCount, res.PopularRoutes[i].FlightCount)
	}
	assert.NotEmpty(t, res.PriceTrends)
	assert.Equal(t, 150, res.Summary.TotalFlights)
	assert.Equal(t, domain.NarrativeRuleBased, res.InsightsMode)
	assert.Contains(t, res.AIInsights, "Market Leader")

	trends := s.do(t, http.MethodGet, "/api/market-trends")
	require.Equal(t, http.StatusOK, trends.Code)
	cached := decode[dto.MarketTrendsResponse](t, trends)
	assert.True(t, cached.Success)
	assert.Len(t, cached.Trends, len(res.PriceTrends))
}

func TestAnalyzeTrendsEmptyStore(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/analyze-trends")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dto.AnalyzeResponse](t, rec)
	assert.Empty(t, res.PopularRoutes)
	assert.Equal(t, services.NoDataNarrative, res.AIInsights)
	assert.Contains(t, rec.Body.String(), `"popular_routes":[]`)
}

func TestAnalyzeTrendsStorageFailure(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.conn.Close())

	rec := s.do(t, http.MethodGet, "/api/analyze-trends")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestVisualizations(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/collect-data?limit=80").Code)

	rec := s.do(t, http.MethodGet, "/api/visualizations")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dto.VisualizationsResponse](t, rec)
	assert.True(t, res.Success)

	routes := res.Charts.PopularRoutes
	require.Len(t, routes.Data, 1)
	assert.Equal(t, "bar", routes.Data[0].Type)
	assert.Len(t, routes.Data[0].Y, len(routes.Data[0].X))
	assert.LessOrEqual(t, len(routes.Data[0].X), services.ChartRoutesLimit)

	assert.LessOrEqual(t, len(res.Charts.PriceTrends.Data), services.ChartPriceRoutes)
	assert.Equal(t, "pie", res.Charts.DemandDistribution.Data[0].Type)

	hourly := res.Charts.HourlyDistribution.Data[0]
	assert.Len(t, hourly.X, 24)
	var total float64
	for _, v := range hourly.Y {
		total += v
	}
	assert.Equal(t, float64(80), total)
}

func TestAirportFlightsAreNotPersisted(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/flights/syd?limit=10")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.AirportFlightsResponse](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "SYD", res.Airport)
	assert.Equal(t, string(domain.SourceSynthetic), res.Source)
	require.Len(t, res.Flights, 10)
	for _, f := range res.Flights {
		assert.Equal(t, "SYD", f.ArrivalAirport)
	}
	assert.Equal(t, 10, res.Summary.TotalFlights)
	assert.NotEmpty(t, res.Insights)

	n, err := s.repo.CountFlights(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodDelete, "/api/analyze-trends")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/health")

	rec := s.do(t, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "api_requests_total"))
}
