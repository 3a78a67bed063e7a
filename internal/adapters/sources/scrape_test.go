package sources

import (
	"context"
	"flight-market-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const airportSitePage = `<html><body>
<div class="flight-row header"><span class="time">Time</span><span class="flight-number">Flight</span></div>
<div class="flight-row">
  <span class="time">07:35</span>
  <span class="flight-number">QF 402</span>
  <span class="origin-destination">Melbourne</span>
  <span class="airline">Qantas</span>
  <span class="status">On Time</span>
</div>
<div class="flight-row">
  <span class="time">08:10</span>
  <span class="flight-number">VA816</span>
  <span class="origin-destination">Brisbane (BNE)</span>
  <span class="airline">Virgin Australia</span>
  <span class="status">Delayed 08:40</span>
</div>
<div class="flight-row">
  <span class="time">09:00</span>
  <span class="flight-number">JQ501</span>
  <span class="origin-destination">Gold Coast</span>
  <span class="airline">Jetstar</span>
</div>
<div class="flight-row">
  <span class="time">09:20</span>
  <span class="flight-number">ZL77</span>
  <span class="origin-destination">Dubbo</span>
</div>
<div class="flight-row">
  <span class="time">soon</span>
  <span class="flight-number">TT1</span>
  <span class="origin-destination">PER</span>
  <span class="airline">Tigerair</span>
</div>
</body></html>`

const flightBoardPage = `<html><body>
<table class="arrivals">
<thead><tr><th>Sched</th><th>Flight</th><th>From</th><th>Carrier</th><th>Remarks</th></tr></thead>
<tbody>
<tr><td class="sched">13:05</td><td class="flight">QF 655</td><td class="from">SYD</td><td class="carrier">Qantas</td><td class="remarks">Landed</td></tr>
<tr><td class="sched">14:20</td><td class="flight">VA 575</td><td class="from">Adelaide</td><td class="carrier">Virgin Australia</td><td class="remarks">Cancelled</td></tr>
</tbody>
</table>
</body></html>`

func newPageServer(t *testing.T, page string, gotUA *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotUA != nil {
			*gotUA = r.Header.Get("User-Agent")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestScrapeAirportSite(t *testing.T) {
	var ua string
	srv := newPageServer(t, airportSitePage, &ua)

	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	target := AirportSiteTarget(map[string]string{"SYD": srv.URL + "/syd"})
	src := NewScrapeSource(target, ScrapeConfig{UserAgent: "test-agent/1.0", Timeout: time.Second, Location: loc, Seed: 3})
	src.now = fixedClock(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC))

	out := src.Fetch(context.Background(), "SYD", 50)
	require.Len(t, out.Records, 3, "header row and rows missing required fields are skipped")
	assert.Equal(t, "test-agent/1.0", ua)
	assert.Equal(t, domain.SourceAirportSite, out.Source)

	first := out.Records[0]
	assert.Equal(t, "QF402", first.FlightNumber)
	assert.Equal(t, "MEL", first.Origin)
	assert.Equal(t, "Melbourne", first.OriginCity)
	assert.Equal(t, "SYD", first.Destination)
	assert.Equal(t, "Sydney", first.DestinationCity)
	assert.Equal(t, domain.StatusOnTime, first.Status)
	// 22:00 UTC on 1 March is already 2 March in Sydney.
	assert.Equal(t, "2026-03-02", first.DepartureDate())
	assert.Equal(t, 7, first.DepartureAt.Hour())
	assert.Equal(t, 35, first.DepartureAt.Minute())

	second := out.Records[1]
	assert.Equal(t, "BNE", second.Origin)
	assert.Equal(t, "Brisbane", second.OriginCity)
	assert.Equal(t, domain.StatusDelayed, second.Status)

	third := out.Records[2]
	assert.Equal(t, "", third.Origin)
	assert.Equal(t, "Gold Coast", third.OriginCity)
	assert.Equal(t, domain.StatusUnknown, third.Status, "missing status becomes unknown")
}

func TestScrapeFlightBoardFallsBackToDefaultPage(t *testing.T) {
	srv := newPageServer(t, flightBoardPage, nil)

	target := FlightBoardTarget(map[string]string{"PER": srv.URL + "/per"})
	src := NewScrapeSource(target, ScrapeConfig{Timeout: time.Second})

	out := src.Fetch(context.Background(), "XYZ", 10)
	require.Len(t, out.Records, 2)
	assert.Equal(t, domain.SourceFlightBoard, out.Source)

	for _, rec := range out.Records {
		assert.Equal(t, "PER", rec.Destination)
		assert.Equal(t, "Perth", rec.DestinationCity)
	}
	assert.Equal(t, "SYD", out.Records[0].Origin)
	assert.Equal(t, domain.StatusLanded, out.Records[0].Status)
	assert.Equal(t, "ADL", out.Records[1].Origin)
	assert.Equal(t, domain.StatusCancelled, out.Records[1].Status)
}

func TestScrapeTruncatesToLimit(t *testing.T) {
	srv := newPageServer(t, airportSitePage, nil)

	src := NewScrapeSource(AirportSiteTarget(map[string]string{"SYD": srv.URL}), ScrapeConfig{})
	out := src.Fetch(context.Background(), "SYD", 1)

	require.Len(t, out.Records, 1)
	assert.Equal(t, "QF402", out.Records[0].FlightNumber)
}

func TestScrapeEmptyOutcomes(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		src := NewScrapeSource(AirportSiteTarget(map[string]string{"SYD": srv.URL}), ScrapeConfig{})
		out := src.Fetch(context.Background(), "SYD", 10)

		assert.True(t, out.Empty())
		assert.Equal(t, http.StatusForbidden, out.StatusCode)
		assert.NotEmpty(t, out.Reason)
	})

	t.Run("markup changed", func(t *testing.T) {
		srv := newPageServer(t, "<html><body><p>maintenance</p></body></html>", nil)

		src := NewScrapeSource(FlightBoardTarget(map[string]string{"PER": srv.URL}), ScrapeConfig{})
		out := src.Fetch(context.Background(), "PER", 10)

		assert.True(t, out.Empty())
		assert.Equal(t, "no flight rows matched", out.Reason)
	})

	t.Run("cancelled context while rate limited", func(t *testing.T) {
		srv := newPageServer(t, airportSitePage, nil)

		src := NewScrapeSource(AirportSiteTarget(map[string]string{"SYD": srv.URL}), ScrapeConfig{Interval: time.Hour})
		require.False(t, src.Fetch(context.Background(), "SYD", 10).Empty())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		out := src.Fetch(ctx, "SYD", 10)
		assert.True(t, out.Empty())
		assert.Contains(t, out.Reason, "rate limit")
	})
}

func TestResolveOrigin(t *testing.T) {
	cases := []struct {
		in, code, city string
	}{
		{"MEL", "MEL", "Melbourne"},
		{"mel", "MEL", "Melbourne"},
		{"Hobart", "HBA", "Hobart"},
		{"Auckland (AKL)", "AKL", "Auckland"},
		{"(DRW)", "DRW", "Darwin"},
		{"Singapore", "", "Singapore"},
	}
	for _, tc := range cases {
		code, city := resolveOrigin(tc.in)
		assert.Equal(t, tc.code, code, tc.in)
		assert.Equal(t, tc.city, city, tc.in)
	}
}
