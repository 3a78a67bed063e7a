package sources

import (
	"context"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/ports"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// AviationstackSource fetches live flights from the aviationstack REST API.
//
// The adapter never retries: a transport error, a non-200 response, a provider
// error object or an undecodable body all produce an empty outcome so the
// coordinator can move on to the next source.
type AviationstackSource struct {
	http    *httpClient
	apiKey  string
	baseURL string
	est     *estimator
	now     func() time.Time
}

type AviationstackConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Seed    uint64
}

func NewAviationstackSource(cfg AviationstackConfig) *AviationstackSource {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://api.aviationstack.com/v1"
	}

	return &AviationstackSource{
		http:    newHTTPClient(cfg.Timeout, "", "application/json"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: base,
		est:     newEstimator(cfg.Seed),
		now:     time.Now,
	}
}

func (a *AviationstackSource) Name() domain.Provenance {
	return domain.SourceAviationstack
}

type aviationstackResponse struct {
	Data  []aviationstackFlight `json:"data"`
	Error *aviationstackError   `json:"error"`
}

type aviationstackError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

type aviationstackFlight struct {
	FlightStatus string                 `json:"flight_status"`
	Departure    aviationstackEndpoint  `json:"departure"`
	Arrival      aviationstackEndpoint  `json:"arrival"`
	Airline      aviationstackAirline   `json:"airline"`
	Flight       aviationstackNumber    `json:"flight"`
	Aircraft     *aviationstackAircraft `json:"aircraft"`
}

type aviationstackAirline struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
}

type aviationstackNumber struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
}

type aviationstackAircraft struct {
	IATA         string `json:"iata"`
	Registration string `json:"registration"`
}

type aviationstackEndpoint struct {
	Airport   string `json:"airport"`
	Timezone  string `json:"timezone"`
	IATA      string `json:"iata"`
	Scheduled string `json:"scheduled"`
}

// Fetch issues one GET /flights call. Without a credential it returns an empty
// outcome immediately and performs no network call.
func (a *AviationstackSource) Fetch(ctx context.Context, target string, limit int) ports.FetchOutcome {
	start := time.Now()

	if a.apiKey == "" {
		return emptyOutcome(ctx, a.Name(), start, 0, "missing credential")
	}

	limit = normalizeLimit(limit)

	req, err := a.http.newRequest(ctx, http.MethodGet, a.baseURL+"/flights")
	if err != nil {
		return emptyOutcome(ctx, a.Name(), start, 0, err.Error())
	}

	q := url.Values{}
	q.Set("access_key", a.apiKey)
	q.Set("limit", strconv.Itoa(limit))
	if code := domain.NormalizeCode(target); domain.IsKnownAirport(code) {
		q.Set("arr_iata", code)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := a.http.do(req)
	if err != nil {
		// The query string carries the access key; keep it out of the reason.
		reason := fmt.Sprintf("request flights: %v", redactKey(err.Error(), a.apiKey))
		return emptyOutcome(ctx, a.Name(), start, statusCodeOf(err), reason)
	}
	defer resp.Body.Close()

	var body aviationstackResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return emptyOutcome(ctx, a.Name(), start, resp.StatusCode, fmt.Sprintf("decode flights: %v", err))
	}

	if body.Error != nil {
		reason := fmt.Sprintf("provider error %v: %s", body.Error.Code, body.Error.Message)
		return emptyOutcome(ctx, a.Name(), start, resp.StatusCode, reason)
	}

	collected := a.now().UTC()
	records := make([]domain.FlightRecord, 0, len(body.Data))
	for _, f := range body.Data {
		rec, ok := a.toRecord(f, collected)
		if !ok {
			continue
		}
		records = append(records, rec)
		if len(records) == limit {
			break
		}
	}

	if len(records) == 0 {
		return emptyOutcome(ctx, a.Name(), start, resp.StatusCode, "no usable flights in response")
	}

	return ports.FetchOutcome{
		Source:     a.Name(),
		Records:    records,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// toRecord maps one provider row. Rows without a flight number, both endpoints
// and a parseable scheduled departure are rejected.
func (a *AviationstackSource) toRecord(f aviationstackFlight, collected time.Time) (domain.FlightRecord, bool) {
	number := flightNumber(f.Flight.IATA)
	if number == "" && f.Flight.Number != "" {
		number = flightNumber(f.Airline.IATA + f.Flight.Number)
	}

	origin := domain.NormalizeCode(f.Departure.IATA)
	dest := domain.NormalizeCode(f.Arrival.IATA)
	if number == "" || origin == "" || dest == "" {
		return domain.FlightRecord{}, false
	}

	departure, ok := parseScheduled(f.Departure.Scheduled)
	if !ok {
		return domain.FlightRecord{}, false
	}
	arrival, _ := parseScheduled(f.Arrival.Scheduled)

	aircraft := ""
	if f.Aircraft != nil {
		aircraft = strings.TrimSpace(f.Aircraft.IATA)
	}

	airline := strings.TrimSpace(f.Airline.Name)
	if airline == "" {
		airline = strings.TrimSpace(f.Airline.IATA)
	}

	return domain.FlightRecord{
		FlightNumber:    number,
		Origin:          origin,
		Destination:     dest,
		OriginCity:      cityFor(origin, f.Departure.Timezone),
		DestinationCity: cityFor(dest, f.Arrival.Timezone),
		DepartureAt:     departure,
		ArrivalAt:       arrival,
		Airline:         airline,
		AircraftType:    aircraft,
		Status:          domain.ParseStatus(f.FlightStatus),
		PriceEstimate:   a.est.price(),
		DemandScore:     a.est.demand(),
		Source:          a.Name(),
		CollectedAt:     collected,
	}, true
}

func parseScheduled(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cityFor prefers the reference table and falls back to the timezone's city
// component, e.g. Australia/Sydney -> Sydney.
func cityFor(code, timezone string) string {
	if city := domain.CityFor(code); city != "" {
		return city
	}
	tz := strings.TrimSpace(timezone)
	if i := strings.LastIndex(tz, "/"); i >= 0 {
		tz = tz[i+1:]
	}
	return strings.ReplaceAll(tz, "_", " ")
}

// flightNumber upper-cases and strips whitespace: "qf 123" -> "QF123".
func flightNumber(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

func redactKey(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, "REDACTED")
}
