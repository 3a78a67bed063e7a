package sources

import (
	"context"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/ports"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Selectors is the markup contract a scrape target must honour. Row selects
// one element per flight; the remaining selectors are evaluated inside it.
type Selectors struct {
	Row     string
	Time    string
	Flight  string
	Origin  string
	Airline string
	Status  string
}

// ScrapeTarget binds a provenance tag to its URL table and selector contract.
// URLs maps an airport code to its arrivals page; unrecognised codes use
// DefaultCode's page.
type ScrapeTarget struct {
	Source      domain.Provenance
	URLs        map[string]string
	DefaultCode string
	Selectors   Selectors
}

// AirportSiteTarget describes the airport operator arrivals pages.
func AirportSiteTarget(urls map[string]string) ScrapeTarget {
	if len(urls) == 0 {
		urls = map[string]string{
			"SYD": "https://www.sydneyairport.com.au/flights?query=arrivals",
			"MEL": "https://www.melbourneairport.com.au/flights/arrivals",
			"BNE": "https://www.bne.com.au/flight-information/arrivals",
		}
	}
	return ScrapeTarget{
		Source:      domain.SourceAirportSite,
		URLs:        urls,
		DefaultCode: "SYD",
		Selectors: Selectors{
			Row:     ".flight-row:not(.header)",
			Time:    ".time",
			Flight:  ".flight-number",
			Origin:  ".origin-destination",
			Airline: ".airline",
			Status:  ".status",
		},
	}
}

// FlightBoardTarget describes table-based arrivals boards.
func FlightBoardTarget(urls map[string]string) ScrapeTarget {
	if len(urls) == 0 {
		urls = map[string]string{
			"PER": "https://www.perthairport.com.au/flights/arrivals",
			"ADL": "https://www.adelaideairport.com.au/flights/arrivals",
			"HBA": "https://hobartairport.com.au/flights/arrivals",
		}
	}
	return ScrapeTarget{
		Source:      domain.SourceFlightBoard,
		URLs:        urls,
		DefaultCode: "PER",
		Selectors: Selectors{
			Row:     "table.arrivals tbody tr",
			Time:    "td.sched",
			Flight:  "td.flight",
			Origin:  "td.from",
			Airline: "td.carrier",
			Status:  "td.remarks",
		},
	}
}

// resolve picks the page for target and the airport code that page covers.
func (t ScrapeTarget) resolve(target string) (string, string) {
	code := domain.NormalizeCode(target)
	if u, ok := t.URLs[code]; ok && u != "" {
		return code, u
	}
	return t.DefaultCode, t.URLs[t.DefaultCode]
}

// ScrapeSource reads an HTML arrivals page and turns each row into a flight
// arriving at the resolved airport.
type ScrapeSource struct {
	target  ScrapeTarget
	http    *httpClient
	limiter *rate.Limiter
	loc     *time.Location
	est     *estimator
	now     func() time.Time
}

type ScrapeConfig struct {
	UserAgent string
	Timeout   time.Duration
	// Interval is the minimum gap between requests; 0 disables the limiter.
	Interval time.Duration
	Location *time.Location
	Seed     uint64
}

func NewScrapeSource(target ScrapeTarget, cfg ScrapeConfig) *ScrapeSource {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	var limiter *rate.Limiter
	if cfg.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Interval), 1)
	}

	return &ScrapeSource{
		target:  target,
		http:    newHTTPClient(cfg.Timeout, cfg.UserAgent, "text/html"),
		limiter: limiter,
		loc:     loc,
		est:     newEstimator(cfg.Seed),
		now:     time.Now,
	}
}

func (s *ScrapeSource) Name() domain.Provenance {
	return s.target.Source
}

func (s *ScrapeSource) Fetch(ctx context.Context, target string, limit int) ports.FetchOutcome {
	start := time.Now()
	limit = normalizeLimit(limit)

	code, pageURL := s.target.resolve(target)
	if pageURL == "" {
		return emptyOutcome(ctx, s.Name(), start, 0, fmt.Sprintf("no page configured for %q", code))
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return emptyOutcome(ctx, s.Name(), start, 0, fmt.Sprintf("rate limit wait: %v", err))
		}
	}

	req, err := s.http.newRequest(ctx, http.MethodGet, pageURL)
	if err != nil {
		return emptyOutcome(ctx, s.Name(), start, 0, err.Error())
	}

	resp, err := s.http.do(req)
	if err != nil {
		return emptyOutcome(ctx, s.Name(), start, statusCodeOf(err), fmt.Sprintf("request page: %v", err))
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return emptyOutcome(ctx, s.Name(), start, resp.StatusCode, fmt.Sprintf("parse page: %v", err))
	}

	records := s.parse(doc, code, limit)
	if len(records) == 0 {
		return emptyOutcome(ctx, s.Name(), start, resp.StatusCode, "no flight rows matched")
	}

	return ports.FetchOutcome{
		Source:     s.Name(),
		Records:    records,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

type scrapedRow struct {
	Time    string
	Flight  string
	Origin  string
	Airline string
	Status  string
}

func (s *ScrapeSource) parse(doc *goquery.Document, dest string, limit int) []domain.FlightRecord {
	sel := s.target.Selectors
	now := s.now()
	today := now.In(s.loc)
	seen := make(map[string]struct{})

	var records []domain.FlightRecord
	doc.Find(sel.Row).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		r := scrapedRow{
			Time:    cleanText(row.Find(sel.Time).First().Text()),
			Flight:  cleanText(row.Find(sel.Flight).First().Text()),
			Origin:  cleanText(row.Find(sel.Origin).First().Text()),
			Airline: cleanText(row.Find(sel.Airline).First().Text()),
			Status:  cleanText(row.Find(sel.Status).First().Text()),
		}

		rec, ok := s.toRecord(r, dest, today, now.UTC())
		if !ok {
			return true
		}
		if _, dup := seen[rec.NaturalKey()]; dup {
			return true
		}
		seen[rec.NaturalKey()] = struct{}{}

		records = append(records, rec)
		return len(records) < limit
	})

	return records
}

var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

func (s *ScrapeSource) toRecord(r scrapedRow, dest string, today, collected time.Time) (domain.FlightRecord, bool) {
	if r.Time == "" || r.Flight == "" || r.Origin == "" || r.Airline == "" {
		return domain.FlightRecord{}, false
	}

	departure, ok := clockOn(today, r.Time)
	if !ok {
		return domain.FlightRecord{}, false
	}

	number := flightNumber(r.Flight)
	origin, originCity := resolveOrigin(r.Origin)

	return domain.FlightRecord{
		FlightNumber:    number,
		Origin:          origin,
		Destination:     dest,
		OriginCity:      originCity,
		DestinationCity: domain.CityFor(dest),
		DepartureAt:     departure,
		Airline:         r.Airline,
		Status:          domain.ParseStatus(r.Status),
		PriceEstimate:   s.est.price(),
		DemandScore:     s.est.demand(),
		Source:          s.Name(),
		CollectedAt:     collected,
	}, true
}

// clockOn places an HH:MM reading on day's calendar date in day's location.
func clockOn(day time.Time, text string) (time.Time, bool) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 || mm > 59 {
		return time.Time{}, false
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hh, mm, 0, 0, day.Location()), true
}

var codeInParens = regexp.MustCompile(`\(([A-Za-z]{3})\)`)

// resolveOrigin accepts "MEL", "Melbourne" or "Melbourne (MEL)". Free text
// that maps to no code keeps its city and an empty code.
func resolveOrigin(text string) (string, string) {
	if m := codeInParens.FindStringSubmatch(text); m != nil {
		code := domain.NormalizeCode(m[1])
		city := strings.TrimSpace(codeInParens.ReplaceAllString(text, ""))
		if city == "" {
			city = domain.CityFor(code)
		}
		return code, city
	}

	if len(text) == 3 && isAlpha(text) {
		code := domain.NormalizeCode(text)
		if city := domain.CityFor(code); city != "" {
			return code, city
		}
		return code, code
	}

	if code, ok := domain.CodeForCity(text); ok {
		return code, domain.CityFor(code)
	}
	return "", text
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// cleanText collapses the whitespace and line breaks that markup leaves in cell text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
