package sources

import (
	"context"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/ports"
	"fmt"
	"time"
)

type carrier struct {
	Code string
	Name string
}

var carriers = [...]carrier{
	{Code: "QF", Name: "Qantas"},
	{Code: "VA", Name: "Virgin Australia"},
	{Code: "JQ", Name: "Jetstar"},
	{Code: "TT", Name: "Tigerair Australia"},
	{Code: "ZL", Name: "Rex Airlines"},
}

var aircraftTypes = []string{
	"Boeing 737-800",
	"Airbus A320",
	"Airbus A321",
	"Airbus A330-300",
	"Boeing 787-9",
	"Embraer E190",
	"Saab 340",
}

var syntheticStatuses = []domain.Status{
	domain.StatusOnTime,
	domain.StatusScheduled,
	domain.StatusActive,
	domain.StatusLanded,
	domain.StatusDelayed,
	domain.StatusCancelled,
}

// Departures are spread across this many days ending today.
const syntheticWindowDays = 30

// Flight numbers are drawn from [firstFlightNumber, firstFlightNumber+flightNumberSpan).
const (
	firstFlightNumber = 100
	flightNumberSpan  = 900
)

// MaxSyntheticFlights is the number of distinct natural keys the generator can
// produce; larger requests are clamped to it.
const MaxSyntheticFlights = len(carriers) * flightNumberSpan * syntheticWindowDays

// SyntheticSource generates plausible flights between the reference airports.
// It is the terminal fallback and never returns an empty outcome for a
// positive limit.
type SyntheticSource struct {
	est *estimator
	now func() time.Time
}

// NewSyntheticSource seeds the generator; seed 0 picks a time-based seed.
func NewSyntheticSource(seed uint64) *SyntheticSource {
	return &SyntheticSource{est: newEstimator(seed), now: time.Now}
}

func (s *SyntheticSource) Name() domain.Provenance {
	return domain.SourceSynthetic
}

func (s *SyntheticSource) Fetch(ctx context.Context, target string, limit int) ports.FetchOutcome {
	start := time.Now()
	limit = normalizeLimit(limit)

	if err := ctx.Err(); err != nil {
		return emptyOutcome(ctx, s.Name(), start, 0, fmt.Sprintf("generate flights: %v", err))
	}

	records := s.Generate(target, limit)

	return ports.FetchOutcome{
		Source:  s.Name(),
		Records: records,
		Latency: time.Since(start),
	}
}

// Generate builds count records whose natural keys are unique within the batch.
// count is clamped to MaxSyntheticFlights. A known target airport becomes every
// record's destination.
func (s *SyntheticSource) Generate(target string, count int) []domain.FlightRecord {
	count = min(max(count, 0), MaxSyntheticFlights)

	codes := domain.AirportCodes()
	fixedDest := ""
	if code := domain.NormalizeCode(target); domain.IsKnownAirport(code) {
		fixedDest = code
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	seen := make(map[string]struct{}, count)
	records := make([]domain.FlightRecord, 0, count)

	for len(records) < count {
		c := carriers[s.est.intN(len(carriers))]
		number := fmt.Sprintf("%s%d", c.Code, firstFlightNumber+s.est.intN(flightNumberSpan))

		day := today.AddDate(0, 0, -s.est.intN(syntheticWindowDays))
		departure := day.Add(time.Duration(s.est.intN(24))*time.Hour + time.Duration(s.est.intN(60))*time.Minute)

		rec := domain.FlightRecord{FlightNumber: number, DepartureAt: departure}
		if _, dup := seen[rec.NaturalKey()]; dup {
			continue
		}
		seen[rec.NaturalKey()] = struct{}{}

		dest := fixedDest
		if dest == "" {
			dest = codes[s.est.intN(len(codes))]
		}
		origin := dest
		for origin == dest {
			origin = codes[s.est.intN(len(codes))]
		}

		rec.Origin = origin
		rec.Destination = dest
		rec.OriginCity = domain.CityFor(origin)
		rec.DestinationCity = domain.CityFor(dest)
		rec.ArrivalAt = departure.Add(time.Duration(1+s.est.intN(8)) * time.Hour)
		rec.Airline = c.Name
		rec.AircraftType = aircraftTypes[s.est.intN(len(aircraftTypes))]
		rec.Status = syntheticStatuses[s.est.intN(len(syntheticStatuses))]
		rec.PriceEstimate = s.est.price()
		rec.DemandScore = s.est.demand()
		rec.Source = s.Name()
		rec.CollectedAt = now

		records = append(records, rec)
	}

	return records
}
