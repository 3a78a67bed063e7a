package services

import (
	"cmp"
	"flight-market-service/internal/domain"
	"slices"
	"strings"
	"time"
)

const (
	// Date buckets with fewer records than this never rank as high demand.
	MinRecordsPerPeriod = 6

	MaxHighDemandPeriods   = 10
	MaxPopularDestinations = 10
	MaxDistributionEntries = 10

	// BusiestHour reported when no record has a departure time.
	DefaultBusiestHour = 12
)

type meanAcc struct {
	count  int
	price  float64
	demand float64
}

func (m *meanAcc) add(r domain.FlightRecord) {
	m.count++
	m.price += r.PriceEstimate
	m.demand += float64(r.DemandScore)
}

func (m meanAcc) avgPrice() float64 {
	if m.count == 0 {
		return 0
	}
	return m.price / float64(m.count)
}

func (m meanAcc) avgDemand() float64 {
	if m.count == 0 {
		return 0
	}
	return m.demand / float64(m.count)
}

// PopularRoutes ranks directional routes by traffic. Only traffic statuses
// count; rows without both endpoints are ignored. Order: flight count desc,
// mean demand desc, route key asc. At most limit entries are returned.
func PopularRoutes(records []domain.FlightRecord, limit int) []domain.RouteAggregate {
	if limit <= 0 {
		return []domain.RouteAggregate{}
	}

	type bucket struct {
		agg domain.RouteAggregate
		acc meanAcc
	}
	buckets := make(map[string]*bucket)

	for _, r := range records {
		if !r.Status.CountsAsTraffic() || !r.HasRoute() {
			continue
		}
		key := domain.RouteKey(r.Origin, r.Destination)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{agg: domain.RouteAggregate{
				Route:       key,
				Cities:      domain.RouteKey(cityLabel(r.OriginCity, r.Origin), cityLabel(r.DestinationCity, r.Destination)),
				Origin:      r.Origin,
				Destination: r.Destination,
			}}
			buckets[key] = b
		}
		b.acc.add(r)
	}

	out := make([]domain.RouteAggregate, 0, len(buckets))
	for _, b := range buckets {
		a := b.agg
		a.FlightCount = b.acc.count
		a.AvgPrice = b.acc.avgPrice()
		a.AvgDemand = b.acc.avgDemand()
		out = append(out, a)
	}

	slices.SortFunc(out, func(a, b domain.RouteAggregate) int {
		if c := cmp.Compare(b.FlightCount, a.FlightCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AvgDemand, a.AvgDemand); c != 0 {
			return c
		}
		return cmp.Compare(a.Route, b.Route)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AnalyzeDemand finds the busiest-demand departure dates and the most
// visited destination cities across all statuses.
func AnalyzeDemand(records []domain.FlightRecord) domain.DemandAnalysis {
	byDate := make(map[string]*meanAcc)
	byCity := make(map[string]*meanAcc)

	for _, r := range records {
		if d := r.DepartureDate(); d != "" {
			acc, ok := byDate[d]
			if !ok {
				acc = &meanAcc{}
				byDate[d] = acc
			}
			acc.add(r)
		}
		if c := strings.TrimSpace(r.DestinationCity); c != "" {
			acc, ok := byCity[c]
			if !ok {
				acc = &meanAcc{}
				byCity[c] = acc
			}
			acc.add(r)
		}
	}

	periods := make([]domain.DemandPeriod, 0, len(byDate))
	for date, acc := range byDate {
		if acc.count < MinRecordsPerPeriod {
			continue
		}
		periods = append(periods, domain.DemandPeriod{
			Date:        date,
			AvgDemand:   acc.avgDemand(),
			FlightCount: acc.count,
		})
	}
	slices.SortFunc(periods, func(a, b domain.DemandPeriod) int {
		if c := cmp.Compare(b.AvgDemand, a.AvgDemand); c != 0 {
			return c
		}
		if c := cmp.Compare(b.FlightCount, a.FlightCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Date, b.Date)
	})
	if len(periods) > MaxHighDemandPeriods {
		periods = periods[:MaxHighDemandPeriods]
	}

	dests := make([]domain.DestinationStat, 0, len(byCity))
	for city, acc := range byCity {
		dests = append(dests, domain.DestinationStat{
			Destination:  city,
			ArrivalCount: acc.count,
			AvgDemand:    acc.avgDemand(),
			AvgPrice:     acc.avgPrice(),
		})
	}
	slices.SortFunc(dests, func(a, b domain.DestinationStat) int {
		if c := cmp.Compare(b.ArrivalCount, a.ArrivalCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AvgDemand, a.AvgDemand); c != 0 {
			return c
		}
		return cmp.Compare(a.Destination, b.Destination)
	})
	if len(dests) > MaxPopularDestinations {
		dests = dests[:MaxPopularDestinations]
	}

	return domain.DemandAnalysis{HighDemandPeriods: periods, PopularDestinations: dests}
}

type dateRoute struct {
	date  string
	route string
}

func groupByDateRoute(records []domain.FlightRecord) map[dateRoute]*meanAcc {
	groups := make(map[dateRoute]*meanAcc)
	for _, r := range records {
		d := r.DepartureDate()
		if d == "" || !r.HasRoute() {
			continue
		}
		k := dateRoute{date: d, route: domain.RouteKey(r.Origin, r.Destination)}
		acc, ok := groups[k]
		if !ok {
			acc = &meanAcc{}
			groups[k] = acc
		}
		acc.add(r)
	}
	return groups
}

// PriceTrends averages price per route per departure date, newest date first.
func PriceTrends(records []domain.FlightRecord) []domain.PriceTrendPoint {
	groups := groupByDateRoute(records)

	out := make([]domain.PriceTrendPoint, 0, len(groups))
	for k, acc := range groups {
		out = append(out, domain.PriceTrendPoint{
			Date:        k.date,
			Route:       k.route,
			AvgPrice:    acc.avgPrice(),
			FlightCount: acc.count,
		})
	}
	slices.SortFunc(out, func(a, b domain.PriceTrendPoint) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Route, b.Route)
	})
	return out
}

// MarketTrends derives the cacheable per-route, per-day rows.
func MarketTrends(records []domain.FlightRecord, now time.Time) []domain.MarketTrend {
	groups := groupByDateRoute(records)

	out := make([]domain.MarketTrend, 0, len(groups))
	for k, acc := range groups {
		avgDemand := acc.avgDemand()
		out = append(out, domain.MarketTrend{
			Route:           k.route,
			Date:            k.date,
			DemandLevel:     domain.DemandLevel(avgDemand),
			AvgPrice:        acc.avgPrice(),
			FlightCount:     acc.count,
			PopularityScore: float64(acc.count) * avgDemand,
			CreatedAt:       now,
		})
	}
	slices.SortFunc(out, func(a, b domain.MarketTrend) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Route, b.Route)
	})
	return out
}

// HourlyDistribution counts departures per hour of day in each record's own zone.
func HourlyDistribution(records []domain.FlightRecord) [24]int {
	var hours [24]int
	for _, r := range records {
		if r.DepartureAt.IsZero() {
			continue
		}
		hours[r.DepartureAt.Hour()]++
	}
	return hours
}

// Summarize computes descriptive statistics for one airport's flights.
func Summarize(target string, records []domain.FlightRecord) domain.FlightSummary {
	s := domain.FlightSummary{
		Target:             target,
		TotalFlights:       len(records),
		BusiestHour:        DefaultBusiestHour,
		HourlyDistribution: HourlyDistribution(records),
	}
	if len(records) == 0 {
		return s
	}

	airlines := map[string]int{}
	origins := map[string]int{}
	statuses := map[string]int{}
	onTime, delayed := 0, 0

	for _, r := range records {
		if a := strings.TrimSpace(r.Airline); a != "" {
			airlines[a]++
		}
		if o := cityLabel(r.OriginCity, r.Origin); o != "" {
			origins[o]++
		}
		statuses[string(r.Status)]++

		if r.Status.IsOnTime() {
			onTime++
		}
		if r.Status == domain.StatusDelayed {
			delayed++
		}
	}

	s.UniqueAirlines = len(airlines)
	s.UniqueOrigins = len(origins)
	s.AirlineDistribution = rankCounts(airlines, MaxDistributionEntries)
	s.OriginDistribution = rankCounts(origins, MaxDistributionEntries)
	s.StatusDistribution = rankCounts(statuses, 0)
	s.OnTimePercentage = float64(onTime) / float64(len(records)) * 100
	s.DelayedPercentage = float64(delayed) / float64(len(records)) * 100

	best := -1
	for h, n := range s.HourlyDistribution {
		if n > 0 && (best < 0 || n > s.HourlyDistribution[best]) {
			best = h
		}
	}
	if best >= 0 {
		s.BusiestHour = best
	}

	return s
}

// rankCounts orders counts desc then label asc; limit 0 keeps everything.
func rankCounts(counts map[string]int, limit int) []domain.LabelCount {
	out := make([]domain.LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.LabelCount{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func cityLabel(city, code string) string {
	if c := strings.TrimSpace(city); c != "" {
		return c
	}
	return strings.TrimSpace(code)
}
