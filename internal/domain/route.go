package domain

import "time"

// RouteArrow separates endpoints in route and city-pair labels.
const RouteArrow = " → "

// RouteKey builds the directional route label; SYD→MEL and MEL→SYD differ.
func RouteKey(origin, destination string) string {
	return origin + RouteArrow + destination
}

// Represents the traffic observed on a single directional route.
// A RouteAggregate is derived from the current flight set on every request and
// is never persisted. Means are kept at full precision.
type RouteAggregate struct {
	Route       string
	Cities      string
	Origin      string
	Destination string
	FlightCount int
	AvgPrice    float64
	AvgDemand   float64
}

// Average demand for a single departure date.
type DemandPeriod struct {
	Date        string
	AvgDemand   float64
	FlightCount int
}

// Arrival volume and demand for a destination city.
type DestinationStat struct {
	Destination  string
	ArrivalCount int
	AvgDemand    float64
	AvgPrice     float64
}

// DemandAnalysis bundles the high demand periods and destination popularity.
type DemandAnalysis struct {
	HighDemandPeriods   []DemandPeriod
	PopularDestinations []DestinationStat
}

// Average price on one route for one departure date.
type PriceTrendPoint struct {
	Date        string
	Route       string
	AvgPrice    float64
	FlightCount int
}

// Demand level buckets used by the market trend cache.
const (
	DemandHigh   = "high"
	DemandMedium = "medium"
	DemandLow    = "low"
)

// DemandLevel buckets an average demand score.
func DemandLevel(avgDemand float64) string {
	switch {
	case avgDemand >= 7:
		return DemandHigh
	case avgDemand >= 4:
		return DemandMedium
	default:
		return DemandLow
	}
}

// Represents a cached per-route, per-day market trend row.
// Rows are regenerable from the flights table and may lag behind it.
type MarketTrend struct {
	Route           string
	Date            string
	DemandLevel     string
	AvgPrice        float64
	FlightCount     int
	PopularityScore float64
	CreatedAt       time.Time
}
