package domain

// Count of flights for a single label (airline, origin city, status).
type LabelCount struct {
	Label string
	Count int
}

// Represents descriptive statistics over a set of flights.
// Distributions are ordered by count descending, then label ascending.
type FlightSummary struct {
	Target              string
	TotalFlights        int
	UniqueAirlines      int
	UniqueOrigins       int
	BusiestHour         int
	AirlineDistribution []LabelCount
	OriginDistribution  []LabelCount
	StatusDistribution  []LabelCount
	HourlyDistribution  [24]int
	OnTimePercentage    float64
	DelayedPercentage   float64
}

// Narrative modes.
const (
	NarrativeLLM       = "llm"
	NarrativeRuleBased = "rule-based"
)

// Narrative is the prose produced by the insight narrator.
type Narrative struct {
	Text string
	Mode string
}

// Represents the ephemeral result of one analysis request.
type MarketInsightSummary struct {
	PopularRoutes []RouteAggregate
	Demand        DemandAnalysis
	PriceTrends   []PriceTrendPoint
	Summary       FlightSummary
	Narrative     Narrative
}
