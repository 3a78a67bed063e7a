package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for natural keys and date buckets.
const DateLayout = "2006-01-02"

// Demand scores are bounded to this inclusive range.
const (
	MinDemandScore = 1
	MaxDemandScore = 10
)

// Provenance records which source produced a FlightRecord.
type Provenance string

const (
	SourceAviationstack Provenance = "aviationstack"
	SourceAirportSite   Provenance = "airport-site"
	SourceFlightBoard   Provenance = "flight-board"
	SourceSynthetic     Provenance = "synthetic"
	SourceSeed          Provenance = "seed"
)

// Represents one observed or synthesized flight.
// A FlightRecord is identified by its natural key (flight number + scheduled
// departure date); re-collecting the same key overwrites the stored row.
type FlightRecord struct {
	FlightNumber    string
	Origin          string
	Destination     string
	OriginCity      string
	DestinationCity string
	DepartureAt     time.Time
	ArrivalAt       time.Time
	Airline         string
	AircraftType    string
	Status          Status
	PriceEstimate   float64
	DemandScore     int
	Source          Provenance
	CollectedAt     time.Time
}

// DepartureDate returns the scheduled departure's calendar date, or "" when unknown.
func (f FlightRecord) DepartureDate() string {
	if f.DepartureAt.IsZero() {
		return ""
	}
	return f.DepartureAt.Format(DateLayout)
}

// NaturalKey returns the upsert key for the record.
func (f FlightRecord) NaturalKey() string {
	return f.FlightNumber + "|" + f.DepartureDate()
}

// HasRoute reports whether both endpoints are known.
func (f FlightRecord) HasRoute() bool {
	return strings.TrimSpace(f.Origin) != "" && strings.TrimSpace(f.Destination) != ""
}

// ClampDemand bounds a demand score to [MinDemandScore, MaxDemandScore].
func ClampDemand(score int) int {
	if score < MinDemandScore {
		return MinDemandScore
	}
	if score > MaxDemandScore {
		return MaxDemandScore
	}
	return score
}
