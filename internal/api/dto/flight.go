package dto

import (
	"flight-market-service/internal/domain"
	"time"
)

type FlightResponse struct {
	FlightNumber     string     `json:"flight_number"`
	DepartureAirport string     `json:"departure_airport"`
	ArrivalAirport   string     `json:"arrival_airport"`
	DepartureCity    string     `json:"departure_city"`
	ArrivalCity      string     `json:"arrival_city"`
	DepartureTime    time.Time  `json:"departure_time"`
	ArrivalTime      *time.Time `json:"arrival_time"`
	Airline          string     `json:"airline"`
	AircraftType     string     `json:"aircraft_type"`
	Status           string     `json:"status"`
	PriceEstimate    float64    `json:"price_estimate"`
	DemandScore      int        `json:"demand_score"`
	Source           string     `json:"source"`
	CollectedAt      time.Time  `json:"collected_at"`
}

func NewFlightResponse(f domain.FlightRecord) FlightResponse {
	var arrival *time.Time
	if !f.ArrivalAt.IsZero() {
		a := f.ArrivalAt
		arrival = &a
	}
	return FlightResponse{
		FlightNumber:     f.FlightNumber,
		DepartureAirport: f.Origin,
		ArrivalAirport:   f.Destination,
		DepartureCity:    f.OriginCity,
		ArrivalCity:      f.DestinationCity,
		DepartureTime:    f.DepartureAt,
		ArrivalTime:      arrival,
		Airline:          f.Airline,
		AircraftType:     f.AircraftType,
		Status:           string(f.Status),
		PriceEstimate:    Round2(f.PriceEstimate),
		DemandScore:      f.DemandScore,
		Source:           string(f.Source),
		CollectedAt:      f.CollectedAt,
	}
}

type LabelCountResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type FlightSummaryResponse struct {
	AirportCode         string               `json:"airport_code,omitempty"`
	TotalFlights        int                  `json:"total_flights"`
	UniqueAirlines      int                  `json:"unique_airlines"`
	UniqueOrigins       int                  `json:"unique_origins"`
	BusiestHour         int                  `json:"busiest_hour"`
	AirlineDistribution []LabelCountResponse `json:"airline_distribution"`
	OriginDistribution  []LabelCountResponse `json:"origin_distribution"`
	StatusDistribution  []LabelCountResponse `json:"status_distribution"`
	HourlyDistribution  [24]int              `json:"hourly_distribution"`
	OnTimePercentage    float64              `json:"on_time_percentage"`
	DelayedPercentage   float64              `json:"delayed_percentage"`
}

func NewFlightSummaryResponse(s domain.FlightSummary) FlightSummaryResponse {
	return FlightSummaryResponse{
		AirportCode:         s.Target,
		TotalFlights:        s.TotalFlights,
		UniqueAirlines:      s.UniqueAirlines,
		UniqueOrigins:       s.UniqueOrigins,
		BusiestHour:         s.BusiestHour,
		AirlineDistribution: labelCounts(s.AirlineDistribution),
		OriginDistribution:  labelCounts(s.OriginDistribution),
		StatusDistribution:  labelCounts(s.StatusDistribution),
		HourlyDistribution:  s.HourlyDistribution,
		OnTimePercentage:    Round2(s.OnTimePercentage),
		DelayedPercentage:   Round2(s.DelayedPercentage),
	}
}

func labelCounts(in []domain.LabelCount) []LabelCountResponse {
	out := make([]LabelCountResponse, 0, len(in))
	for _, c := range in {
		out = append(out, LabelCountResponse{Name: c.Label, Count: c.Count})
	}
	return out
}

type AttemptResponse struct {
	Source     string `json:"source"`
	Accepted   bool   `json:"accepted"`
	Records    int    `json:"records"`
	Reason     string `json:"reason,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  int64  `json:"latency_ms"`
}

type CollectResponse struct {
	Success          bool              `json:"success"`
	Message          string            `json:"message"`
	FlightsCollected int               `json:"flights_collected"`
	Source           string            `json:"source"`
	Attempts         []AttemptResponse `json:"attempts"`
}

type AirportFlightsResponse struct {
	Success      bool                  `json:"success"`
	Airport      string                `json:"airport"`
	Source       string                `json:"source"`
	Flights      []FlightResponse      `json:"flights"`
	Summary      FlightSummaryResponse `json:"summary"`
	Insights     string                `json:"insights"`
	InsightsMode string                `json:"insights_mode"`
	Attempts     []AttemptResponse     `json:"attempts"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
