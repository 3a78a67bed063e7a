package repositories

import (
	"context"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/ports"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type FlightSeed struct {
	FlightNumber  string  `json:"flight_number"`
	Origin        string  `json:"departure_airport"`
	Destination   string  `json:"arrival_airport"`
	DepartureAt   string  `json:"departure_time"`
	ArrivalAt     string  `json:"arrival_time"`
	Airline       string  `json:"airline"`
	AircraftType  string  `json:"aircraft_type"`
	Status        string  `json:"status"`
	PriceEstimate float64 `json:"price_estimate"`
	DemandScore   int     `json:"demand_score"`
}

// Populate the flights table from a JSON file of FlightSeed rows.
func SeedFromJSON(ctx context.Context, repo ports.FlightRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed flights: read %q: %w", jsonPath, err)
	}

	var data []FlightSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed flights: parse json: %w", err)
	}

	now := time.Now().UTC()
	rows := make([]domain.FlightRecord, 0, len(data))
	for i, item := range data {
		rec, err := item.toRecord(now)
		if err != nil {
			return 0, fmt.Errorf("seed flights: item at index %d: %w", i+1, err)
		}
		rows = append(rows, rec)
	}

	n, err := repo.UpsertFlights(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("seed flights: %w", err)
	}

	return n, nil
}

func (s FlightSeed) toRecord(collected time.Time) (domain.FlightRecord, error) {
	number := strings.ToUpper(strings.Join(strings.Fields(s.FlightNumber), ""))
	if number == "" {
		return domain.FlightRecord{}, fmt.Errorf("flight_number cannot be empty")
	}

	origin := domain.NormalizeCode(s.Origin)
	dest := domain.NormalizeCode(s.Destination)
	if origin == "" || dest == "" {
		return domain.FlightRecord{}, fmt.Errorf("flight %s: both airports are required", number)
	}

	departure, err := time.Parse(time.RFC3339, strings.TrimSpace(s.DepartureAt))
	if err != nil {
		return domain.FlightRecord{}, fmt.Errorf("flight %s: departure_time: %w", number, err)
	}

	var arrival time.Time
	if strings.TrimSpace(s.ArrivalAt) != "" {
		arrival, err = time.Parse(time.RFC3339, strings.TrimSpace(s.ArrivalAt))
		if err != nil {
			return domain.FlightRecord{}, fmt.Errorf("flight %s: arrival_time: %w", number, err)
		}
	}

	return domain.FlightRecord{
		FlightNumber:    number,
		Origin:          origin,
		Destination:     dest,
		OriginCity:      cityOrCode(origin),
		DestinationCity: cityOrCode(dest),
		DepartureAt:     departure,
		ArrivalAt:       arrival,
		Airline:         strings.TrimSpace(s.Airline),
		AircraftType:    strings.TrimSpace(s.AircraftType),
		Status:          domain.ParseStatus(s.Status),
		PriceEstimate:   s.PriceEstimate,
		DemandScore:     domain.ClampDemand(s.DemandScore),
		Source:          domain.SourceSeed,
		CollectedAt:     collected,
	}, nil
}

func cityOrCode(code string) string {
	if city := domain.CityFor(code); city != "" {
		return city
	}
	return code
}
