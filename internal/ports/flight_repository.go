package ports

import (
	"context"
	"flight-market-service/internal/domain"
)

// Port: a boundary for the durable flights table.
type FlightRepository interface {
	// Insert or overwrite records by natural key. Returns the number of rows written.
	UpsertFlights(ctx context.Context, records []domain.FlightRecord) (int, error)
	// Retrieve every stored flight.
	ListFlights(ctx context.Context) ([]domain.FlightRecord, error)
	// Count stored flights.
	CountFlights(ctx context.Context) (int, error)
}
