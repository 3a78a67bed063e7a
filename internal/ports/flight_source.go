package ports

import (
	"context"
	"flight-market-service/internal/domain"
	"time"
)

// Result of a single source call. Reason explains an empty outcome.
type FetchOutcome struct {
	Source     domain.Provenance
	Records    []domain.FlightRecord
	Reason     string
	StatusCode int
	Latency    time.Duration
}

// Empty reports whether the outcome carries no records.
func (o FetchOutcome) Empty() bool {
	return len(o.Records) == 0
}

// Contract for fetching normalized flight records from one source.
// Implementations never return transport or parse failures to the caller;
// they report them as an empty outcome with a Reason.
type FlightSource interface {
	Name() domain.Provenance
	Fetch(ctx context.Context, target string, limit int) FetchOutcome
}
