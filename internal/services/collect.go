package services

import (
	"context"
	"errors"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/metrics"
	"flight-market-service/internal/ports"
	"fmt"
	"time"
)

// ErrNoSourceData is returned when every configured source came back empty.
var ErrNoSourceData = errors.New("collect: no source returned flight data")

// Attempt summarises one source call made during a collection.
type Attempt struct {
	Source     domain.Provenance
	Accepted   bool
	Count      int
	Reason     string
	StatusCode int
	Latency    time.Duration
}

type CollectResult struct {
	Source   domain.Provenance
	Records  []domain.FlightRecord
	Attempts []Attempt
}

// Coordinator tries flight sources in a fixed priority order and keeps the
// first non-empty batch. Sources are called one at a time; a source that
// came back empty is not called again within the same collection.
type Coordinator struct {
	sources []ports.FlightSource
}

func NewCoordinator(sources ...ports.FlightSource) *Coordinator {
	return &Coordinator{sources: sources}
}

// SourceNames returns the configured priority order.
func (c *Coordinator) SourceNames() []domain.Provenance {
	names := make([]domain.Provenance, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// accepted is the whole fallback decision.
func accepted(o ports.FetchOutcome) bool {
	return !o.Empty()
}

func (c *Coordinator) Collect(ctx context.Context, target string, limit int) (CollectResult, error) {
	result := CollectResult{Attempts: make([]Attempt, 0, len(c.sources))}

	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("collect: %w", err)
		}

		start := time.Now()
		out := src.Fetch(ctx, target, limit)
		took := time.Since(start)

		ok := accepted(out)
		metrics.RecordSourceFetch(string(src.Name()), ok, took)

		result.Attempts = append(result.Attempts, Attempt{
			Source:     src.Name(),
			Accepted:   ok,
			Count:      len(out.Records),
			Reason:     out.Reason,
			StatusCode: out.StatusCode,
			Latency:    took,
		})

		if !ok {
			logging.Ctx(ctx).Info().
				Str("source", string(src.Name())).
				Str("reason", out.Reason).
				Msg("source empty, falling back")
			continue
		}

		logging.Ctx(ctx).Info().
			Str("source", string(src.Name())).
			Str("target", target).
			Int("records", len(out.Records)).
			Int("attempts", len(result.Attempts)).
			Msg("collected flights")

		result.Source = src.Name()
		result.Records = out.Records
		return result, nil
	}

	return result, ErrNoSourceData
}

type CollectRequest struct {
	Target string
	Limit  int
}

// Result of a collect-and-store run.
type CollectSummary struct {
	Source   domain.Provenance
	Stored   int
	Attempts []Attempt
}

// CollectFlights runs the coordinator and upserts the accepted batch.
// Only storage failures are returned as errors; an all-empty collection stores
// nothing and reports ErrNoSourceData.
func CollectFlights(
	ctx context.Context,
	req CollectRequest,
	coord *Coordinator,
	repo ports.FlightRepository,
) (CollectSummary, error) {
	res, err := coord.Collect(ctx, req.Target, req.Limit)
	summary := CollectSummary{Source: res.Source, Attempts: res.Attempts}
	if err != nil {
		return summary, err
	}

	n, err := repo.UpsertFlights(ctx, res.Records)
	if err != nil {
		return summary, fmt.Errorf("collect flights: store %d records from %s: %w", len(res.Records), res.Source, err)
	}
	summary.Stored = n

	return summary, nil
}
