package sources

import (
	"context"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/ports"
	"sync/atomic"
)

// StaticSource replays a fixed outcome. It stands in for live sources in
// tests and in offline runs.
type StaticSource struct {
	name    domain.Provenance
	records []domain.FlightRecord
	reason  string
	calls   atomic.Int64
}

func NewStaticSource(name domain.Provenance, records []domain.FlightRecord) *StaticSource {
	return &StaticSource{name: name, records: records}
}

// NewFailingSource always reports an empty outcome with reason.
func NewFailingSource(name domain.Provenance, reason string) *StaticSource {
	return &StaticSource{name: name, reason: reason}
}

func (s *StaticSource) Name() domain.Provenance {
	return s.name
}

func (s *StaticSource) Fetch(ctx context.Context, target string, limit int) ports.FetchOutcome {
	s.calls.Add(1)

	if len(s.records) == 0 {
		reason := s.reason
		if reason == "" {
			reason = "no records configured"
		}
		return ports.FetchOutcome{Source: s.name, Reason: reason}
	}

	out := s.records
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return ports.FetchOutcome{
		Source:  s.name,
		Records: append([]domain.FlightRecord(nil), out...),
	}
}

// Calls reports how many times Fetch has run.
func (s *StaticSource) Calls() int {
	return int(s.calls.Load())
}
