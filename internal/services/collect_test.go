package services

import (
	"context"
	"errors"
	"flight-market-service/internal/adapters/sources"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccepted(t *testing.T) {
	assert.False(t, accepted(ports.FetchOutcome{}))
	assert.False(t, accepted(ports.FetchOutcome{Reason: "timeout"}))
	assert.True(t, accepted(ports.FetchOutcome{Records: []domain.FlightRecord{{FlightNumber: "QF1"}}}))
}

func TestCollectStopsAtFirstNonEmptySource(t *testing.T) {
	api := sources.NewFailingSource(domain.SourceAviationstack, "missing credential")
	siteA := sources.NewFailingSource(domain.SourceAirportSite, "status 503")
	want := []domain.FlightRecord{
		flight("VA100", "MEL", "SYD", 0, 9, domain.StatusScheduled, 200, 5),
		flight("VA101", "BNE", "SYD", 0, 10, domain.StatusLanded, 220, 6),
	}
	siteB := sources.NewStaticSource(domain.SourceFlightBoard, want)
	synthetic := sources.NewStaticSource(domain.SourceSynthetic, []domain.FlightRecord{flight("QF1", "SYD", "PER", 0, 1, domain.StatusScheduled, 1, 1)})

	coord := NewCoordinator(api, siteA, siteB, synthetic)
	res, err := coord.Collect(context.Background(), "SYD", 100)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFlightBoard, res.Source)
	assert.Equal(t, want, res.Records)
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, "missing credential", res.Attempts[0].Reason)
	assert.False(t, res.Attempts[1].Accepted)
	assert.True(t, res.Attempts[2].Accepted)
	assert.Equal(t, 2, res.Attempts[2].Count)

	assert.Equal(t, 1, api.Calls())
	assert.Equal(t, 1, siteA.Calls())
	assert.Equal(t, 1, siteB.Calls())
	assert.Equal(t, 0, synthetic.Calls(), "sources after the accepted one are never called")
}

func TestCollectFallsThroughToSynthetic(t *testing.T) {
	coord := NewCoordinator(
		sources.NewAviationstackSource(sources.AviationstackConfig{}),
		sources.NewFailingSource(domain.SourceAirportSite, "blocked"),
		sources.NewFailingSource(domain.SourceFlightBoard, "blocked"),
		sources.NewSyntheticSource(11),
	)

	res, err := coord.Collect(context.Background(), "MEL", 40)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSynthetic, res.Source)
	assert.Len(t, res.Records, 40)
	assert.Len(t, res.Attempts, 4)
}

func TestCollectAllEmpty(t *testing.T) {
	coord := NewCoordinator(
		sources.NewFailingSource(domain.SourceAviationstack, "a"),
		sources.NewFailingSource(domain.SourceAirportSite, "b"),
	)

	res, err := coord.Collect(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrNoSourceData)
	assert.Empty(t, res.Records)
	assert.Len(t, res.Attempts, 2)
}

func TestCollectHonoursCancelledContext(t *testing.T) {
	src := sources.NewStaticSource(domain.SourceSynthetic, []domain.FlightRecord{{FlightNumber: "QF1"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCoordinator(src).Collect(ctx, "", 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.Calls())
}

func TestSourceNames(t *testing.T) {
	coord := NewCoordinator(
		sources.NewFailingSource(domain.SourceAviationstack, ""),
		sources.NewSyntheticSource(1),
	)
	assert.Equal(t, []domain.Provenance{domain.SourceAviationstack, domain.SourceSynthetic}, coord.SourceNames())
}

func TestCollectFlightsStores(t *testing.T) {
	repo := newMemRepo()
	coord := NewCoordinator(sources.NewSyntheticSource(3))

	sum, err := CollectFlights(context.Background(), CollectRequest{Target: "PER", Limit: 25}, coord, repo)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSynthetic, sum.Source)
	assert.Equal(t, 25, sum.Stored)

	n, _ := repo.CountFlights(context.Background())
	assert.Equal(t, 25, n)
}

func TestCollectFlightsSurfacesStorageFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failErr = errStorage

	_, err := CollectFlights(context.Background(), CollectRequest{Limit: 5}, NewCoordinator(sources.NewSyntheticSource(3)), repo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStorage))
}
