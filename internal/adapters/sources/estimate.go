package sources

import (
	"flight-market-service/internal/domain"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Price estimates are drawn from this inclusive range (AUD).
const (
	MinPriceEstimate = 150.0
	MaxPriceEstimate = 1200.0
)

// estimator draws the synthetic price and demand figures that every source
// attaches to its records. None of the upstream feeds publish fares.
type estimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// newEstimator seeds the generator; seed 0 picks a time-based seed.
func newEstimator(seed uint64) *estimator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &estimator{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (e *estimator) price() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := MinPriceEstimate + e.rng.Float64()*(MaxPriceEstimate-MinPriceEstimate)
	return math.Round(p*100) / 100
}

func (e *estimator) demand() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.MinDemandScore + e.rng.IntN(domain.MaxDemandScore-domain.MinDemandScore+1)
}

// intN returns a value in [0, n).
func (e *estimator) intN(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(n)
}
