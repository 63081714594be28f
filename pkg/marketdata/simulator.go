package marketdata

import (
	"hash/fnv"
	"math/rand"
	"sync"
)

const (
	defaultSpreadBps = 5.0    // half spread in basis points
	defaultStepBps   = 8.0    // random walk step in basis points
	basePrice        = 100.0  // starting price anchor
	priceFloor       = 0.01   // simulated prices never reach zero
)

// Simulator is a random-walk market data source. Each symbol gets a
// deterministic starting price derived from its name so repeated runs
// with the same seed see the same tape.
type Simulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64
}

func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		rng:    rand.New(rand.NewSource(seed)),
		prices: make(map[string]float64),
	}
}

func (s *Simulator) Quote(symbol string) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.step(symbol)
	half := last * defaultSpreadBps / 10000
	return Quote{
		Symbol: symbol,
		Bid:    last - half,
		Ask:    last + half,
		Last:   last,
	}
}

func (s *Simulator) Liquidity(symbol string) LiquidityMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.prices[symbol]
	if last == 0 {
		last = startingPrice(symbol)
		s.prices[symbol] = last
	}
	return LiquidityMetrics{
		Symbol:       symbol,
		BidAskSpread: last * defaultSpreadBps * 2 / 10000,
		MarketDepth:  10_000 + s.rng.Float64()*90_000,
	}
}

// SetPrice pins the current price for a symbol. Used by tests to force
// crossing and trigger conditions.
func (s *Simulator) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

// step advances the walk and returns the new last price. Caller holds mu.
func (s *Simulator) step(symbol string) float64 {
	last, ok := s.prices[symbol]
	if !ok {
		last = startingPrice(symbol)
	}
	last *= 1 + s.rng.NormFloat64()*defaultStepBps/10000
	if last < priceFloor {
		last = priceFloor
	}
	s.prices[symbol] = last
	return last
}

func startingPrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	// anchor in [basePrice, basePrice+400)
	return basePrice + float64(h.Sum32()%400)
}
