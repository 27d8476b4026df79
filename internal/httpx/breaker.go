package httpx

import (
	"sync"
	"time"

	cb "github.com/sony/gobreaker"
)

// BreakerSet holds one circuit breaker per provider. A provider that keeps
// failing at the transport level gets cut off for a cooldown window instead
// of burning retries every cycle.
type BreakerSet struct {
	mu       sync.Mutex
	breakers map[string]*cb.CircuitBreaker
}

// NewBreakerSet creates an empty breaker registry.
func NewBreakerSet() *BreakerSet {
	return &BreakerSet{breakers: make(map[string]*cb.CircuitBreaker)}
}

// For returns the breaker for a provider, creating it on first use.
func (s *BreakerSet) For(provider string) *cb.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[provider]; ok {
		return b
	}

	st := cb.Settings{Name: provider}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 5 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
	}
	b := cb.NewCircuitBreaker(st)
	s.breakers[provider] = b
	return b
}
