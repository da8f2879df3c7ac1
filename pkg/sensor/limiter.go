package sensor

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterStore throttles inserts per sensor: sensor_id -> rate limiter
type RateLimiterStore struct {
	limiters     map[int]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[int]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func (s *RateLimiterStore) GetLimiter(sensorID int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[sensorID]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[sensorID] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(sensorID int, sensorRate rate.Limit, sensorBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[sensorID] = rate.NewLimiter(sensorRate, sensorBurst)
}

// Allow reports whether an insert for sensorID may go ahead now. A nil store allows everything.
func (s *RateLimiterStore) Allow(sensorID int) bool {
	if s == nil {
		return true
	}
	return s.GetLimiter(sensorID).Allow()
}
