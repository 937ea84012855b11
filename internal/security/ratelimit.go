package security

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles an action per key, e.g. OTP sends per phone number
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
	now      func() time.Time
}

// NewRateLimiter allows burst actions per key, refilling one every interval
func NewRateLimiter(every time.Duration, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    every,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consumes one token for key. When none is available it returns false and
// how long the caller has to wait.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl.every <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	lim, ok := rl.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(rl.every), rl.burst)
		rl.limiters[key] = lim
	}
	rl.mu.Unlock()

	now := rl.now()
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Forget drops the state for key
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	delete(rl.limiters, key)
	rl.mu.Unlock()
}
