package limiter

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sweetpotato0/chainsocket/middleware"
)

var (
	// ErrRateLimitExceeded indicates rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimiter keeps one token bucket per capability. In wait mode a call
// blocks until a token is free or its context ends; otherwise it fails fast.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	wait     bool
}

// Option configures a RateLimiter
type Option func(*RateLimiter)

// WithWait makes calls wait for a token instead of failing.
func WithWait() Option {
	return func(l *RateLimiter) {
		l.wait = true
	}
}

// NewRateLimiter creates a rate limiting middleware allowing rps calls per
// second to each capability, with bursts of up to burst calls.
func NewRateLimiter(rps float64, burst int, opts ...Option) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the middleware name
func (m *RateLimiter) Name() string {
	return "RateLimiter"
}

// Execute checks rate limit
func (m *RateLimiter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	lim := m.limiterFor(string(ctx.Kind) + "/" + ctx.Name)
	if m.wait {
		if err := lim.Wait(ctx.Context()); err != nil {
			return fmt.Errorf("%w: %v", ErrRateLimitExceeded, err)
		}
	} else if !lim.Allow() {
		return fmt.Errorf("%w for %s %q", ErrRateLimitExceeded, ctx.Kind, ctx.Name)
	}
	return next(ctx)
}

func (m *RateLimiter) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	lim, ok := m.limiters[key]
	if !ok {
		lim = rate.NewLimiter(m.limit, m.burst)
		m.limiters[key] = lim
	}
	return lim
}
