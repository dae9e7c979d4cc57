// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	urlutil "github.com/law-makers/promptscrape/internal/utils/url"
)

// RateLimiter defines the interface for rate limiting implementations.
//
// Implementations should provide methods to control request rates,
// typically on a per-domain basis to avoid overwhelming servers.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow checks if a request for the given URL can proceed immediately
	// without blocking. Returns true if allowed, false otherwise.
	Allow(urlStr string) bool
}

// DomainLimiter provides per-domain rate limiting to prevent overwhelming
// servers and avoid IP bans. It uses the token bucket algorithm and keys
// buckets on the registrable domain, so www.flipkart.com and
// m.flipkart.com share one bucket.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit // Requests per second per domain
	burst    int        // Burst capacity
}

// NewDomainLimiter creates a new rate limiter with the specified per-domain rate
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0 // Default: 1 request/sec per domain
	}
	if burst <= 0 {
		burst = 3 // Default burst: 3 requests
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for the given URL can proceed according to rate limits
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	domain := urlutil.RegistrableDomain(urlStr)
	if domain == "" {
		// Invalid URL, let it proceed (will fail elsewhere)
		return nil
	}

	limiter := dl.getLimiter(domain)
	return limiter.Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DomainLimiter) Allow(urlStr string) bool {
	domain := urlutil.RegistrableDomain(urlStr)
	if domain == "" {
		return true
	}

	limiter := dl.getLimiter(domain)
	return limiter.Allow()
}

// getLimiter returns or creates a rate limiter for the given domain
func (dl *DomainLimiter) getLimiter(domain string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[domain]
	dl.mu.RUnlock()

	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := dl.limiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[domain] = limiter

	return limiter
}

// SetLimit updates the rate limit for a specific domain
func (dl *DomainLimiter) SetLimit(domain string, requestsPerSecond float64, burst int) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[domain]; exists {
		limiter.SetLimit(rate.Limit(requestsPerSecond))
		limiter.SetBurst(burst)
	} else {
		dl.limiters[domain] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}
