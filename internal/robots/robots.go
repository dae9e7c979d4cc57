// Package robots gates literal-URL targets on the site's robots.txt.
// Curated search targets skip the gate; a user-supplied URL is fetched
// only if the site allows it.
package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// Agent evaluates robots.txt rules with per-host caching.
// It implements engine.PolicyGate.
type Agent struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration
	respect   bool

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	fetched time.Time
	rules   *robotstxt.RobotsData
}

// Options configures the robots agent
type Options struct {
	// UserAgent is matched against robots.txt groups
	UserAgent string
	// CacheTTL bounds how long fetched rules are reused
	CacheTTL time.Duration
	// Respect disables the gate entirely when false
	Respect bool
	// Client overrides the HTTP client used to fetch robots.txt
	Client *http.Client
}

// NewAgent constructs a robots agent
func NewAgent(opts Options) *Agent {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Agent{
		client:    client,
		userAgent: opts.UserAgent,
		ttl:       ttl,
		respect:   opts.Respect,
		cache:     make(map[string]cacheEntry),
	}
}

// Allowed reports whether the target URL is permitted
func (a *Agent) Allowed(ctx context.Context, rawURL string) bool {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() {
		return false
	}

	if !a.respect {
		return true
	}

	rules, err := a.rules(ctx, target)
	if err != nil {
		// Fail-open on robots errors (common industry practice)
		log.Debug().Err(err).Str("url", rawURL).Msg("robots.txt unavailable, allowing")
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		group = rules.FindGroup("*")
		if group == nil {
			return true
		}
	}

	allowed := group.Test(target.Path)
	if !allowed {
		log.Info().Str("url", rawURL).Msg("Blocked by robots.txt")
	}
	return allowed
}

func (a *Agent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	entry, ok := a.cache[host]
	if ok && time.Since(entry.fetched) < a.ttl {
		a.mu.RUnlock()
		return entry.rules, nil
	}
	a.mu.RUnlock()

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("robots returned status %d", resp.StatusCode)
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	a.mu.Lock()
	a.cache[host] = cacheEntry{fetched: time.Now(), rules: data}
	a.mu.Unlock()

	return data, nil
}

// Purge evicts cached rules for a host
func (a *Agent) Purge(host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return
	}
	a.mu.Lock()
	delete(a.cache, host)
	a.mu.Unlock()
}
