package proxy

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// cooldown is how long a failed proxy sits out before being retried
const cooldown = 5 * time.Minute

// Pool rotates browser sessions across a list of proxy URLs.
// Failed proxies are benched for a cooldown period.
type Pool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
}

// NewPool creates a Pool. An empty list yields a pool whose Next always
// returns "", meaning direct connections.
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
	}
}

// Size returns the number of configured proxies
func (p *Pool) Size() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy in round-robin order. When every
// proxy is benched it returns the current one anyway: a flaky proxy
// beats no connection.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[candidate]; ok {
			if time.Since(failTime) < cooldown {
				if p.index == start {
					return candidate
				}
				continue
			}
			delete(p.failed, candidate)
		}

		return candidate
	}
}

// MarkFailed benches a proxy for the cooldown period
func (p *Pool) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
	log.Debug().Str("proxy", proxy).Msg("Proxy benched")
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
