// Package orchestrator fans resolved targets out across stealth
// sessions, retries transient failures with exponential backoff, and
// aggregates records deterministically in target order.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/internal/cache"
	"github.com/law-makers/promptscrape/internal/engine"
	"github.com/law-makers/promptscrape/internal/ratelimit"
	"github.com/law-makers/promptscrape/internal/retry"
	"github.com/law-makers/promptscrape/pkg/models"
)

// directCategory marks targets built from literal user-supplied URLs;
// only those consult the robots gate
const directCategory = "direct"

// Options tunes orchestration behavior
type Options struct {
	// Concurrency caps simultaneous browser sessions. <=0 picks a default.
	Concurrency int
	// MaxAttempts per target, including the first. <=0 means 3.
	MaxAttempts int
	// RetryDelay is the initial backoff; doubles per attempt
	RetryDelay time.Duration
	// NavTimeout bounds each navigation
	NavTimeout time.Duration
	// DynamicTimeout bounds the network-idle wait on dynamic targets
	DynamicTimeout time.Duration
	// MaxScrolls bounds infinite-scroll walking on dynamic targets
	MaxScrolls int
	// CacheTTL is how long snapshots stay reusable
	CacheTTL time.Duration
}

func (o *Options) withDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 3
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.DynamicTimeout <= 0 {
		o.DynamicTimeout = 10 * time.Second
	}
	if o.MaxScrolls <= 0 {
		o.MaxScrolls = 5
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
}

// Deps are the injected collaborators. Sessions and Extractor are
// required; the rest degrade gracefully to no-ops when nil.
type Deps struct {
	Sessions  engine.SessionFactory
	Extractor engine.Extractor
	Gate      engine.PolicyGate
	Limiter   ratelimit.RateLimiter
	Snapshots cache.Cache
}

// Orchestrator runs resolved targets to completion
type Orchestrator struct {
	deps Deps
	opts Options
}

// New creates an Orchestrator
func New(deps Deps, opts Options) *Orchestrator {
	opts.withDefaults()
	return &Orchestrator{deps: deps, opts: opts}
}

// slot is one target's final state, kept at its original index so
// aggregation order never depends on goroutine scheduling
type slot struct {
	target  models.TargetDescriptor
	records []*models.Record
	html    string
	err     error
}

// Run scrapes every target concurrently and aggregates the outcome.
// It never returns an error: per-target failures land in
// Outcome.Failed and a run where everything failed still produces a
// well-formed, empty Outcome.
func (o *Orchestrator) Run(ctx context.Context, targets []models.TargetDescriptor, reqs models.Requirements) *models.Outcome {
	start := time.Now()
	slots := make([]slot, len(targets))

	sem := make(chan struct{}, o.opts.Concurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(idx int, t models.TargetDescriptor) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			records, html, err := o.scrapeTarget(ctx, t, reqs)
			slots[idx] = slot{target: t, records: records, html: html, err: err}
		}(i, target)
	}

	wg.Wait()

	return o.aggregate(slots, reqs, time.Since(start))
}

// scrapeTarget runs one target through the policy gate and the retry
// loop. Backoff doubles per attempt; non-retryable kinds stop early.
func (o *Orchestrator) scrapeTarget(ctx context.Context, target models.TargetDescriptor, reqs models.Requirements) ([]*models.Record, string, error) {
	if o.deps.Gate != nil && target.SiteCategory == directCategory {
		if !o.deps.Gate.Allowed(ctx, target.URL) {
			return nil, "", engine.NewError(engine.KindPolicyDenied,
				fmt.Sprintf("robots.txt disallows %s", target.URL), nil)
		}
	}

	// A challenge page gets one extra attempt after the grace wait;
	// navigation faults keep the full budget.
	captchaHits := 0
	cfg := retry.Config{
		MaxAttempts:    o.opts.MaxAttempts,
		InitialBackoff: o.opts.RetryDelay,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Retryable: func(err error) bool {
			if engine.KindOf(err) == engine.KindCaptchaBlocked {
				captchaHits++
				return captchaHits < 2
			}
			return engine.IsRetryable(err)
		},
	}

	var (
		records []*models.Record
		html    string
	)
	err := retry.WithRetry(ctx, cfg, func() error {
		var attemptErr error
		records, html, attemptErr = o.attempt(ctx, target, reqs)
		return attemptErr
	})
	if err != nil {
		return nil, "", err
	}
	return records, html, nil
}

// attempt is one full navigation and extraction pass
func (o *Orchestrator) attempt(ctx context.Context, target models.TargetDescriptor, reqs models.Requirements) ([]*models.Record, string, error) {
	html, cached := o.cachedSnapshot(target.URL)

	if !cached {
		if o.deps.Limiter != nil {
			if err := o.deps.Limiter.Wait(ctx, target.URL); err != nil {
				return nil, "", engine.NewError(engine.KindNavigation, "rate limit wait", err)
			}
		}

		var err error
		html, err = o.fetch(ctx, target)
		if err != nil {
			return nil, "", err
		}

		if o.deps.Snapshots != nil {
			_ = o.deps.Snapshots.Set(target.URL, &cache.Snapshot{
				URL:       target.URL,
				HTML:      html,
				FetchedAt: time.Now(),
			}, o.opts.CacheTTL)
		}
	}

	records := o.deps.Extractor.Extract(html, target, reqs)
	if len(records) == 0 {
		// A loaded page with nothing to extract won't improve on retry
		return nil, "", engine.NewError(engine.KindExtractionEmpty,
			fmt.Sprintf("no records extracted from %s", target.URL), nil)
	}

	return records, html, nil
}

// fetch drives a fresh session through navigation, dynamic waits and
// captcha detection, returning the rendered snapshot. The session is
// always closed.
func (o *Orchestrator) fetch(ctx context.Context, target models.TargetDescriptor) (string, error) {
	session, err := o.deps.Sessions()
	if err != nil {
		return "", engine.NewError(engine.KindNavigation, "open session", err).WithRetry()
	}
	defer session.Close()

	if err := session.Navigate(ctx, target.URL, o.opts.NavTimeout); err != nil {
		return "", err
	}

	if session.DetectCaptcha(ctx) {
		return "", engine.NewError(engine.KindCaptchaBlocked,
			fmt.Sprintf("challenge page at %s", target.URL), nil).WithRetry()
	}

	if target.RequiresDynamic {
		timeout := o.opts.DynamicTimeout
		if target.EstimatedLoadSec > 0 {
			timeout = time.Duration(target.EstimatedLoadSec) * time.Second
		}
		session.AwaitDynamicContent(ctx, timeout)
		session.ScrollToBottom(ctx, o.opts.MaxScrolls)
	}

	return session.HTML(ctx)
}

func (o *Orchestrator) cachedSnapshot(url string) (string, bool) {
	if o.deps.Snapshots == nil {
		return "", false
	}
	snap, ok := o.deps.Snapshots.Get(url)
	if !ok {
		return "", false
	}
	return snap.HTML, true
}

// aggregate folds the slots into an Outcome, preserving target order
func (o *Orchestrator) aggregate(slots []slot, reqs models.Requirements, elapsed time.Duration) *models.Outcome {
	outcome := &models.Outcome{
		Records:    []*models.Record{},
		ElapsedSec: elapsed.Seconds(),
	}
	if reqs.KeepHTML {
		outcome.PageSnapshots = make(map[string]string)
	}

	for _, s := range slots {
		if s.err != nil {
			outcome.Failed = append(outcome.Failed, models.FailedTarget{
				URL:         s.target.URL,
				Domain:      s.target.Domain,
				ErrorKind:   string(engine.KindOf(s.err)),
				ErrorDetail: s.err.Error(),
			})
			log.Warn().
				Str("url", s.target.URL).
				Str("kind", string(engine.KindOf(s.err))).
				Err(s.err).
				Msg("Target failed")
			continue
		}

		outcome.Succeeded++
		outcome.Records = append(outcome.Records, s.records...)
		if reqs.KeepHTML && s.html != "" {
			outcome.PageSnapshots[s.target.URL] = s.html
		}
	}

	if reqs.MaxItems > 0 && len(outcome.Records) > reqs.MaxItems {
		outcome.Records = outcome.Records[:reqs.MaxItems]
	}

	if total := len(slots); total > 0 {
		outcome.SuccessRate = float64(outcome.Succeeded) / float64(total)
	}

	log.Info().
		Int("targets", len(slots)).
		Int("succeeded", outcome.Succeeded).
		Int("records", len(outcome.Records)).
		Float64("elapsed_sec", outcome.ElapsedSec).
		Msg("Orchestration complete")

	return outcome
}
