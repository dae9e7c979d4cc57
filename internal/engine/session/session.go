// Package session drives one stealth browser context per scrape target:
// fingerprint masking, resource blocking, navigation, dynamic-content
// waits and captcha detection.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/internal/engine"
)

// State tracks the session lifecycle
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateNavigating
	StateWaiting
	StateExtracting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateNavigating:
		return "navigating"
	case StateWaiting:
		return "waiting"
	case StateExtracting:
		return "extracting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options tunes session behavior
type Options struct {
	// UserAgent overrides the per-session random identity when set
	UserAgent string
	// ExtraHeaders are merged over the default realistic header set
	ExtraHeaders map[string]string
	// BlockResources aborts image/stylesheet/font/media requests
	BlockResources bool
	// SettleDelay is the pause after DOM-ready before navigation returns
	SettleDelay time.Duration
	// DynamicSettle is the fixed pause after network idle
	DynamicSettle time.Duration
	// CaptchaGrace is how long to sleep when a challenge is detected
	CaptchaGrace time.Duration
}

func (o *Options) withDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 300 * time.Millisecond
	}
	if o.DynamicSettle <= 0 {
		o.DynamicSettle = 3 * time.Second
	}
	if o.CaptchaGrace <= 0 {
		o.CaptchaGrace = 5 * time.Second
	}
}

// ChromeSession implements engine.Session over a chromedp context
type ChromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	mu    sync.Mutex
	state State

	inflight  map[network.RequestID]struct{}
	lastEvent time.Time

	closeOnce sync.Once
}

// NewFactory returns a factory that opens one isolated, stealth-
// configured browser context per call against the shared allocator.
func NewFactory(alloc *Allocator, opts Options) engine.SessionFactory {
	opts.withDefaults()
	return func() (engine.Session, error) {
		allocCtx, err := alloc.Context()
		if err != nil {
			return nil, err
		}
		return newSession(allocCtx, opts)
	}
}

func newSession(allocCtx context.Context, opts Options) (*ChromeSession, error) {
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		state:    StateCreated,
		inflight: make(map[network.RequestID]struct{}),
	}

	s.listen()

	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}

	s.setState(StateInitialized)
	return s, nil
}

// init applies the stealth configuration to the fresh context
func (s *ChromeSession) init() error {
	ua := s.opts.UserAgent
	if ua == "" {
		ua = RandomUserAgent()
	}

	headers := make(network.Headers, len(defaultHeaders)+len(s.opts.ExtraHeaders))
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	for k, v := range s.opts.ExtraHeaders {
		headers[k] = v
	}

	tasks := []chromedp.Action{
		network.Enable(),
		emulation.SetUserAgentOverride(ua).WithAcceptLanguage("en-US,en"),
		chromedp.EmulateViewport(1920, 1080),
		network.SetExtraHTTPHeaders(headers),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}

	if s.opts.BlockResources {
		tasks = append(tasks, fetch.Enable().WithPatterns([]*fetch.RequestPattern{
			{URLPattern: "*", RequestStage: fetch.RequestStageRequest},
		}))
	}

	if err := chromedp.Run(s.ctx, tasks...); err != nil {
		return fmt.Errorf("session init failed: %w", err)
	}

	log.Debug().Str("user_agent", ua).Msg("Stealth session initialized")
	return nil
}

// listen wires the network bookkeeping and, when enabled, the
// resource-blocking interceptor
func (s *ChromeSession) listen() {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventRequestWillBeSent:
			s.trackStart(ev.RequestID)
		case *network.EventLoadingFinished:
			s.trackDone(ev.RequestID)
		case *network.EventLoadingFailed:
			s.trackDone(ev.RequestID)
		case *fetch.EventRequestPaused:
			go s.handlePaused(ev)
		}
	})
}

func (s *ChromeSession) handlePaused(ev *fetch.EventRequestPaused) {
	c := chromedp.FromContext(s.ctx)
	if c == nil || c.Target == nil {
		return
	}
	ectx := cdp.WithExecutor(s.ctx, c.Target)

	switch ev.ResourceType {
	case network.ResourceTypeImage,
		network.ResourceTypeStylesheet,
		network.ResourceTypeFont,
		network.ResourceTypeMedia:
		_ = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
	default:
		_ = fetch.ContinueRequest(ev.RequestID).Do(ectx)
	}
}

func (s *ChromeSession) trackStart(id network.RequestID) {
	s.mu.Lock()
	s.inflight[id] = struct{}{}
	s.lastEvent = time.Now()
	s.mu.Unlock()
}

func (s *ChromeSession) trackDone(id network.RequestID) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.lastEvent = time.Now()
	s.mu.Unlock()
}

func (s *ChromeSession) quietSince() (int, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight), time.Since(s.lastEvent)
}

func (s *ChromeSession) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

func (s *ChromeSession) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Navigate loads the URL, waiting for DOM-ready plus a short settle.
// A hard timeout bounds the whole call so one stuck target cannot stall
// the request.
func (s *ChromeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if s.currentState() == StateClosed {
		return engine.NewError(engine.KindNavigation, "session already closed", nil)
	}
	s.setState(StateNavigating)

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	// Propagate caller cancellation without tying chromedp to its ctx
	stop := linkContexts(ctx, cancel)
	defer stop()

	start := time.Now()
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return engine.NewError(engine.KindNavigation,
			fmt.Sprintf("navigate %s", url), err).WithRetry()
	}

	sleepCtx(tctx, s.opts.SettleDelay)

	log.Debug().Str("url", url).Dur("elapsed", time.Since(start)).Msg("Navigation complete")
	return nil
}

// AwaitDynamicContent waits for network idle up to timeout, applies the
// fixed settle delay, then polls the loading indicators until each
// detaches. Best effort throughout.
func (s *ChromeSession) AwaitDynamicContent(ctx context.Context, timeout time.Duration) {
	s.setState(StateWaiting)

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s.waitNetworkIdle(ctx, timeout)
	sleepCtx(ctx, s.opts.DynamicSettle)

	for _, sel := range loadingSelectors {
		s.waitDetached(ctx, sel, 5*time.Second)
	}
}

// waitNetworkIdle blocks until no request has been in flight for 500ms,
// or the timeout expires
func (s *ChromeSession) waitNetworkIdle(ctx context.Context, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			inflight, quiet := s.quietSince()
			if inflight == 0 && quiet >= 500*time.Millisecond {
				return
			}
			if time.Now().After(deadline) {
				log.Debug().Int("inflight", inflight).Msg("Network idle wait timed out")
				return
			}
		}
	}
}

// waitDetached polls until the selector matches nothing. Absence of the
// selector was never an error to begin with.
func (s *ChromeSession) waitDetached(ctx context.Context, selector string, budget time.Duration) {
	deadline := time.Now().Add(budget)
	for {
		if ctx.Err() != nil || s.ctx.Err() != nil || time.Now().After(deadline) {
			return
		}
		var count int
		err := chromedp.Run(s.ctx, chromedp.Evaluate(
			fmt.Sprintf(`document.querySelectorAll(%q).length`, selector), &count))
		if err != nil || count == 0 {
			return
		}
		sleepCtx(ctx, 250*time.Millisecond)
	}
}

// ScrollToBottom walks infinite-scroll pages until the document height
// stops growing or maxScrolls is reached
func (s *ChromeSession) ScrollToBottom(ctx context.Context, maxScrolls int) {
	if maxScrolls <= 0 {
		maxScrolls = 10
	}
	s.setState(StateWaiting)

	for i := 0; i < maxScrolls; i++ {
		if ctx.Err() != nil || s.ctx.Err() != nil {
			return
		}

		var before, after int
		if err := chromedp.Run(s.ctx,
			chromedp.Evaluate(`document.body.scrollHeight`, &before),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, nil),
		); err != nil {
			return
		}

		sleepCtx(ctx, 2*time.Second)

		if err := chromedp.Run(s.ctx, chromedp.Evaluate(`document.body.scrollHeight`, &after)); err != nil {
			return
		}
		if after == before {
			return
		}
	}
}

// DetectCaptcha scans the rendered page text for challenge indicators.
// On a hit it sleeps the grace period (a stand-in for manual solving,
// nothing is bypassed) and reports true.
func (s *ChromeSession) DetectCaptcha(ctx context.Context) bool {
	var text string
	if err := chromedp.Run(s.ctx, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return false
	}

	lower := strings.ToLower(text)
	for _, indicator := range captchaIndicators {
		if strings.Contains(lower, indicator) {
			log.Warn().Str("indicator", indicator).Msg("Captcha detected, waiting grace period")
			sleepCtx(ctx, s.opts.CaptchaGrace)
			return true
		}
	}
	return false
}

// HTML returns the rendered page snapshot
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	s.setState(StateExtracting)

	var html string
	err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err != nil {
		return "", engine.NewError(engine.KindNavigation, "snapshot rendered page", err).WithRetry()
	}
	return html, nil
}

// Close releases the browser context. Safe to call multiple times and
// guaranteed to run even if navigation or extraction failed.
func (s *ChromeSession) Close() {
	s.closeOnce.Do(func() {
		s.setState(StateClosed)
		s.cancel()
		log.Debug().Msg("Session closed")
	})
}

// sleepCtx sleeps for d unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// linkContexts cancels via cancelFn when outer is done; the returned
// stop func detaches the link
func linkContexts(outer context.Context, cancelFn context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-outer.Done():
			cancelFn()
		case <-done:
		}
	}()
	return func() { close(done) }
}
