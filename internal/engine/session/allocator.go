package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Allocator owns the shared Chrome process all sessions attach to.
// Individual sessions get isolated browser contexts from it, so one
// stuck target can be torn down without touching its siblings.
type Allocator struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// AllocatorOptions configures the shared browser process
type AllocatorOptions struct {
	Headless   bool
	ChromePath string
	Proxy      string
	ExtraArgs  []chromedp.ExecAllocatorOption
}

// NewAllocator starts the shared exec allocator with stealth-oriented
// flags. The user agent is applied per-session, not here, so each
// target can carry its own randomized identity.
func NewAllocator(opts AllocatorOptions) *Allocator {
	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-ipc-flooding-protection", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		// The automation probes sites actually check
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.Flag("media-cache-size", "0"),
	}

	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	allocOpts = append(allocOpts, opts.ExtraArgs...)

	ctx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	log.Debug().Str("chrome_path", chromePath).Bool("headless", opts.Headless).Msg("Browser allocator created")

	return &Allocator{ctx: ctx, cancel: cancel}
}

// Context returns the allocator context new sessions attach to
func (a *Allocator) Context() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, fmt.Errorf("browser allocator is closed")
	}
	return a.ctx, nil
}

// Close shuts down the browser process. Idempotent.
func (a *Allocator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.cancel()
	log.Debug().Msg("Browser allocator closed")
}
