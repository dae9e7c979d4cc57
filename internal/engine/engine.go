// Package engine defines the contracts between the scraping pipeline's
// stages and the error taxonomy they share.
package engine

import (
	"context"
	"time"

	"github.com/law-makers/promptscrape/pkg/models"
)

// Session is one isolated browser context driving a single target.
// Sessions are never shared across concurrent targets; the orchestrator
// creates one per attempt and must always Close it.
type Session interface {
	// Navigate loads the URL, waiting for DOM-ready plus a bounded settle
	// time. Timeouts and network failures return a NavigationError.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// AwaitDynamicContent waits for network idle up to timeout, then a
	// fixed settle delay, then polls known loading indicators until they
	// detach. Best effort: it never fails.
	AwaitDynamicContent(ctx context.Context, timeout time.Duration)

	// ScrollToBottom walks infinite-scroll pages until the height stops
	// growing or maxScrolls is reached.
	ScrollToBottom(ctx context.Context, maxScrolls int)

	// DetectCaptcha scans the rendered page for challenge indicators.
	// On detection it sleeps a short grace period and reports true.
	DetectCaptcha(ctx context.Context) bool

	// HTML returns the rendered page snapshot
	HTML(ctx context.Context) (string, error)

	// Close releases the context. Idempotent.
	Close()
}

// SessionFactory opens a fresh stealth session
type SessionFactory func() (Session, error)

// Extractor pulls structured records out of a rendered page snapshot.
// The target supplies record provenance. Implementations never return
// an error: per-field and per-record failures are swallowed, worst
// case is an empty slice.
type Extractor interface {
	Extract(html string, target models.TargetDescriptor, reqs models.Requirements) []*models.Record
}

// PolicyGate decides whether a target may be fetched at all
// (robots.txt for literal-URL targets).
type PolicyGate interface {
	Allowed(ctx context.Context, url string) bool
}
