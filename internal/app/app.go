// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/internal/cache"
	"github.com/law-makers/promptscrape/internal/catalog"
	"github.com/law-makers/promptscrape/internal/config"
	"github.com/law-makers/promptscrape/internal/engine"
	"github.com/law-makers/promptscrape/internal/engine/extract"
	"github.com/law-makers/promptscrape/internal/engine/orchestrator"
	"github.com/law-makers/promptscrape/internal/engine/session"
	"github.com/law-makers/promptscrape/internal/prompt"
	"github.com/law-makers/promptscrape/internal/proxy"
	"github.com/law-makers/promptscrape/internal/quota"
	"github.com/law-makers/promptscrape/internal/ratelimit"
	"github.com/law-makers/promptscrape/internal/resolver"
	"github.com/law-makers/promptscrape/internal/robots"
	"github.com/law-makers/promptscrape/internal/service"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config       *config.Config
	Logger       *zerolog.Logger
	Catalog      *catalog.Catalog
	Analyzer     *prompt.Analyzer
	Resolver     *resolver.Resolver
	Cache        cache.Cache
	RateLimiter  ratelimit.RateLimiter
	Robots       *robots.Agent
	Quota        *quota.Tracker
	Proxies      *proxy.Pool
	Orchestrator *orchestrator.Orchestrator
	Service      *service.Service

	allocMu    sync.Mutex
	allocator  *session.Allocator
	allocProxy string

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// The browser allocator is NOT started here: it is created lazily on
// the first session so analysis-only commands never launch Chrome.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := initLogger(cfg)

	cat := catalog.Default()
	analyzer := prompt.NewAnalyzer(cat)
	res := resolver.New(cat)

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Snapshot cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	robotsAgent := robots.NewAgent(robots.Options{
		UserAgent: cfg.RobotsUserAgent,
		Respect:   cfg.RespectRobots,
	})

	tracker := quota.NewTracker(cfg.QuotaPath, cfg.QuotaLimit)
	proxyPool := proxy.NewPool(cfg.Proxies)

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Catalog:     cat,
		Analyzer:    analyzer,
		Resolver:    res,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		Robots:      robotsAgent,
		Quota:       tracker,
		Proxies:     proxyPool,
		startTime:   time.Now(),
	}

	orch := orchestrator.New(orchestrator.Deps{
		Sessions:  app.sessionFactory(),
		Extractor: extract.NewExtractor(true),
		Gate:      robotsAgent,
		Limiter:   rateLimiter,
		Snapshots: memCache,
	}, orchestrator.Options{
		Concurrency:    cfg.Concurrency,
		MaxAttempts:    cfg.MaxAttempts,
		RetryDelay:     cfg.RetryDelay,
		NavTimeout:     cfg.NavTimeout,
		DynamicTimeout: cfg.DynamicTimeout,
		MaxScrolls:     cfg.MaxScrolls,
		CacheTTL:       cfg.CacheTTL,
	})
	app.Orchestrator = orch
	app.Service = service.New(analyzer, res, orch, tracker)

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// initLogger configures the global zerolog output and level
func initLogger(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	return logger
}

// sessionFactory returns a factory that starts the shared allocator on
// first use, then opens one stealth session per call. A failed open
// benches the allocator's proxy and tears the allocator down so the
// next call rotates onto the next healthy proxy.
func (a *Application) sessionFactory() engine.SessionFactory {
	return func() (engine.Session, error) {
		alloc, err := a.ensureAllocator()
		if err != nil {
			return nil, err
		}
		factory := session.NewFactory(alloc, session.Options{
			UserAgent:      a.Config.UserAgent,
			ExtraHeaders:   a.Config.ExtraHeaders,
			BlockResources: a.Config.BlockResources,
		})
		s, err := factory()
		if err != nil {
			a.benchAllocator()
			return nil, err
		}
		a.markAllocatorHealthy()
		return s, nil
	}
}

// benchAllocator marks the current proxy failed and discards the
// allocator so ensureAllocator picks the next one.
func (a *Application) benchAllocator() {
	a.allocMu.Lock()
	defer a.allocMu.Unlock()

	if a.allocator == nil {
		return
	}
	if a.allocProxy != "" {
		a.Proxies.MarkFailed(a.allocProxy)
		a.Logger.Warn().Str("proxy", a.allocProxy).Msg("Session open failed, rotating proxy")
	}
	a.allocator.Close()
	a.allocator = nil
	a.allocProxy = ""
}

func (a *Application) markAllocatorHealthy() {
	a.allocMu.Lock()
	defer a.allocMu.Unlock()

	if a.allocProxy != "" {
		a.Proxies.MarkHealthy(a.allocProxy)
	}
}

// ensureAllocator lazily creates the browser allocator
func (a *Application) ensureAllocator() (*session.Allocator, error) {
	a.allocMu.Lock()
	defer a.allocMu.Unlock()

	if a.allocator != nil {
		return a.allocator, nil
	}

	a.Logger.Debug().Msg("Initializing browser allocator on demand")
	proxyURL := a.Proxies.Next()
	alloc := session.NewAllocator(session.AllocatorOptions{
		Headless:   a.Config.Headless,
		ChromePath: a.Config.ChromePath,
		Proxy:      proxyURL,
	})

	a.allocator = alloc
	a.allocProxy = proxyURL
	a.Logger.Info().Msg("Browser allocator initialized on demand")
	return alloc, nil
}

// Close gracefully shuts down the application and all its resources.
//
// Any errors during shutdown are logged but do not prevent other
// shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	a.allocMu.Lock()
	if a.allocator != nil {
		a.allocator.Close()
		a.allocator = nil
		a.allocProxy = ""
	}
	a.allocMu.Unlock()

	if a.Cache != nil {
		a.Cache.Close()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
