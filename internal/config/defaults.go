package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultNavTimeout        = 30 * time.Second
	DefaultDynamicTimeout    = 10 * time.Second
	DefaultConcurrency       = 3
	DefaultMaxConcurrency    = 10
	DefaultMaxAttempts       = 3
	DefaultRetryDelay        = 2 * time.Second
	DefaultMaxScrolls        = 5
	DefaultRateLimitRPS      = 1.0
	DefaultRateLimitBurst    = 3
	DefaultCacheTTL          = 5 * time.Minute
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB
	DefaultHeadless          = true
	DefaultBlockResources    = true
	DefaultRespectRobots     = true
	DefaultQuotaLimit        = 5
	DefaultRobotsUserAgent   = "promptscrape"
)
