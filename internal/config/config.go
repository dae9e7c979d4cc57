package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Browser
	Headless       bool
	ChromePath     string
	UserAgent      string // empty means a random identity per session
	Proxies        []string
	BlockResources bool
	ExtraHeaders   map[string]string

	// Orchestration
	Concurrency    int
	MaxAttempts    int
	RetryDelay     time.Duration
	NavTimeout     time.Duration
	DynamicTimeout time.Duration
	MaxScrolls     int

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// Policy
	RespectRobots   bool
	RobotsUserAgent string
	QuotaPath       string
	QuotaLimit      int
}

// Load builds a Config by combining defaults, environment variables,
// and CLI flags. Caller should pass the root *cobra.Command so flags
// can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		Headless:          DefaultHeadless,
		BlockResources:    DefaultBlockResources,
		Concurrency:       DefaultConcurrency,
		MaxAttempts:       DefaultMaxAttempts,
		RetryDelay:        DefaultRetryDelay,
		NavTimeout:        DefaultNavTimeout,
		DynamicTimeout:    DefaultDynamicTimeout,
		MaxScrolls:        DefaultMaxScrolls,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		RespectRobots:     DefaultRespectRobots,
		RobotsUserAgent:   DefaultRobotsUserAgent,
		QuotaPath:         defaultQuotaPath(),
		QuotaLimit:        DefaultQuotaLimit,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("PROMPTSCRAPE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("PROMPTSCRAPE_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("PROMPTSCRAPE_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("PROMPTSCRAPE_QUOTA_PATH"); v != "" {
		cfg.QuotaPath = v
	}
	if v := os.Getenv("PROMPTSCRAPE_QUOTA_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QuotaLimit = n
		}
	}
	if v := os.Getenv("PROMPTSCRAPE_NO_ROBOTS"); v == "1" || v == "true" {
		cfg.RespectRobots = false
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxies = splitList(s)
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.NavTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("concurrency"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.Concurrency = n
			}
		}
		if f := cmd.Flags().Lookup("no-headless"); f != nil {
			if f.Value.String() == "true" {
				cfg.Headless = false
			}
		}
		if f := cmd.Flags().Lookup("no-robots"); f != nil {
			if f.Value.String() == "true" {
				cfg.RespectRobots = false
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// defaultQuotaPath places the quota ledger under the user config dir,
// falling back to the working directory
func defaultQuotaPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".promptscrape_quota.json"
	}
	return filepath.Join(dir, "promptscrape", "quota.json")
}

// splitList parses a comma-separated value into trimmed entries
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
