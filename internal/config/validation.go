package config

import "fmt"

func validate(c *Config) error {
	if c.NavTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if c.Concurrency <= 0 || c.Concurrency > DefaultMaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", DefaultMaxConcurrency)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be > 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.QuotaLimit <= 0 {
		return fmt.Errorf("quota limit must be > 0")
	}
	return nil
}
