package fetcher

import (
	"fmt"
	"time"

	"campaign-radar/internal/pkg/config"
)

// Config holds the configuration for source fetching.
//
// Security settings:
//   - DenyPrivateIPs: blocks endpoints resolving to private IP addresses
//   - MaxBodySize: rejects oversized responses during body reading
//   - MaxRedirects: bounds redirect chains, each target revalidated
//   - Timeout: bounds a single HTTP request
//
// Politeness settings:
//   - PerHostDelay: minimum spacing between requests to the same host
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Should be well below the overall run deadline.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Enforced while reading, not from the Content-Length header.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Each redirect target is validated for SSRF before following.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether endpoints resolving to
	// private/loopback/link-local IPs are rejected.
	// Should always be true in production.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent identifies the crawler to listing sites.
	// Default: "CampaignRadarBot/1.0"
	UserAgent string

	// PerHostDelay is the minimum interval between two requests to the
	// same host. Zero disables pacing.
	// Default: 1s
	PerHostDelay time.Duration
}

// DefaultConfig returns production-ready defaults for source fetching.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "CampaignRadarBot/1.0",
		PerHostDelay:   1 * time.Second,
	}
}

// Validate checks the configuration values.
//
// Rules:
//   - Timeout: > 0
//   - MaxBodySize: 1KB-100MB
//   - MaxRedirects: 0-10
//   - PerHostDelay: >= 0
//   - UserAgent: non-empty
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.PerHostDelay < 0 {
		return fmt.Errorf("per-host delay must be non-negative, got %v", c.PerHostDelay)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables,
// falling back to defaults for unset or invalid values.
//
// Environment variables:
//   - FETCH_TIMEOUT: duration string, e.g. "15s" (default: 15s)
//   - FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - FETCH_MAX_REDIRECTS: integer (default: 5)
//   - FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
//   - FETCH_USER_AGENT: string (default: "CampaignRadarBot/1.0")
//   - FETCH_PER_HOST_DELAY: duration string (default: 1s)
func LoadConfigFromEnv() (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string

	res := config.LoadEnvDuration("FETCH_TIMEOUT", cfg.Timeout, config.ValidatePositiveDuration)
	cfg.Timeout = res.Value.(time.Duration)
	warnings = append(warnings, res.Warnings...)

	res = config.LoadEnvInt("FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize), func(v int) error {
		return config.ValidateIntRange(v, 1024, 100*1024*1024)
	})
	cfg.MaxBodySize = int64(res.Value.(int))
	warnings = append(warnings, res.Warnings...)

	res = config.LoadEnvInt("FETCH_MAX_REDIRECTS", cfg.MaxRedirects, func(v int) error {
		return config.ValidateIntRange(v, 0, 10)
	})
	cfg.MaxRedirects = res.Value.(int)
	warnings = append(warnings, res.Warnings...)

	res = config.LoadEnvBool("FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	cfg.DenyPrivateIPs = res.Value.(bool)
	warnings = append(warnings, res.Warnings...)

	cfg.UserAgent = config.LoadEnvString("FETCH_USER_AGENT", cfg.UserAgent)

	res = config.LoadEnvDuration("FETCH_PER_HOST_DELAY", cfg.PerHostDelay, nil)
	cfg.PerHostDelay = res.Value.(time.Duration)
	warnings = append(warnings, res.Warnings...)

	if err := cfg.Validate(); err != nil {
		warnings = append(warnings, fmt.Sprintf("fetch config invalid (%v), falling back to defaults", err))
		cfg = DefaultConfig()
	}

	return cfg, warnings
}
