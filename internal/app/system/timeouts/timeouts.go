// Package timeouts provides centralized context deadlines for handler I/O.
//
// Every proxy API call and Mongo operation in a handler runs under
// context.WithTimeout with one of these tiers, so adjusting a deadline is a
// one-place change.
//
// Tier guidance for this console:
//   - Ping: connectivity probes (health endpoint's Mongo ping, proxy
//     liveness check)
//   - Short: single-document store operations (audit writes, SSO cache
//     reads, OAuth state validation)
//   - Medium: proxy reads behind a page or widget (user lists, spend
//     summaries, settings)
//   - Long: proxy mutations and the orchestrator's widget fan-out
package timeouts

import (
	"os"
	"sync"
	"time"
)

// Default tier values, used unless overridden.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the deadline for connectivity probes.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the deadline for single-document store operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the deadline for proxy reads behind a page or widget.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the deadline for proxy mutations and full dashboard loads.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Config holds tier overrides. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores every tier to its default. Used by tests.
func Reset() {
	Configure(Config{DefaultPing, DefaultShort, DefaultMedium, DefaultLong})
}

// ConfigureFromEnv applies overrides from GATELENS_TIMEOUT_PING, _SHORT,
// _MEDIUM, and _LONG (duration strings like "5s"). Unset or unparsable
// values keep the current setting. Returns the number of tiers overridden.
func ConfigureFromEnv() int {
	var cfg Config
	configured := 0
	for _, tier := range []struct {
		env string
		dst *time.Duration
	}{
		{"GATELENS_TIMEOUT_PING", &cfg.Ping},
		{"GATELENS_TIMEOUT_SHORT", &cfg.Short},
		{"GATELENS_TIMEOUT_MEDIUM", &cfg.Medium},
		{"GATELENS_TIMEOUT_LONG", &cfg.Long},
	} {
		v := os.Getenv(tier.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*tier.dst = d
			configured++
		}
	}
	Configure(cfg)
	return configured
}
