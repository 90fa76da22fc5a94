// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package reputation

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ddoswatch/internal/cache"
	"github.com/tomtom215/ddoswatch/internal/detection"
	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/metrics"
)

// lookupFunc performs the remote lookup. Replaced in tests.
type lookupFunc func(ctx context.Context, addr netip.Addr) (*detection.ReputationResult, error)

// Checker implements detection.ReputationChecker with caching, quota pacing
// and a circuit breaker in front of the AbuseIPDB client.
type Checker struct {
	lookup  lookupFunc
	cache   *cache.LRU[*detection.ReputationResult]
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*detection.ReputationResult]
	now     func() time.Time

	mu           sync.Mutex
	blockedUntil time.Time
}

// NewChecker creates a Checker backed by an AbuseIPDB client.
func NewChecker(cfg Config) (*Checker, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("abuseipdb api key is required")
	}
	return newChecker(cfg, NewClient(cfg).Lookup), nil
}

func newChecker(cfg Config, lookup lookupFunc) *Checker {
	defaults := DefaultConfig()
	if cfg.DailyQuota <= 0 {
		cfg.DailyQuota = defaults.DailyQuota
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}

	every := 24 * time.Hour / time.Duration(cfg.DailyQuota)

	return &Checker{
		lookup:  lookup,
		cache:   cache.NewLRU[*detection.ReputationResult](cfg.CacheSize, cfg.CacheTTL),
		limiter: rate.NewLimiter(rate.Every(every), cfg.Burst),
		breaker: newBreaker(),
		now:     time.Now,
	}
}

// Check returns the reputation of address.
//
// Addresses outside global unicast space are never sent to the API and have
// no reputation data (nil result, nil error). Errors from quota exhaustion or an open circuit wrap
// detection.ErrCheckerUnavailable.
func (c *Checker) Check(ctx context.Context, address string) (*detection.ReputationResult, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	addr = addr.Unmap()

	if !isLookupCandidate(addr) {
		metrics.ReputationRequests.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	key := addr.String()
	if cached, ok := c.cache.Get(key); ok {
		metrics.ReputationRequests.WithLabelValues("cached").Inc()
		return cached, nil
	}

	if err := c.reserve(); err != nil {
		metrics.ReputationRequests.WithLabelValues("quota").Inc()
		return nil, err
	}

	result, err := execute(c.breaker, func() (*detection.ReputationResult, error) {
		return c.lookup(ctx, addr)
	})
	if err != nil {
		var rle *RateLimitError
		if errors.As(err, &rle) {
			c.block(rle.RetryAfter)
			metrics.ReputationRequests.WithLabelValues("quota").Inc()
		} else {
			metrics.ReputationRequests.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	metrics.ReputationRequests.WithLabelValues("remote").Inc()
	c.cache.Add(key, result)
	return result, nil
}

// CleanupExpired drops expired cache entries and returns how many were removed.
func (c *Checker) CleanupExpired() int {
	return c.cache.CleanupExpired()
}

// reserve takes one token from the local quota unless the API told us to back off.
func (c *Checker) reserve() error {
	c.mu.Lock()
	blocked := c.blockedUntil
	c.mu.Unlock()

	now := c.now()
	if now.Before(blocked) {
		return ErrQuotaExhausted
	}
	if !c.limiter.AllowN(now, 1) {
		return ErrQuotaExhausted
	}
	return nil
}

func (c *Checker) block(d time.Duration) {
	until := c.now().Add(d)

	c.mu.Lock()
	if until.After(c.blockedUntil) {
		c.blockedUntil = until
	}
	c.mu.Unlock()

	logging.Warn().Time("until", until).Msg("AbuseIPDB quota exhausted, pausing lookups")
}

// isLookupCandidate reports whether addr is publicly routable.
func isLookupCandidate(addr netip.Addr) bool {
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsMulticast(),
		!addr.IsGlobalUnicast():
		return false
	}
	return true
}
