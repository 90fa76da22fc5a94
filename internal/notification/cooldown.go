// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"sync"
	"time"

	"github.com/tomtom215/ddoswatch/internal/metrics"
)

// CooldownState remembers when each target was last alerted.
// It is the only state shared across detection cycles.
type CooldownState struct {
	mu         sync.Mutex
	cooldown   time.Duration
	evictAfter int
	last       map[string]time.Time
}

// NewCooldownState creates cooldown tracking. Entries idle for more than
// evictAfter cooldown periods are dropped by Prune; values below 1 are
// raised to 1 so pruning never shortens an active cooldown.
func NewCooldownState(cooldown time.Duration, evictAfter int) *CooldownState {
	if evictAfter < 1 {
		evictAfter = 1
	}
	return &CooldownState{
		cooldown:   cooldown,
		evictAfter: evictAfter,
		last:       make(map[string]time.Time),
	}
}

// Cooldown returns the configured cooldown duration.
func (s *CooldownState) Cooldown() time.Duration {
	return s.cooldown
}

// Allow reports whether target may be alerted at now.
func (s *CooldownState) Allow(target string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.last[target]
	return !ok || now.Sub(last) >= s.cooldown
}

// Record restarts the cooldown window of target.
func (s *CooldownState) Record(target string, now time.Time) {
	s.mu.Lock()
	s.last[target] = now
	n := len(s.last)
	s.mu.Unlock()

	metrics.CooldownEntries.Set(float64(n))
}

// LastAlerted returns when target was last alerted.
func (s *CooldownState) LastAlerted(target string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[target]
	return t, ok
}

// Prune drops entries older than evictAfter cooldown periods and returns
// how many were removed.
func (s *CooldownState) Prune(now time.Time) int {
	horizon := time.Duration(s.evictAfter) * s.cooldown

	s.mu.Lock()
	removed := 0
	for target, last := range s.last {
		if now.Sub(last) > horizon {
			delete(s.last, target)
			removed++
		}
	}
	n := len(s.last)
	s.mu.Unlock()

	if removed > 0 {
		metrics.CooldownEvictions.Add(float64(removed))
	}
	metrics.CooldownEntries.Set(float64(n))
	return removed
}

// Len returns the number of tracked targets.
func (s *CooldownState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}
