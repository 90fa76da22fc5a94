// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/ddoswatch/internal/logging"
)

// Sweeper drops expired entries and returns how many were removed.
// Satisfied by *reputation.Checker.
type Sweeper interface {
	CleanupExpired() int
}

// JanitorService sweeps an expiring cache on a fixed interval.
type JanitorService struct {
	sweeper  Sweeper
	interval time.Duration
	name     string
}

// NewJanitorService creates a janitor. Intervals below one second default to 10 minutes.
func NewJanitorService(name string, sweeper Sweeper, interval time.Duration) *JanitorService {
	if interval < time.Second {
		interval = 10 * time.Minute
	}
	return &JanitorService{
		sweeper:  sweeper,
		interval: interval,
		name:     name,
	}
}

// Serve implements suture.Service.
func (s *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.CleanupExpired(); n > 0 {
				logging.Debug().Str("service", s.name).Int("removed", n).Msg("Expired cache entries removed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *JanitorService) String() string {
	return s.name
}
