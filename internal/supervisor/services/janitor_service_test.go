// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) CleanupExpired() int {
	return int(s.calls.Add(1))
}

func TestJanitorService_Sweeps(t *testing.T) {
	sweeper := &countingSweeper{}
	svc := NewJanitorService("reputation-cache-janitor", sweeper, time.Second)
	svc.interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline exceeded", err)
	}
	if sweeper.calls.Load() < 2 {
		t.Errorf("sweeps = %d, want at least 2", sweeper.calls.Load())
	}
	if svc.String() != "reputation-cache-janitor" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestNewJanitorService_DefaultInterval(t *testing.T) {
	svc := NewJanitorService("j", &countingSweeper{}, 0)
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
}
