// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"testing"
	"time"
)

func TestCooldownState_Allow(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewCooldownState(5*time.Minute, 4)

	if !s.Allow("192.0.2.10", base) {
		t.Fatal("unknown target should be allowed")
	}

	s.Record("192.0.2.10", base)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"immediately after", 0, false},
		{"just before expiry", 5*time.Minute - time.Second, false},
		{"exactly at expiry", 5 * time.Minute, true},
		{"after expiry", 6 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Allow("192.0.2.10", base.Add(tt.elapsed)); got != tt.want {
				t.Errorf("Allow() = %v, want %v", got, tt.want)
			}
		})
	}

	if !s.Allow("192.0.2.11", base) {
		t.Error("cooldown must be tracked per target")
	}
}

func TestCooldownState_RecordRestartsWindow(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewCooldownState(time.Minute, 4)

	s.Record("192.0.2.10", base)
	s.Record("192.0.2.10", base.Add(50*time.Second))

	if s.Allow("192.0.2.10", base.Add(70*time.Second)) {
		t.Error("second record should restart the window")
	}
	last, ok := s.LastAlerted("192.0.2.10")
	if !ok || !last.Equal(base.Add(50*time.Second)) {
		t.Errorf("LastAlerted() = %v, %v", last, ok)
	}
}

func TestCooldownState_Prune(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewCooldownState(time.Minute, 4)

	s.Record("old", base)
	s.Record("recent", base.Add(3*time.Minute))

	if removed := s.Prune(base.Add(4 * time.Minute)); removed != 0 {
		t.Errorf("entry exactly at the horizon should be kept, removed %d", removed)
	}

	if removed := s.Prune(base.Add(4*time.Minute + time.Second)); removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.LastAlerted("recent"); !ok {
		t.Error("recent entry should survive pruning")
	}
}

func TestCooldownState_PruneNeverShortensCooldown(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewCooldownState(time.Minute, 0)

	s.Record("192.0.2.10", base)
	s.Prune(base.Add(30 * time.Second))

	if s.Allow("192.0.2.10", base.Add(30*time.Second)) {
		t.Error("pruning must not evict an entry inside its cooldown")
	}
}
