// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package detection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockProvider is a TrafficStatsProvider with canned results.
type mockProvider struct {
	mu         sync.Mutex
	total      float64
	totalErr   error
	dests      []DestinationStat
	destErr    error
	totalCalls int
	destCalls  int
}

func (m *mockProvider) TotalExternalBitRate(_ context.Context, _ int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalCalls++
	return m.total, m.totalErr
}

func (m *mockProvider) DestinationStats(_ context.Context, _ int) ([]DestinationStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destCalls++
	if m.destErr != nil {
		return nil, m.destErr
	}
	out := make([]DestinationStat, len(m.dests))
	copy(out, m.dests)
	return out, nil
}

// mockChecker is a ReputationChecker that records every queried address.
type mockChecker struct {
	mu       sync.Mutex
	reported map[string]bool
	errs     map[string]error
	calls    []string
}

func (m *mockChecker) Check(_ context.Context, address string) (*ReputationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, address)
	if err, ok := m.errs[address]; ok {
		return nil, err
	}
	if m.reported[address] {
		return &ReputationResult{
			Address:         address,
			IsReported:      true,
			TotalReports:    42,
			ConfidenceScore: 97,
			CountryCode:     "NL",
			ISP:             "Example Transit",
		}, nil
	}
	return &ReputationResult{Address: address}, nil
}

func (m *mockChecker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testConfig() EngineConfig {
	return EngineConfig{
		WindowSeconds: 300,
		Thresholds: Thresholds{
			TotalExternalBitRate: 1e9,
			DestinationBitRate:   5e8,
			Entropy:              0.8,
		},
		QueryTimeout:  time.Second,
		LookupTimeout: time.Second,
	}
}

// highEntropyDest spreads traffic evenly across n sources.
func highEntropyDest(addr string, bps float64, n int) DestinationStat {
	stat := DestinationStat{DestinationAddress: addr, BitRate: bps, UniqueSourceCount: n}
	for i := 0; i < n; i++ {
		stat.SourceAddresses = append(stat.SourceAddresses, fmt.Sprintf("198.51.100.%d", i+1))
		stat.SourceByteWeights = append(stat.SourceByteWeights, 1000)
	}
	return stat
}

// lowEntropyDest puts 95% of the bytes on the first of six sources.
func lowEntropyDest(addr string, bps float64) DestinationStat {
	return DestinationStat{
		DestinationAddress: addr,
		BitRate:            bps,
		SourceAddresses:    []string{"192.0.2.66", "192.0.2.1", "192.0.2.2", "192.0.2.3", "192.0.2.4", "192.0.2.5"},
		SourceByteWeights:  []uint64{9500, 100, 100, 100, 100, 100},
		UniqueSourceCount:  6,
	}
}

func TestEngine_GlobalGate(t *testing.T) {
	tests := []struct {
		name  string
		total float64
	}{
		{"below threshold", 5e8},
		{"exactly at threshold", 1e9},
		{"zero traffic", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{
				total: tt.total,
				dests: []DestinationStat{highEntropyDest("203.0.113.10", 2e9, 10)},
			}
			checker := &mockChecker{}
			engine := NewEngine(testConfig(), provider, checker)

			report := engine.RunCycle(context.Background())

			if len(report.Events) != 0 {
				t.Errorf("events = %d, want 0", len(report.Events))
			}
			if provider.destCalls != 0 {
				t.Errorf("per-destination query issued %d times, want 0", provider.destCalls)
			}
			if checker.callCount() != 0 {
				t.Errorf("checker called %d times, want 0", checker.callCount())
			}
			if report.GlobalGateOpen {
				t.Error("GlobalGateOpen = true, want false")
			}
			if report.Window.TotalExternalBitRate != tt.total {
				t.Errorf("window total = %v, want %v", report.Window.TotalExternalBitRate, tt.total)
			}
		})
	}
}

func TestEngine_HighEntropyReputationDisabled(t *testing.T) {
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{highEntropyDest("203.0.113.10", 2e9, 20)},
	}
	engine := NewEngine(testConfig(), provider, nil)

	events := engine.Detect(context.Background())

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.TriggerReason != TriggerHighEntropy {
		t.Errorf("TriggerReason = %v, want %v", ev.TriggerReason, TriggerHighEntropy)
	}
	if ev.ReputationEvidence != nil {
		t.Errorf("ReputationEvidence = %+v, want nil", ev.ReputationEvidence)
	}
	if ev.Classification != ClassificationDistributed {
		t.Errorf("Classification = %v, want %v", ev.Classification, ClassificationDistributed)
	}
	if ev.AttackType != "DDoS" {
		t.Errorf("AttackType = %q, want DDoS", ev.AttackType)
	}
	if ev.DestinationAddress != "203.0.113.10" || ev.BitRate != 2e9 || ev.UniqueSourceCount != 20 {
		t.Errorf("event fields not copied from stats: %+v", ev)
	}
	if ev.ID == "" {
		t.Error("event ID is empty")
	}
	if engine.ReputationEnabled() {
		t.Error("ReputationEnabled() = true with nil checker")
	}
}

func TestEngine_ReportedSourceStopsIteration(t *testing.T) {
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{lowEntropyDest("203.0.113.20", 3e9)},
	}
	checker := &mockChecker{reported: map[string]bool{"192.0.2.66": true, "192.0.2.1": true}}
	engine := NewEngine(testConfig(), provider, checker)

	report := engine.RunCycle(context.Background())

	if len(report.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(report.Events))
	}
	ev := report.Events[0]
	if ev.TriggerReason != TriggerReputationReported {
		t.Errorf("TriggerReason = %v, want %v", ev.TriggerReason, TriggerReputationReported)
	}
	if ev.ReputationEvidence == nil || ev.ReputationEvidence.Address != "192.0.2.66" {
		t.Fatalf("ReputationEvidence = %+v, want 192.0.2.66", ev.ReputationEvidence)
	}
	if ev.Classification != ClassificationConcentrated || ev.AttackType != "DoS" {
		t.Errorf("Classification = %v (%s), want concentrated DoS", ev.Classification, ev.AttackType)
	}
	if got := checker.callCount(); got != 1 {
		t.Errorf("checker calls = %d (%v), want 1", got, checker.calls)
	}
	if !report.BudgetExhausted || report.ReputationLookups != 1 {
		t.Errorf("BudgetExhausted = %v, ReputationLookups = %d", report.BudgetExhausted, report.ReputationLookups)
	}
}

func TestEngine_BudgetSharedAcrossDestinations(t *testing.T) {
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{
			lowEntropyDest("203.0.113.20", 4e9),
			highEntropyDest("203.0.113.30", 3e9, 15),
		},
	}
	checker := &mockChecker{reported: map[string]bool{"192.0.2.66": true, "198.51.100.1": true}}
	engine := NewEngine(testConfig(), provider, checker)

	events := engine.Detect(context.Background())

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if got := checker.callCount(); got != 1 {
		t.Errorf("checker calls = %d (%v), want exactly 1 for the whole cycle", got, checker.calls)
	}
	if events[0].DestinationAddress != "203.0.113.20" || events[0].TriggerReason != TriggerReputationReported {
		t.Errorf("first event = %s/%s, want 203.0.113.20/reputation_reported",
			events[0].DestinationAddress, events[0].TriggerReason)
	}
	if events[1].DestinationAddress != "203.0.113.30" {
		t.Errorf("second event destination = %s, want 203.0.113.30", events[1].DestinationAddress)
	}
	if events[1].ReputationEvidence != nil || events[1].TriggerReason != TriggerHighEntropy {
		t.Errorf("second event evidence = %+v trigger = %s, want none/high_entropy",
			events[1].ReputationEvidence, events[1].TriggerReason)
	}
}

func TestEngine_BudgetExhaustedSkipsConcentratedDestination(t *testing.T) {
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{
			lowEntropyDest("203.0.113.20", 4e9),
			lowEntropyDest("203.0.113.21", 3e9),
		},
	}
	checker := &mockChecker{reported: map[string]bool{"192.0.2.66": true}}
	engine := NewEngine(testConfig(), provider, checker)

	events := engine.Detect(context.Background())

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 (second destination has no evidence left)", len(events))
	}
	if events[0].DestinationAddress != "203.0.113.20" {
		t.Errorf("event destination = %s, want 203.0.113.20", events[0].DestinationAddress)
	}
}

func TestEngine_NoReportFallsBackToEntropy(t *testing.T) {
	tests := []struct {
		name       string
		dest       DestinationStat
		wantEvents int
		wantCalls  int
	}{
		{
			name:       "high entropy still fires",
			dest:       highEntropyDest("203.0.113.40", 2e9, 8),
			wantEvents: 1,
			wantCalls:  8,
		},
		{
			name:       "low entropy without report is dropped",
			dest:       lowEntropyDest("203.0.113.41", 2e9),
			wantEvents: 0,
			wantCalls:  6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{total: 5e9, dests: []DestinationStat{tt.dest}}
			checker := &mockChecker{}
			engine := NewEngine(testConfig(), provider, checker)

			report := engine.RunCycle(context.Background())

			if len(report.Events) != tt.wantEvents {
				t.Errorf("events = %d, want %d", len(report.Events), tt.wantEvents)
			}
			if got := checker.callCount(); got != tt.wantCalls {
				t.Errorf("checker calls = %d, want %d", got, tt.wantCalls)
			}
			if report.BudgetExhausted {
				t.Error("BudgetExhausted = true without a reported source")
			}
			for _, ev := range report.Events {
				if ev.TriggerReason != TriggerHighEntropy || ev.ReputationEvidence != nil {
					t.Errorf("event = %+v, want high_entropy without evidence", ev)
				}
			}
		})
	}
}

func TestEngine_DestinationBelowRateThresholdDropped(t *testing.T) {
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{
			highEntropyDest("203.0.113.50", 6e8, 10),
			highEntropyDest("203.0.113.51", 5e8, 10),
			highEntropyDest("203.0.113.52", 1e8, 10),
		},
	}
	checker := &mockChecker{}
	engine := NewEngine(testConfig(), provider, checker)

	events := engine.Detect(context.Background())

	if len(events) != 1 || events[0].DestinationAddress != "203.0.113.50" {
		t.Fatalf("events = %+v, want only 203.0.113.50", events)
	}
	for _, addr := range checker.calls {
		if addr == "" {
			t.Error("checker queried an empty address")
		}
	}
	if got := checker.callCount(); got != 10 {
		t.Errorf("checker calls = %d, want 10 (dropped destinations are never looked up)", got)
	}
}

func TestEngine_ProviderFailures(t *testing.T) {
	tests := []struct {
		name          string
		provider      *mockProvider
		wantDestCalls int
	}{
		{
			name:          "total query fails",
			provider:      &mockProvider{totalErr: errors.New("connection refused")},
			wantDestCalls: 0,
		},
		{
			name:          "destination query fails",
			provider:      &mockProvider{total: 5e9, destErr: errors.New("read: i/o timeout")},
			wantDestCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(testConfig(), tt.provider, &mockChecker{})

			report := engine.RunCycle(context.Background())

			if report == nil {
				t.Fatal("RunCycle returned nil report")
			}
			if len(report.Events) != 0 {
				t.Errorf("events = %d, want 0", len(report.Events))
			}
			if tt.provider.destCalls != tt.wantDestCalls {
				t.Errorf("destination calls = %d, want %d", tt.provider.destCalls, tt.wantDestCalls)
			}
		})
	}
}

func TestEngine_LookupFailureMovesToNextSource(t *testing.T) {
	provider := &mockProvider{total: 5e9, dests: []DestinationStat{lowEntropyDest("203.0.113.60", 2e9)}}
	checker := &mockChecker{
		errs:     map[string]error{"192.0.2.66": errors.New("status 503")},
		reported: map[string]bool{"192.0.2.1": true},
	}
	engine := NewEngine(testConfig(), provider, checker)

	events := engine.Detect(context.Background())

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].ReputationEvidence == nil || events[0].ReputationEvidence.Address != "192.0.2.1" {
		t.Errorf("evidence = %+v, want 192.0.2.1", events[0].ReputationEvidence)
	}
	if len(checker.calls) != 2 || checker.calls[0] != "192.0.2.66" || checker.calls[1] != "192.0.2.1" {
		t.Errorf("checker calls = %v, want [192.0.2.66 192.0.2.1]", checker.calls)
	}
}

func TestEngine_DuplicateSourcesLookedUpOnce(t *testing.T) {
	dest := DestinationStat{
		DestinationAddress: "203.0.113.70",
		BitRate:            2e9,
		SourceAddresses:    []string{"192.0.2.9", "192.0.2.9", "192.0.2.9", "192.0.2.10"},
		SourceByteWeights:  []uint64{5000, 4000, 3000, 10},
		UniqueSourceCount:  2,
	}
	provider := &mockProvider{total: 5e9, dests: []DestinationStat{dest}}
	checker := &mockChecker{}
	engine := NewEngine(testConfig(), provider, checker)

	engine.Detect(context.Background())

	if got := checker.callCount(); got != 2 {
		t.Errorf("checker calls = %d (%v), want 2", got, checker.calls)
	}
}

func TestEngine_BudgetResetsEveryCycle(t *testing.T) {
	provider := &mockProvider{total: 5e9, dests: []DestinationStat{lowEntropyDest("203.0.113.80", 2e9)}}
	checker := &mockChecker{reported: map[string]bool{"192.0.2.66": true}}
	engine := NewEngine(testConfig(), provider, checker)

	for cycle := 1; cycle <= 3; cycle++ {
		report := engine.RunCycle(context.Background())
		if len(report.Events) != 1 || report.Events[0].TriggerReason != TriggerReputationReported {
			t.Fatalf("cycle %d: events = %+v, want one reputation event", cycle, report.Events)
		}
		if got := checker.callCount(); got != cycle {
			t.Errorf("after cycle %d: checker calls = %d, want %d", cycle, got, cycle)
		}
	}
}

func TestEngine_PreservesProviderOrder(t *testing.T) {
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{
			highEntropyDest("203.0.113.1", 9e9, 10),
			highEntropyDest("203.0.113.2", 7e9, 10),
			highEntropyDest("203.0.113.3", 3e9, 10),
		},
	}
	engine := NewEngine(testConfig(), provider, nil)

	events := engine.Detect(context.Background())

	want := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"}
	if len(events) != len(want) {
		t.Fatalf("events = %d, want %d", len(events), len(want))
	}
	for i, addr := range want {
		if events[i].DestinationAddress != addr {
			t.Errorf("events[%d] = %s, want %s", i, events[i].DestinationAddress, addr)
		}
	}
}

func TestEngine_MalformedDestinationSkipped(t *testing.T) {
	bad := highEntropyDest("203.0.113.90", 2e9, 5)
	bad.SourceByteWeights = bad.SourceByteWeights[:3]
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{bad, highEntropyDest("203.0.113.91", 2e9, 5)},
	}
	engine := NewEngine(testConfig(), provider, nil)

	events := engine.Detect(context.Background())

	if len(events) != 1 || events[0].DestinationAddress != "203.0.113.91" {
		t.Errorf("events = %+v, want only 203.0.113.91", events)
	}
}

func TestEngine_EventTimestampUsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	provider := &mockProvider{total: 5e9, dests: []DestinationStat{highEntropyDest("203.0.113.5", 2e9, 10)}}
	engine := NewEngine(testConfig(), provider, nil)
	engine.now = func() time.Time { return fixed }

	events := engine.Detect(context.Background())

	if len(events) != 1 || !events[0].DetectedAt.Equal(fixed) {
		t.Errorf("DetectedAt = %v, want %v", events[0].DetectedAt, fixed)
	}
}

func TestEngine_CheckSource(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		engine := NewEngine(testConfig(), &mockProvider{}, nil)
		if got := engine.CheckSource(context.Background(), "192.0.2.1"); got != nil {
			t.Errorf("CheckSource() = %+v, want nil", got)
		}
	})

	t.Run("error becomes none", func(t *testing.T) {
		checker := &mockChecker{errs: map[string]error{"192.0.2.1": errors.New("boom")}}
		engine := NewEngine(testConfig(), &mockProvider{}, checker)
		if got := engine.CheckSource(context.Background(), "192.0.2.1"); got != nil {
			t.Errorf("CheckSource() = %+v, want nil", got)
		}
	})

	t.Run("result passed through", func(t *testing.T) {
		checker := &mockChecker{reported: map[string]bool{"192.0.2.1": true}}
		engine := NewEngine(testConfig(), &mockProvider{}, checker)
		got := engine.CheckSource(context.Background(), "192.0.2.1")
		if got == nil || !got.IsReported || got.TotalReports != 42 {
			t.Errorf("CheckSource() = %+v, want reported result", got)
		}
	})
}

func TestEngine_CheckerUnavailableStopsLookups(t *testing.T) {
	unavailable := fmt.Errorf("quota exhausted: %w", ErrCheckerUnavailable)
	provider := &mockProvider{
		total: 5e9,
		dests: []DestinationStat{
			lowEntropyDest("203.0.113.20", 4e9),
			highEntropyDest("203.0.113.30", 3e9, 10),
		},
	}
	checker := &mockChecker{errs: map[string]error{"192.0.2.66": unavailable}}
	engine := NewEngine(testConfig(), provider, checker)

	report := engine.RunCycle(context.Background())

	if got := checker.callCount(); got != 1 {
		t.Errorf("checker calls = %d (%v), want 1", got, checker.calls)
	}
	if report.BudgetExhausted {
		t.Error("BudgetExhausted = true, want false (no evidence was found)")
	}
	if len(report.Events) != 1 || report.Events[0].DestinationAddress != "203.0.113.30" {
		t.Fatalf("events = %+v, want only the high entropy destination", report.Events)
	}
	if report.Events[0].TriggerReason != TriggerHighEntropy {
		t.Errorf("TriggerReason = %v, want %v", report.Events[0].TriggerReason, TriggerHighEntropy)
	}
}
