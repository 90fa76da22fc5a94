// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/ddoswatch/internal/detection"
	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/notification"
)

type fakeDetector struct {
	mu        sync.Mutex
	reports   []*detection.CycleReport
	calls     int
	panicOn   int
	reputable bool
	checked   []string
	cycleIDs  []string
}

func (d *fakeDetector) RunCycle(ctx context.Context) *detection.CycleReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.cycleIDs = append(d.cycleIDs, logging.CycleIDFromContext(ctx))
	if d.panicOn == d.calls {
		panic("provider exploded")
	}
	if len(d.reports) == 0 {
		return &detection.CycleReport{}
	}
	r := d.reports[0]
	if len(d.reports) > 1 {
		d.reports = d.reports[1:]
	}
	return r
}

func (d *fakeDetector) CheckSource(_ context.Context, address string) *detection.ReputationResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checked = append(d.checked, address)
	return &detection.ReputationResult{Address: address, TotalReports: 2}
}

func (d *fakeDetector) ReputationEnabled() bool { return d.reputable }

func (d *fakeDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type fakeNotifier struct {
	mu       sync.Mutex
	events   []string
	startups []*notification.StartupReport
	prunes   int
}

func (n *fakeNotifier) Dispatch(_ context.Context, event *detection.AttackEvent) notification.DispatchResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event.DestinationAddress)
	return notification.DispatchResult{Attempted: 1}
}

func (n *fakeNotifier) NotifyStartup(_ context.Context, report *notification.StartupReport) notification.DispatchResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.startups = append(n.startups, report)
	return notification.DispatchResult{Attempted: 1}
}

func (n *fakeNotifier) Prune() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prunes++
	return 0
}

func attackReport() *detection.CycleReport {
	return &detection.CycleReport{
		Window:         detection.TrafficWindow{WindowSeconds: 60, TotalExternalBitRate: 5e9},
		GlobalGateOpen: true,
		Destinations: []detection.DestinationStat{
			{
				DestinationAddress: "192.0.2.10",
				BitRate:            3e9,
				SourceAddresses:    []string{"203.0.113.1", "203.0.113.2"},
				SourceByteWeights:  []uint64{100, 900},
				UniqueSourceCount:  2,
			},
			{DestinationAddress: "192.0.2.20", BitRate: 2e9},
		},
		Events: []detection.AttackEvent{
			{DestinationAddress: "192.0.2.10"},
			{DestinationAddress: "192.0.2.20"},
		},
	}
}

func TestMonitor_RunOnceDispatchesEvents(t *testing.T) {
	det := &fakeDetector{reports: []*detection.CycleReport{attackReport()}}
	not := &fakeNotifier{}
	m := New(Config{Interval: time.Second}, det, not)

	report := m.RunOnce(context.Background())
	if report == nil || len(report.Events) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	if len(not.events) != 2 || not.events[0] != "192.0.2.10" || not.events[1] != "192.0.2.20" {
		t.Errorf("dispatch order = %v", not.events)
	}
	if not.prunes != 1 {
		t.Errorf("Prune() calls = %d, want 1", not.prunes)
	}
	if len(not.startups) != 0 {
		t.Error("startup notification disabled but sent")
	}

	status := m.Status()
	if status.Cycles != 1 || status.LastOutcome != OutcomeEvaluated || status.LastEvents != 2 || status.TotalEvents != 2 {
		t.Errorf("unexpected status %+v", status)
	}
	if det.cycleIDs[0] == "" {
		t.Error("cycle should run with a cycle ID in its context")
	}
}

func TestMonitor_QuietCycle(t *testing.T) {
	m := New(Config{}, &fakeDetector{}, &fakeNotifier{})

	m.RunOnce(context.Background())

	if got := m.Status().LastOutcome; got != OutcomeQuiet {
		t.Errorf("LastOutcome = %q, want quiet", got)
	}
}

func TestMonitor_RecoversPanic(t *testing.T) {
	det := &fakeDetector{panicOn: 1}
	not := &fakeNotifier{}
	m := New(Config{}, det, not)

	if report := m.RunOnce(context.Background()); report != nil {
		t.Errorf("panicking cycle should return nil report")
	}
	if got := m.Status().LastOutcome; got != OutcomePanic {
		t.Errorf("LastOutcome = %q, want panic", got)
	}

	if report := m.RunOnce(context.Background()); report == nil {
		t.Error("next cycle should run normally")
	}
	if m.Status().Cycles != 2 {
		t.Errorf("Cycles = %d, want 2", m.Status().Cycles)
	}
}

func TestMonitor_StartupNotificationOnce(t *testing.T) {
	det := &fakeDetector{reports: []*detection.CycleReport{attackReport()}, reputable: true}
	not := &fakeNotifier{}
	m := New(Config{StartupNotification: true}, det, not)

	m.RunOnce(context.Background())
	m.RunOnce(context.Background())

	if len(not.startups) != 1 {
		t.Fatalf("startup notifications = %d, want 1", len(not.startups))
	}
	report := not.startups[0]
	if report.CandidateCount != 2 || report.AttackCount != 2 || report.TotalExternalBitRate != 5e9 {
		t.Errorf("unexpected startup report %+v", report)
	}
	if report.Top == nil || report.Top.DestinationAddress != "192.0.2.10" {
		t.Fatalf("top destination = %+v", report.Top)
	}
	if report.TopSource != "203.0.113.2" {
		t.Errorf("TopSource = %q, want heaviest source", report.TopSource)
	}
	if report.TopSourceReputation == nil || report.TopSourceReputation.TotalReports != 2 {
		t.Errorf("TopSourceReputation = %+v", report.TopSourceReputation)
	}
	if !m.Status().StartupSent {
		t.Error("status should record the startup notification")
	}
}

func TestMonitor_StartupWithoutReputation(t *testing.T) {
	det := &fakeDetector{reports: []*detection.CycleReport{attackReport()}}
	not := &fakeNotifier{}
	m := New(Config{StartupNotification: true}, det, not)

	m.RunOnce(context.Background())

	if len(det.checked) != 0 {
		t.Errorf("checker disabled but looked up %v", det.checked)
	}
	if not.startups[0].TopSourceReputation != nil {
		t.Error("no reputation expected")
	}
}

func TestMonitor_RunWithContext(t *testing.T) {
	det := &fakeDetector{}
	m := New(Config{Interval: 10 * time.Millisecond}, det, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.RunWithContext(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for det.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}

	if det.callCount() < 3 {
		t.Errorf("cycles = %d, want at least 3", det.callCount())
	}
}

// slowDetector records whether two cycles ever ran at the same time.
type slowDetector struct {
	fakeDetector
	running    atomic.Int32
	overlapped atomic.Bool
}

func (d *slowDetector) RunCycle(ctx context.Context) *detection.CycleReport {
	if d.running.Add(1) > 1 {
		d.overlapped.Store(true)
	}
	defer d.running.Add(-1)
	time.Sleep(20 * time.Millisecond)
	return d.fakeDetector.RunCycle(ctx)
}

func TestMonitor_CyclesNeverOverlap(t *testing.T) {
	det := &slowDetector{}
	m := New(Config{Interval: time.Millisecond}, det, &fakeNotifier{})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = m.RunWithContext(ctx)

	if det.overlapped.Load() {
		t.Error("cycles overlapped")
	}
	if det.callCount() < 2 {
		t.Errorf("cycles = %d, want at least 2", det.callCount())
	}
}
