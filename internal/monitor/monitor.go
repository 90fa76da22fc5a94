// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/ddoswatch/internal/detection"
	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/metrics"
	"github.com/tomtom215/ddoswatch/internal/notification"
)

// Detector runs detection cycles. Satisfied by *detection.Engine.
type Detector interface {
	RunCycle(ctx context.Context) *detection.CycleReport
	CheckSource(ctx context.Context, address string) *detection.ReputationResult
	ReputationEnabled() bool
}

// Notifier delivers alerts. Satisfied by *notification.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, event *detection.AttackEvent) notification.DispatchResult
	NotifyStartup(ctx context.Context, report *notification.StartupReport) notification.DispatchResult
	Prune() int
}

// Cycle outcomes reported by Status.
const (
	OutcomeQuiet     = "quiet"
	OutcomeEvaluated = "evaluated"
	OutcomePanic     = "panic"
)

// Config controls scheduling.
type Config struct {
	// Interval is the pause between the end of one cycle and the start of the next.
	Interval time.Duration

	// StartupNotification sends a summary to every channel after the first cycle.
	StartupNotification bool
}

// Status describes the most recent cycle.
type Status struct {
	Cycles       uint64        `json:"cycles"`
	LastCycleAt  time.Time     `json:"last_cycle_at"`
	LastOutcome  string        `json:"last_outcome"`
	LastDuration time.Duration `json:"last_duration_ns"`
	LastEvents   int           `json:"last_events"`
	TotalEvents  uint64        `json:"total_events"`
	StartupSent  bool          `json:"startup_sent"`
}

// Monitor is the main detection loop.
type Monitor struct {
	config   Config
	detector Detector
	notifier Notifier
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

// New creates a Monitor.
func New(config Config, detector Detector, notifier Notifier) *Monitor {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	return &Monitor{
		config:   config,
		detector: detector,
		notifier: notifier,
		now:      time.Now,
	}
}

// RunWithContext runs cycles until ctx is canceled. The first cycle starts
// immediately. Returns ctx.Err() on shutdown.
func (m *Monitor) RunWithContext(ctx context.Context) error {
	logging.Info().
		Dur("interval", m.config.Interval).
		Bool("reputation", m.detector.ReputationEnabled()).
		Msg("Detection monitor started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Detection monitor stopped")
			return ctx.Err()
		case <-timer.C:
		}

		m.RunOnce(ctx)

		if ctx.Err() != nil {
			logging.Info().Msg("Detection monitor stopped")
			return ctx.Err()
		}
		timer.Reset(m.config.Interval)
	}
}

// RunOnce runs one cycle: detect, notify for each event, prune cooldown
// state. It never panics; the returned report is nil if the cycle panicked.
func (m *Monitor) RunOnce(ctx context.Context) (report *detection.CycleReport) {
	ctx = logging.ContextWithNewCycleID(ctx)
	start := m.now()

	defer func() {
		if r := recover(); r != nil {
			report = nil
			metrics.DetectionCycles.WithLabelValues(OutcomePanic).Inc()
			logging.Ctx(ctx).Error().
				Str("panic", fmt.Sprint(r)).
				Msg("Detection cycle panicked, continuing with next cycle")
			m.finish(start, OutcomePanic, 0)
		}
	}()

	report = m.detector.RunCycle(ctx)

	for i := range report.Events {
		event := &report.Events[i]
		result := m.notifier.Dispatch(ctx, event)
		logging.Ctx(ctx).Debug().
			Str("dst_ip", event.DestinationAddress).
			Bool("skipped", result.Skipped).
			Int("attempted", result.Attempted).
			Int("failed", result.Failed).
			Msg("Alert dispatched")
	}

	if removed := m.notifier.Prune(); removed > 0 {
		logging.Ctx(ctx).Debug().Int("removed", removed).Msg("Pruned cooldown entries")
	}

	if m.config.StartupNotification && !m.startupSent() {
		m.sendStartup(ctx, report)
	}

	outcome := OutcomeQuiet
	if report.GlobalGateOpen {
		outcome = OutcomeEvaluated
	}
	m.finish(start, outcome, len(report.Events))

	logging.Ctx(ctx).Info().
		Float64("total_bps", report.Window.TotalExternalBitRate).
		Int("candidates", len(report.Destinations)).
		Int("events", len(report.Events)).
		Int("lookups", report.ReputationLookups).
		Dur("duration", m.now().Sub(start)).
		Msg("Detection cycle complete")

	return report
}

// Status returns a snapshot of the most recent cycle.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) startupSent() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.StartupSent
}

func (m *Monitor) sendStartup(ctx context.Context, cycle *detection.CycleReport) {
	report := &notification.StartupReport{
		TotalExternalBitRate: cycle.Window.TotalExternalBitRate,
		CandidateCount:       len(cycle.Destinations),
		AttackCount:          len(cycle.Events),
		ReputationEnabled:    m.detector.ReputationEnabled(),
	}

	if len(cycle.Destinations) > 0 {
		top := cycle.Destinations[0]
		report.Top = &top
		if report.ReputationEnabled {
			report.TopSource = top.HeaviestSource()
			if report.TopSource != "" {
				report.TopSourceReputation = m.detector.CheckSource(ctx, report.TopSource)
			}
		}
	}

	result := m.notifier.NotifyStartup(ctx, report)
	logging.Ctx(ctx).Info().
		Int("attempted", result.Attempted).
		Int("failed", result.Failed).
		Msg("Startup notification sent")

	m.mu.Lock()
	m.status.StartupSent = true
	m.mu.Unlock()
}

func (m *Monitor) finish(start time.Time, outcome string, events int) {
	end := m.now()
	metrics.LastCycleTimestamp.Set(float64(end.Unix()))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Cycles++
	m.status.LastCycleAt = end
	m.status.LastOutcome = outcome
	m.status.LastDuration = end.Sub(start)
	m.status.LastEvents = events
	m.status.TotalEvents += uint64(events)
}
