// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package detection

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/metrics"
)

// Thresholds holds the decision thresholds of the engine.
type Thresholds struct {
	// TotalExternalBitRate gates the whole cycle (bits/sec).
	TotalExternalBitRate float64

	// DestinationBitRate gates each candidate destination (bits/sec).
	DestinationBitRate float64

	// Entropy separates Distributed from Concentrated, in [0, 1].
	Entropy float64
}

// EngineConfig configures the detection engine.
type EngineConfig struct {
	// WindowSeconds is the trailing aggregation window.
	WindowSeconds int

	Thresholds Thresholds

	// QueryTimeout bounds each telemetry query. Zero disables the bound.
	QueryTimeout time.Duration

	// LookupTimeout bounds each reputation lookup. Zero disables the bound.
	LookupTimeout time.Duration
}

// DefaultEngineConfig returns the defaults used when nothing is configured.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WindowSeconds: 300,
		Thresholds: Thresholds{
			TotalExternalBitRate: 1e9,
			DestinationBitRate:   1e9,
			Entropy:              0.8,
		},
		QueryTimeout:  10 * time.Second,
		LookupTimeout: 10 * time.Second,
	}
}

// CycleReport summarizes one evaluation cycle.
type CycleReport struct {
	Window TrafficWindow

	// GlobalGateOpen is true when the total bit-rate exceeded its threshold
	// and per-destination stats were queried.
	GlobalGateOpen bool

	// Destinations are the candidates returned by the provider, in provider order.
	Destinations []DestinationStat

	// Events are the attacks detected, in provider order.
	Events []AttackEvent

	// ReputationLookups counts checker calls issued during the cycle.
	ReputationLookups int

	// BudgetExhausted reports whether a reported source was found this cycle.
	BudgetExhausted bool

	StartedAt time.Time
	Duration  time.Duration
}

// reputationBudget is scoped to a single cycle and shared by every
// destination evaluated in it.
type reputationBudget struct {
	exhausted bool
	lookups   int

	// unavailable is set when the checker reported ErrCheckerUnavailable;
	// remaining sources are treated as "no data" without a call.
	unavailable bool
}

// Engine runs detection cycles. It holds no state between cycles, so one
// Engine may be reused forever; cycles must not run concurrently.
type Engine struct {
	config   EngineConfig
	provider TrafficStatsProvider
	checker  ReputationChecker
	now      func() time.Time
}

// NewEngine creates a detection engine. A nil checker disables reputation lookups.
func NewEngine(config EngineConfig, provider TrafficStatsProvider, checker ReputationChecker) *Engine {
	return &Engine{
		config:   config,
		provider: provider,
		checker:  checker,
		now:      time.Now,
	}
}

// ReputationEnabled reports whether a reputation checker is configured.
func (e *Engine) ReputationEnabled() bool {
	return e.checker != nil
}

// Detect runs one cycle and returns only its attack events.
func (e *Engine) Detect(ctx context.Context) []AttackEvent {
	return e.RunCycle(ctx).Events
}

// RunCycle runs one full detection cycle. It never fails: collaborator
// errors are logged and degrade the cycle to partial data.
func (e *Engine) RunCycle(ctx context.Context) *CycleReport {
	start := e.now()
	report := &CycleReport{
		Window:    TrafficWindow{WindowSeconds: e.config.WindowSeconds},
		StartedAt: start,
	}
	defer func() {
		report.Duration = e.now().Sub(start)
		metrics.DetectionCycleDuration.Observe(report.Duration.Seconds())
	}()

	report.Window.TotalExternalBitRate = e.totalExternalBitRate(ctx)
	metrics.TotalExternalBitRate.Set(report.Window.TotalExternalBitRate)

	if report.Window.TotalExternalBitRate <= e.config.Thresholds.TotalExternalBitRate {
		logging.Ctx(ctx).Debug().
			Float64("total_bps", report.Window.TotalExternalBitRate).
			Float64("threshold_bps", e.config.Thresholds.TotalExternalBitRate).
			Msg("Total external traffic below threshold")
		metrics.DetectionCycles.WithLabelValues("quiet").Inc()
		return report
	}
	report.GlobalGateOpen = true

	report.Destinations = e.destinationStats(ctx)
	metrics.CandidateDestinations.Set(float64(len(report.Destinations)))

	budget := &reputationBudget{}
	for i := range report.Destinations {
		dest := &report.Destinations[i]
		if dest.BitRate <= e.config.Thresholds.DestinationBitRate {
			continue
		}
		if err := dest.Validate(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Skipping malformed destination stats")
			continue
		}

		event, ok := e.evaluateDestination(ctx, dest, budget)
		if !ok {
			continue
		}
		report.Events = append(report.Events, event)
		metrics.AttackEvents.WithLabelValues(string(event.Classification), string(event.TriggerReason)).Inc()

		logging.Ctx(ctx).Warn().
			Str("dst_ip", event.DestinationAddress).
			Str("attack_type", event.AttackType).
			Str("trigger", string(event.TriggerReason)).
			Float64("bps", event.BitRate).
			Float64("entropy", event.NormalizedEntropy).
			Int("unique_sources", event.UniqueSourceCount).
			Msg("Attack detected")
	}

	report.ReputationLookups = budget.lookups
	report.BudgetExhausted = budget.exhausted
	metrics.DetectionCycles.WithLabelValues("evaluated").Inc()
	return report
}

// evaluateDestination applies classification and evidence gathering to one
// destination that already passed the bit-rate gate.
func (e *Engine) evaluateDestination(ctx context.Context, dest *DestinationStat, budget *reputationBudget) (AttackEvent, bool) {
	entropy := NormalizedEntropy(dest.SourceByteWeights)
	classification := Classify(entropy, e.config.Thresholds.Entropy)

	var evidence *ReputationResult
	if e.checker != nil && !budget.exhausted && !budget.unavailable {
		evidence = e.findReportedSource(ctx, dest, budget)
		if evidence != nil {
			budget.exhausted = true
			metrics.ReputationBudgetExhausted.Inc()
		}
	}

	if evidence == nil && entropy <= e.config.Thresholds.Entropy {
		logging.Ctx(ctx).Debug().
			Str("dst_ip", dest.DestinationAddress).
			Float64("entropy", entropy).
			Msg("Destination above rate threshold without attack evidence")
		return AttackEvent{}, false
	}

	return e.newAttackEvent(dest, entropy, classification, evidence), true
}

// findReportedSource queries sources in order until one is reported.
// Repeated addresses are looked up once.
func (e *Engine) findReportedSource(ctx context.Context, dest *DestinationStat, budget *reputationBudget) *ReputationResult {
	seen := make(map[string]struct{}, len(dest.SourceAddresses))
	for _, addr := range dest.SourceAddresses {
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}

		budget.lookups++
		result, err := e.checkSource(ctx, addr)
		if errors.Is(err, ErrCheckerUnavailable) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Reputation checker unavailable for the rest of the cycle")
			budget.unavailable = true
			return nil
		}
		if result != nil && result.IsReported {
			logging.Ctx(ctx).Info().
				Str("dst_ip", dest.DestinationAddress).
				Str("src_ip", addr).
				Int("total_reports", result.TotalReports).
				Int("confidence", result.ConfidenceScore).
				Msg("Reported source found")
			return result
		}
	}
	return nil
}

// CheckSource looks up a single address, converting any failure into "none".
// Returns nil when reputation lookups are disabled.
func (e *Engine) CheckSource(ctx context.Context, address string) *ReputationResult {
	result, _ := e.checkSource(ctx, address)
	return result
}

// checkSource logs and counts the lookup. A non-nil error always comes with
// a nil result.
func (e *Engine) checkSource(ctx context.Context, address string) (*ReputationResult, error) {
	if e.checker == nil {
		return nil, nil
	}

	callCtx, cancel := e.withTimeout(ctx, e.config.LookupTimeout)
	defer cancel()

	result, err := e.checker.Check(callCtx, address)
	switch {
	case err != nil:
		metrics.ReputationLookups.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("src_ip", address).Msg("Reputation lookup failed")
		return nil, err
	case result == nil:
		metrics.ReputationLookups.WithLabelValues("none").Inc()
		return nil, nil
	case result.IsReported:
		metrics.ReputationLookups.WithLabelValues("reported").Inc()
	default:
		metrics.ReputationLookups.WithLabelValues("clean").Inc()
	}
	return result, nil
}

func (e *Engine) totalExternalBitRate(ctx context.Context) float64 {
	callCtx, cancel := e.withTimeout(ctx, e.config.QueryTimeout)
	defer cancel()

	bps, err := e.provider.TotalExternalBitRate(callCtx, e.config.WindowSeconds)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("query", "total_external").Msg("Telemetry query failed")
		return 0
	}
	if bps < 0 {
		return 0
	}
	return bps
}

func (e *Engine) destinationStats(ctx context.Context) []DestinationStat {
	callCtx, cancel := e.withTimeout(ctx, e.config.QueryTimeout)
	defer cancel()

	stats, err := e.provider.DestinationStats(callCtx, e.config.WindowSeconds)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("query", "destinations").Msg("Telemetry query failed")
		return nil
	}
	return stats
}

func (e *Engine) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// newAttackEvent derives the trigger from the evidence so that an event is
// never built without a justifying reason.
func (e *Engine) newAttackEvent(dest *DestinationStat, entropy float64, classification Classification, evidence *ReputationResult) AttackEvent {
	trigger := TriggerHighEntropy
	if evidence != nil {
		trigger = TriggerReputationReported
	}

	return AttackEvent{
		ID:                 uuid.New().String(),
		DestinationAddress: dest.DestinationAddress,
		BitRate:            dest.BitRate,
		NormalizedEntropy:  entropy,
		UniqueSourceCount:  dest.UniqueSourceCount,
		Classification:     classification,
		AttackType:         classification.AttackType(),
		TriggerReason:      trigger,
		ReputationEvidence: evidence,
		DetectedAt:         e.now(),
	}
}
