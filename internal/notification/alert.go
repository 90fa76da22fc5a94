// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ddoswatch/internal/detection"
)

// Channel delivers alerts over one transport.
type Channel interface {
	// Name identifies the channel in logs and metrics.
	Name() string

	// Enabled reports whether the channel is configured.
	Enabled() bool

	// Send delivers one alert. The context carries the per-call timeout.
	Send(ctx context.Context, alert *Alert) error
}

// AlertKind distinguishes attack alerts from informational messages.
type AlertKind string

const (
	AlertKindAttack  AlertKind = "attack_detected"
	AlertKindStartup AlertKind = "startup_report"
)

// Severity selects the color used by every channel.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Color returns the severity as a 24-bit RGB integer (Discord embeds).
func (s Severity) Color() int {
	switch s {
	case SeverityCritical:
		return 0xFF0000
	case SeverityWarning:
		return 0xFF6600
	case SeverityInfo:
		return 0x3498DB
	default:
		return 0x95A5A6
	}
}

// Hex returns the severity as a "#RRGGBB" string (Slack, webhook payloads).
func (s Severity) Hex() string {
	return fmt.Sprintf("#%06X", s.Color())
}

// SeverityFor maps a trigger reason to its severity. Externally confirmed
// attacks outrank entropy-only detections.
func SeverityFor(reason detection.TriggerReason) Severity {
	if reason == detection.TriggerReputationReported {
		return SeverityCritical
	}
	return SeverityWarning
}

// Alert is a formatted notification ready for delivery.
type Alert struct {
	Kind      AlertKind              `json:"kind"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Severity  Severity               `json:"severity"`
	Target    string                 `json:"target,omitempty"`
	Event     *detection.AttackEvent `json:"event,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewAttackAlert builds the alert for one attack event.
func NewAttackAlert(event *detection.AttackEvent, now time.Time) *Alert {
	return &Alert{
		Kind:      AlertKindAttack,
		Title:     fmt.Sprintf("%s attack detected on %s", event.AttackType, event.DestinationAddress),
		Body:      FormatAttackBody(event),
		Severity:  SeverityFor(event.TriggerReason),
		Target:    event.DestinationAddress,
		Event:     event,
		Timestamp: now,
	}
}

// StartupReport summarizes the first detection cycle after startup.
type StartupReport struct {
	TotalExternalBitRate float64
	CandidateCount       int
	AttackCount          int

	// Top is the highest bit-rate candidate, nil when there were none.
	Top *detection.DestinationStat

	// ReputationEnabled reports whether TopSourceReputation was looked up.
	ReputationEnabled   bool
	TopSource           string
	TopSourceReputation *detection.ReputationResult
}

// NewStartupAlert builds the informational startup message.
func NewStartupAlert(report *StartupReport, now time.Time) *Alert {
	return &Alert{
		Kind:      AlertKindStartup,
		Title:     "DDoSWatch started",
		Body:      FormatStartupBody(report),
		Severity:  SeverityInfo,
		Timestamp: now,
	}
}
