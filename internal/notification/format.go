// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/ddoswatch/internal/detection"
)

// Alert bodies use **bold** markdown; Slack rewrites it to its own *bold*.

// FormatAttackBody renders the operator-facing description of an attack.
func FormatAttackBody(event *detection.AttackEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Target:** %s\n", event.DestinationAddress)
	fmt.Fprintf(&b, "**Traffic:** %s\n", formatBitRate(event.BitRate))
	fmt.Fprintf(&b, "**Entropy:** %.4f\n", event.NormalizedEntropy)
	fmt.Fprintf(&b, "**Unique sources:** %s\n", humanize.Comma(int64(event.UniqueSourceCount)))
	fmt.Fprintf(&b, "**Attack type:** %s (%s)\n", event.AttackType, event.Classification)
	fmt.Fprintf(&b, "**Trigger:** %s", triggerLabel(event.TriggerReason))

	if rep := event.ReputationEvidence; rep != nil {
		b.WriteString("\n\n")
		writeReputation(&b, rep)
	}

	return b.String()
}

// FormatStartupBody renders the startup summary.
func FormatStartupBody(report *StartupReport) string {
	var b strings.Builder

	b.WriteString("Monitoring is active.\n\n")
	fmt.Fprintf(&b, "**External traffic:** %s\n", formatBitRate(report.TotalExternalBitRate))
	fmt.Fprintf(&b, "**Candidate destinations:** %d\n", report.CandidateCount)
	fmt.Fprintf(&b, "**Attacks detected:** %d", report.AttackCount)

	if top := report.Top; top != nil {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "**Top destination:** %s\n", top.DestinationAddress)
		fmt.Fprintf(&b, "**Traffic:** %s\n", formatBitRate(top.BitRate))
		fmt.Fprintf(&b, "**Unique sources:** %s", humanize.Comma(int64(top.UniqueSourceCount)))

		if report.ReputationEnabled && report.TopSource != "" {
			b.WriteString("\n\n")
			fmt.Fprintf(&b, "**Heaviest source:** %s\n", report.TopSource)
			if rep := report.TopSourceReputation; rep != nil {
				writeReputation(&b, rep)
			} else {
				b.WriteString("Reputation unavailable")
			}
		}
	}

	return b.String()
}

func writeReputation(b *strings.Builder, rep *detection.ReputationResult) {
	fmt.Fprintf(b, "**Source:** %s\n", rep.Address)
	fmt.Fprintf(b, "**Reports:** %s\n", humanize.Comma(int64(rep.TotalReports)))
	fmt.Fprintf(b, "**Confidence:** %d%%", rep.ConfidenceScore)
	if rep.CountryCode != "" {
		fmt.Fprintf(b, "\n**Country:** %s", rep.CountryCode)
	}
	if rep.ISP != "" {
		fmt.Fprintf(b, "\n**ISP:** %s", rep.ISP)
	}
}

func triggerLabel(reason detection.TriggerReason) string {
	switch reason {
	case detection.TriggerReputationReported:
		return "reported source (AbuseIPDB)"
	case detection.TriggerHighEntropy:
		return "high source entropy"
	default:
		return string(reason)
	}
}

// formatBitRate renders "12,345,678,901 bps (12.35 Gbps)".
func formatBitRate(bps float64) string {
	if math.IsNaN(bps) || bps < 0 {
		bps = 0
	}
	return fmt.Sprintf("%s bps (%.2f Gbps)", humanize.Comma(int64(bps)), bps/1e9)
}
