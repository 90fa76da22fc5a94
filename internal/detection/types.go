// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package detection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCheckerUnavailable is wrapped by ReputationChecker errors that will
// persist for the rest of the cycle, such as an exhausted quota or an open
// circuit breaker. The engine stops issuing lookups when it sees one.
var ErrCheckerUnavailable = errors.New("reputation checker unavailable")

// Classification labels whether excess traffic comes from few or many sources.
type Classification string

const (
	// ClassificationConcentrated means one or few sources dominate (DoS-like).
	ClassificationConcentrated Classification = "concentrated"
	// ClassificationDistributed means traffic is spread over many sources (DDoS-like).
	ClassificationDistributed Classification = "distributed"
)

// AttackType returns the short operator-facing label for the classification.
func (c Classification) AttackType() string {
	if c == ClassificationDistributed {
		return "DDoS"
	}
	return "DoS"
}

// TriggerReason records which signal justified an attack event.
type TriggerReason string

const (
	// TriggerReputationReported means a source was confirmed by the reputation service.
	TriggerReputationReported TriggerReason = "reputation_reported"
	// TriggerHighEntropy means the source distribution exceeded the entropy threshold.
	TriggerHighEntropy TriggerReason = "high_entropy"
)

// TrafficWindow is the immutable global view of one evaluation cycle.
type TrafficWindow struct {
	WindowSeconds        int     `json:"window_seconds"`
	TotalExternalBitRate float64 `json:"total_external_bps"`
}

// DestinationStat describes one candidate destination within a window.
// SourceAddresses may contain duplicates (one entry per flow record);
// SourceByteWeights is aligned with it index for index.
type DestinationStat struct {
	DestinationAddress string   `json:"dst_ip"`
	BitRate            float64  `json:"bps"`
	SourceAddresses    []string `json:"src_ips"`
	SourceByteWeights  []uint64 `json:"src_bytes"`
	UniqueSourceCount  int      `json:"unique_sources"`
}

// Validate checks that addresses and weights are aligned.
func (d *DestinationStat) Validate() error {
	if len(d.SourceAddresses) != len(d.SourceByteWeights) {
		return fmt.Errorf("destination %s: %d source addresses but %d byte weights",
			d.DestinationAddress, len(d.SourceAddresses), len(d.SourceByteWeights))
	}
	return nil
}

// HeaviestSource returns the source address carrying the largest byte weight.
// Returns "" when the destination has no sources.
func (d *DestinationStat) HeaviestSource() string {
	best := ""
	var bestWeight uint64
	for i, addr := range d.SourceAddresses {
		if i >= len(d.SourceByteWeights) {
			break
		}
		if best == "" || d.SourceByteWeights[i] > bestWeight {
			best = addr
			bestWeight = d.SourceByteWeights[i]
		}
	}
	return best
}

// ReputationResult is the outcome of one reputation lookup.
// A nil *ReputationResult means "none": no data, lookup disabled or failed.
type ReputationResult struct {
	Address         string `json:"ip_address"`
	IsReported      bool   `json:"is_reported"`
	TotalReports    int    `json:"total_reports"`
	ConfidenceScore int    `json:"abuse_confidence_score"`
	CountryCode     string `json:"country_code,omitempty"`
	ISP             string `json:"isp,omitempty"`
}

// AttackEvent is one detected attack against one destination.
type AttackEvent struct {
	ID                 string            `json:"id"`
	DestinationAddress string            `json:"dst_ip"`
	BitRate            float64           `json:"bps"`
	NormalizedEntropy  float64           `json:"entropy"`
	UniqueSourceCount  int               `json:"unique_sources"`
	Classification     Classification    `json:"classification"`
	AttackType         string            `json:"attack_type"`
	TriggerReason      TriggerReason     `json:"trigger_reason"`
	ReputationEvidence *ReputationResult `json:"reputation,omitempty"`
	DetectedAt         time.Time         `json:"detected_at"`
}

// TrafficStatsProvider queries the telemetry store. Both calls are
// parameterized by the window length in seconds.
type TrafficStatsProvider interface {
	// TotalExternalBitRate returns the bit-rate of externally-bound traffic.
	TotalExternalBitRate(ctx context.Context, windowSeconds int) (float64, error)

	// DestinationStats returns candidate destinations above the provider's
	// floor, ordered by descending bit-rate and capped to a fixed row count.
	DestinationStats(ctx context.Context, windowSeconds int) ([]DestinationStat, error)
}

// ReputationChecker looks up a single source address.
// Implementations return (nil, nil) when the service has no data.
type ReputationChecker interface {
	Check(ctx context.Context, address string) (*ReputationResult, error)
}
