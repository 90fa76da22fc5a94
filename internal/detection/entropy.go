// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package detection

import "math"

// NormalizedEntropy computes the Shannon entropy of a byte-weighted source
// distribution normalized by log2(n), where n is the number of entries.
//
// Zero-weight entries add nothing to the raw entropy but still count toward n,
// so the score measures diversity of the whole source set. Empty input, a single
// entry or a zero total weight all yield 0.
func NormalizedEntropy(weights []uint64) float64 {
	n := len(weights)
	if n <= 1 {
		return 0
	}

	var total float64
	for _, w := range weights {
		total += float64(w)
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, w := range weights {
		if w == 0 {
			continue
		}
		p := float64(w) / total
		h -= p * math.Log2(p)
	}

	normalized := h / math.Log2(float64(n))
	switch {
	case normalized < 0:
		return 0
	case normalized > 1:
		return 1
	default:
		return normalized
	}
}

// Classify labels an entropy score against the threshold.
func Classify(entropy, threshold float64) Classification {
	if entropy > threshold {
		return ClassificationDistributed
	}
	return ClassificationConcentrated
}
