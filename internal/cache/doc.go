// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package cache provides a bounded, thread-safe LRU cache with TTL expiry.
//
// The reputation client uses it to remember lookup results so that a source
// seen again in a later cycle does not spend external API quota:
//
//	results := cache.NewLRU[*detection.ReputationResult](10000, time.Hour)
//	results.Add("198.51.100.7", result)
//	if r, ok := results.Get("198.51.100.7"); ok {
//	    // served from cache
//	}
package cache
