// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package reputation implements detection.ReputationChecker on top of the
// AbuseIPDB v2 check endpoint.
//
// The external API is quota limited, so every lookup passes through several
// layers before an HTTP request is made:
//
//	Check(addr)
//	  -> address filter   (private, loopback and non-unicast skip the API)
//	  -> result cache     (LRU with TTL)
//	  -> quota limiter    (token bucket sized to the daily quota)
//	  -> circuit breaker  (gobreaker, opens after consecutive failures)
//	  -> Client.Lookup    (GET /check)
//
// Quota exhaustion and an open breaker wrap detection.ErrCheckerUnavailable
// so the engine stops spending lookups for the rest of the cycle.
package reputation
