// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package detection implements the denial-of-service decision engine.
//
// Detection Architecture:
//
//	TrafficStatsProvider -> Engine -> []AttackEvent -> notification.Dispatcher
//	                          |
//	                          v
//	                 ReputationChecker (quota conserving)
//
// One evaluation cycle runs through strictly ordered gates:
//
//  1. Global gate: total external bit-rate over the window must exceed
//     the configured threshold, otherwise no per-destination query is issued.
//  2. Per-destination gate: each candidate destination must exceed the
//     destination bit-rate threshold.
//  3. Classification: the normalized Shannon entropy of the byte-weighted
//     source distribution labels the destination Distributed or Concentrated.
//  4. Evidence: sources are checked against the reputation service until one
//     is reported. The first hit exhausts the reputation budget for the rest
//     of the cycle; later destinations fall back to the entropy signal.
//
// Events are returned in provider order (descending bit-rate). Collaborator
// failures never abort a cycle: telemetry errors yield empty results and a
// failed reputation lookup counts as "no data" for that address.
package detection
