// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package telemetry provides the ClickHouse-backed traffic statistics
// provider used by the detection engine.
//
// Queries target the Akvorado flows schema: each row is one sampled flow
// record with SrcAddr and DstAddr (IPv6, IPv4-mapped for v4), Bytes,
// SamplingRate, InIfBoundary and TimeReceived. Bit-rates are computed as
// sum(Bytes * SamplingRate) * 8 / window.
//
// The connection is opened once by NewClickHouseProvider and reused for the
// life of the process.
package telemetry
