// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package monitor runs detection cycles on a fixed schedule.
//
// Each cycle runs detection to completion, dispatches one notification per
// attack event, prunes stale cooldown entries and only then arms the timer
// for the next cycle, so cycles never overlap. A panic inside a cycle is
// recovered and logged; the loop continues after the normal interval.
package monitor
