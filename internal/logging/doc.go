// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package logging provides centralized zerolog-based structured logging for DDoSWatch.
//
// The package keeps one global zerolog logger that every component writes to.
// JSON output is the default; the console format is intended for development.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("dst_ip", addr).Msg("Attack detected")
//	logging.Error().Err(err).Str("channel", "discord").Msg("Notification failed")
//
// # Cycle Context
//
// Every detection cycle carries a short cycle ID in its context so that all
// log lines of one evaluation can be correlated:
//
//	ctx = logging.ContextWithNewCycleID(ctx)
//	logging.Ctx(ctx).Warn().Msg("Telemetry query failed")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//	LOG_FILE    - Optional file that receives a copy of every log line
//
// # Suture Integration
//
// Suture v4 logs through log/slog. NewSlogHandler bridges slog records into
// the zerolog logger so supervisor events share the same output:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
package logging
