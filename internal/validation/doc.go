// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Field names in error messages are
// taken from koanf tags, so a failure reads as the configuration key the
// operator has to fix:
//
//	detection.entropy_threshold must be less than or equal to 1
//
// Custom tags:
//   - sqlident: a plain SQL identifier, optionally database-qualified (db.table)
package validation
