// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

/*
Package services provides suture.Service wrappers for DDoSWatch components.

MonitorService runs the detection loop. HTTPServerService runs the metrics and
health endpoint built by NewRouter:

	GET /metrics   Prometheus exposition
	GET /healthz   JSON status of the last detection cycle

JanitorService sweeps expired reputation cache entries.
*/
package services
