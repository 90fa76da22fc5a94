// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

/*
Package metrics provides Prometheus instrumentation for DDoSWatch.

All instruments are registered on the default registry through promauto and
exposed by the optional metrics server at /metrics:

	curl http://localhost:9108/metrics

# Available Metrics

Detection:
  - ddoswatch_detection_cycles_total{outcome}: quiet, evaluated, panic
  - ddoswatch_detection_cycle_duration_seconds
  - ddoswatch_total_external_bps
  - ddoswatch_candidate_destinations
  - ddoswatch_attack_events_total{classification,trigger}

Telemetry:
  - ddoswatch_telemetry_query_duration_seconds{query}
  - ddoswatch_telemetry_query_errors_total{query}

Reputation:
  - ddoswatch_reputation_lookups_total{result}: reported, clean, none, error
  - ddoswatch_reputation_requests_total{result}: cached, skipped, quota, remote, failed
  - ddoswatch_reputation_budget_exhausted_total

Notifications:
  - ddoswatch_notifications_total{channel,result}
  - ddoswatch_notification_duration_seconds{channel}
  - ddoswatch_notifications_suppressed_total
  - ddoswatch_cooldown_entries
  - ddoswatch_cooldown_evictions_total

HTTP endpoint:
  - ddoswatch_http_requests_total{route,status}
  - ddoswatch_http_request_duration_seconds{route}

Circuit breakers:
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics
