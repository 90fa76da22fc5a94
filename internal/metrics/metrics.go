// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection Metrics
	DetectionCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_detection_cycles_total",
			Help: "Total number of detection cycles by outcome",
		},
		[]string{"outcome"}, // "quiet", "evaluated", "panic"
	)

	DetectionCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ddoswatch_detection_cycle_duration_seconds",
			Help:    "Duration of one detection cycle in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	TotalExternalBitRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ddoswatch_total_external_bps",
			Help: "Total external bit-rate observed in the last cycle",
		},
	)

	CandidateDestinations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ddoswatch_candidate_destinations",
			Help: "Number of candidate destinations returned in the last evaluated cycle",
		},
	)

	AttackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_attack_events_total",
			Help: "Total number of attack events detected",
		},
		[]string{"classification", "trigger"},
	)

	LastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ddoswatch_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed detection cycle",
		},
	)

	// Telemetry Metrics
	TelemetryQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddoswatch_telemetry_query_duration_seconds",
			Help:    "Duration of telemetry store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"}, // "total_external", "destinations"
	)

	TelemetryQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_telemetry_query_errors_total",
			Help: "Total number of failed telemetry store queries",
		},
		[]string{"query"},
	)

	// Reputation Metrics
	ReputationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_reputation_lookups_total",
			Help: "Reputation lookups issued by the detection engine by result",
		},
		[]string{"result"}, // "reported", "clean", "none", "error"
	)

	ReputationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_reputation_requests_total",
			Help: "Reputation client requests by how they were served",
		},
		[]string{"result"}, // "cached", "skipped", "quota", "remote", "failed"
	)

	ReputationBudgetExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ddoswatch_reputation_budget_exhausted_total",
			Help: "Cycles in which a reported source exhausted the reputation budget",
		},
	)

	// Notification Metrics
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_notifications_total",
			Help: "Notification attempts by channel and result",
		},
		[]string{"channel", "result"}, // result: "success", "failure"
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddoswatch_notification_duration_seconds",
			Help:    "Duration of notification transport calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	NotificationsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ddoswatch_notifications_suppressed_total",
			Help: "Attack notifications suppressed by the per-target cooldown",
		},
	)

	CooldownEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ddoswatch_cooldown_entries",
			Help: "Number of targets currently tracked by the notification cooldown",
		},
	)

	CooldownEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ddoswatch_cooldown_evictions_total",
			Help: "Cooldown entries evicted after going stale",
		},
	)

	// HTTP Endpoint Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddoswatch_http_requests_total",
			Help: "Requests served by the metrics and health endpoint",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddoswatch_http_request_duration_seconds",
			Help:    "Duration of metrics and health endpoint requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"route"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordTelemetryQuery records the duration and outcome of a telemetry query.
func RecordTelemetryQuery(query string, duration time.Duration, err error) {
	TelemetryQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		TelemetryQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordNotification records one transport attempt on a channel.
func RecordNotification(channel string, duration time.Duration, err error) {
	NotificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	Notifications.WithLabelValues(channel, result).Inc()
}

// RecordHTTPRequest records one request served by the HTTP endpoint.
func RecordHTTPRequest(route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, status).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
