// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package services

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/middleware"
	"github.com/tomtom215/ddoswatch/internal/monitor"
)

// StatusSource is satisfied by *monitor.Monitor.
type StatusSource interface {
	Status() monitor.Status
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status       string    `json:"status"`
	Cycles       uint64    `json:"cycles"`
	LastCycleAt  time.Time `json:"last_cycle_at,omitempty"`
	LastOutcome  string    `json:"last_outcome,omitempty"`
	LastDuration string    `json:"last_duration,omitempty"`
	LastEvents   int       `json:"last_events"`
	TotalEvents  uint64    `json:"total_events"`
}

// NewRouter builds the metrics and health handler. The health check reports
// 503 once the last cycle is older than staleAfter; zero disables that check.
func NewRouter(source StatusSource, staleAfter time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(source, staleAfter, time.Now))

	return r
}

func healthHandler(source StatusSource, staleAfter time.Duration, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := source.Status()

		resp := HealthResponse{
			Status:      "ok",
			Cycles:      st.Cycles,
			LastCycleAt: st.LastCycleAt,
			LastOutcome: st.LastOutcome,
			LastEvents:  st.LastEvents,
			TotalEvents: st.TotalEvents,
		}
		if st.Cycles > 0 {
			resp.LastDuration = st.LastDuration.String()
		}

		code := http.StatusOK
		switch {
		case st.Cycles == 0:
			resp.Status = "starting"
		case staleAfter > 0 && now().Sub(st.LastCycleAt) > staleAfter:
			resp.Status = "stale"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.Warn().Err(err).Msg("Failed to encode health response")
		}
	}
}
