// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package config loads DDoSWatch configuration.
//
// Configuration is layered with koanf, later layers winning:
//
//  1. Built-in defaults
//  2. YAML file ($CONFIG_PATH, config.yaml, config.yml, /etc/ddoswatch/config.yaml)
//  3. Environment variables
//
// Sections:
//   - clickhouse: flow telemetry store connection and query bounds
//   - detection: interval, window and thresholds
//   - abuseipdb: reputation lookups
//   - notifications: channels and cooldown
//   - metrics: Prometheus endpoint
//   - logging: zerolog output
//
// Intervals, windows, cooldowns and timeouts are configured in whole seconds
// and exposed as time.Duration through accessor methods.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	interval := cfg.Detection.Interval()
package config
