// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

/*
Command ddoswatch watches flow telemetry in ClickHouse and raises alerts when a
destination receives denial-of-service traffic.

Each cycle the detector gates on total external bit-rate, then on per-destination
bit-rate, and classifies every remaining destination either by a reported source
(AbuseIPDB, optional) or by the normalized entropy of its sources. Attacks are
sent to Discord, Slack, a generic webhook and NATS, at most once per cooldown
period per destination.

# Configuration

Settings are layered with koanf (highest priority wins):
  - Environment variables (CLICKHOUSE_HOST, CHECK_INTERVAL, ABUSEIPDB_API_KEY, ...)
  - Config file (CONFIG_PATH, config.yaml, /etc/ddoswatch/config.yaml)
  - Built-in defaults

Invalid configuration exits with a non-zero status before the first cycle.

# Supervision

The detection loop and the metrics endpoint run under a suture tree and are
restarted on failure. SIGINT and SIGTERM stop the tree gracefully.

# Example Usage

	export CLICKHOUSE_HOST=clickhouse
	export DST_BPS_THRESHOLD=2000000000
	export DISCORD_WEBHOOK=https://discord.com/api/webhooks/...
	./ddoswatch
*/
package main
