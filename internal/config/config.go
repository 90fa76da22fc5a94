// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package config

import "time"

// Config holds all application configuration.
type Config struct {
	ClickHouse    ClickHouseConfig    `koanf:"clickhouse"`
	Detection     DetectionConfig     `koanf:"detection"`
	AbuseIPDB     AbuseIPDBConfig     `koanf:"abuseipdb"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Metrics       MetricsConfig       `koanf:"metrics"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// ClickHouseConfig holds the flow telemetry store settings.
//
// Environment Variables:
//   - CLICKHOUSE_HOST, CLICKHOUSE_PORT, CLICKHOUSE_DATABASE
//   - CLICKHOUSE_USER, CLICKHOUSE_PASSWORD, CLICKHOUSE_TABLE
//   - CLICKHOUSE_QUERY_TIMEOUT: seconds (default: 10)
//   - CLICKHOUSE_MAX_DESTINATIONS: row cap of the per-destination query (default: 100)
//   - CLICKHOUSE_MIN_DST_BPS: floor of the per-destination query (default: 100000000)
//   - CLICKHOUSE_MAX_SOURCES: sources sampled per destination (default: 10000)
type ClickHouseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"gte=1,lte=65535"`
	Database string `koanf:"database" validate:"required,sqlident"`
	Username string `koanf:"user"`
	Password string `koanf:"password"`
	Table    string `koanf:"table" validate:"required,sqlident"`

	QueryTimeoutSeconds      int     `koanf:"query_timeout" validate:"gte=1"`
	MaxDestinations          int     `koanf:"max_destinations" validate:"gte=1,lte=10000"`
	MinDestinationBitRate    float64 `koanf:"min_dst_bps" validate:"gte=0"`
	MaxSourcesPerDestination int     `koanf:"max_sources" validate:"gte=1"`
}

// QueryTimeout bounds each telemetry query.
func (c ClickHouseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// DetectionConfig holds cycle scheduling and thresholds.
//
// Environment Variables:
//   - CHECK_INTERVAL: seconds between cycles (default: 60)
//   - TIME_WINDOW: trailing window in seconds (default: 300)
//   - TOTAL_EXTERNAL_BPS_THRESHOLD: global gate in bits/s (default: 1000000000)
//   - DST_BPS_THRESHOLD: per-destination gate in bits/s (default: 1000000000)
//   - ENTROPY_THRESHOLD: 0.0-1.0 (default: 0.8)
type DetectionConfig struct {
	CheckIntervalSeconds      int     `koanf:"check_interval" validate:"gte=1"`
	TimeWindowSeconds         int     `koanf:"time_window" validate:"gte=1"`
	TotalExternalBPSThreshold float64 `koanf:"total_external_bps_threshold" validate:"gte=0"`
	DestinationBPSThreshold   float64 `koanf:"dst_bps_threshold" validate:"gte=0"`
	EntropyThreshold          float64 `koanf:"entropy_threshold" validate:"gte=0,lte=1"`
}

// Interval is the pause between cycles.
func (c DetectionConfig) Interval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// AbuseIPDBConfig holds reputation lookup settings.
//
// Environment Variables:
//   - ABUSEIPDB_ENABLED: true/false (default: false)
//   - ABUSEIPDB_API_KEY: required when enabled
//   - ABUSEIPDB_BASE_URL (default: https://api.abuseipdb.com/api/v2)
//   - ABUSEIPDB_MAX_AGE_DAYS: 1-365 (default: 90)
//   - ABUSEIPDB_MIN_CONFIDENCE: 0-100 (default: 0)
//   - ABUSEIPDB_DAILY_QUOTA: lookups per day (default: 1000)
//   - ABUSEIPDB_CACHE_TTL: seconds (default: 3600)
//   - ABUSEIPDB_TIMEOUT: seconds (default: 10)
type AbuseIPDBConfig struct {
	Enabled        bool   `koanf:"enabled"`
	APIKey         string `koanf:"api_key" validate:"required_if=Enabled true"`
	BaseURL        string `koanf:"base_url" validate:"required,url"`
	MaxAgeDays     int    `koanf:"max_age_days" validate:"gte=1,lte=365"`
	MinConfidence  int    `koanf:"min_confidence" validate:"gte=0,lte=100"`
	DailyQuota     int    `koanf:"daily_quota" validate:"gte=1"`
	CacheTTLSecs   int    `koanf:"cache_ttl" validate:"gte=1"`
	TimeoutSeconds int    `koanf:"timeout" validate:"gte=1"`
}

// CacheTTL is how long lookup results are reused.
func (c AbuseIPDBConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// Timeout bounds each lookup.
func (c AbuseIPDBConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NotificationsConfig holds alert channels and the per-target cooldown.
//
// Environment Variables:
//   - DISCORD_WEBHOOK, SLACK_WEBHOOK, WEBHOOK_URL, WEBHOOK_TOKEN
//   - NATS_URL, NATS_SUBJECT (default: ddoswatch.alerts)
//   - NOTIFICATION_COOLDOWN: seconds (default: 300)
//   - NOTIFICATION_TIMEOUT: seconds per channel call (default: 10)
//   - NOTIFICATION_EVICT_AFTER: cooldown periods before a target is forgotten (default: 4)
//   - STARTUP_NOTIFICATION: true/false (default: false)
type NotificationsConfig struct {
	DiscordWebhook      string `koanf:"discord_webhook" validate:"omitempty,url"`
	SlackWebhook        string `koanf:"slack_webhook" validate:"omitempty,url"`
	WebhookURL          string `koanf:"webhook_url" validate:"omitempty,url"`
	WebhookToken        string `koanf:"webhook_token"`
	NATSURL             string `koanf:"nats_url" validate:"omitempty,url"`
	NATSSubject         string `koanf:"nats_subject" validate:"required"`
	CooldownSeconds     int    `koanf:"cooldown" validate:"gte=0"`
	TimeoutSeconds      int    `koanf:"timeout" validate:"gte=1"`
	EvictAfter          int    `koanf:"evict_after" validate:"gte=1"`
	StartupNotification bool   `koanf:"startup_notification"`
}

// Cooldown is the minimum time between two alerts for one target.
func (c NotificationsConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Timeout bounds each channel call.
func (c NotificationsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HasChannels reports whether any channel is configured.
func (c NotificationsConfig) HasChannels() bool {
	return c.DiscordWebhook != "" || c.SlackWebhook != "" || c.WebhookURL != "" || c.NATSURL != ""
}

// MetricsConfig holds the Prometheus/health HTTP endpoint settings.
//
// Environment Variables:
//   - METRICS_ENABLED: true/false (default: true)
//   - METRICS_LISTEN_ADDR (default: :9090)
type MetricsConfig struct {
	Enabled    bool   `koanf:"enabled"`
	ListenAddr string `koanf:"listen_addr" validate:"required_if=Enabled true"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
//   - LOG_FILE: also write logs to this file (default: none)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
	File   string `koanf:"file"`
}
