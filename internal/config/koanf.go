// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ddoswatch/config.yaml",
	"/etc/ddoswatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		ClickHouse: ClickHouseConfig{
			Host:                     "localhost",
			Port:                     9000,
			Database:                 "default",
			Username:                 "default",
			Password:                 "",
			Table:                    "flows",
			QueryTimeoutSeconds:      10,
			MaxDestinations:          100,
			MinDestinationBitRate:    1e8,
			MaxSourcesPerDestination: 10000,
		},
		Detection: DetectionConfig{
			CheckIntervalSeconds:      60,
			TimeWindowSeconds:         300,
			TotalExternalBPSThreshold: 1e9,
			DestinationBPSThreshold:   1e9,
			EntropyThreshold:          0.8,
		},
		AbuseIPDB: AbuseIPDBConfig{
			Enabled:        false,
			BaseURL:        "https://api.abuseipdb.com/api/v2",
			MaxAgeDays:     90,
			MinConfidence:  0,
			DailyQuota:     1000,
			CacheTTLSecs:   3600,
			TimeoutSeconds: 10,
		},
		Notifications: NotificationsConfig{
			NATSSubject:         "ddoswatch.alerts",
			CooldownSeconds:     300,
			TimeoutSeconds:      10,
			EvictAfter:          4,
			StartupNotification: false,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// normalize canonicalizes free-form values before validation.
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.AbuseIPDB.APIKey = strings.TrimSpace(c.AbuseIPDB.APIKey)
	c.AbuseIPDB.BaseURL = strings.TrimRight(c.AbuseIPDB.BaseURL, "/")

	// The query floor must never hide destinations above the detection
	// threshold.
	if c.ClickHouse.MinDestinationBitRate > c.Detection.DestinationBPSThreshold {
		c.ClickHouse.MinDestinationBitRate = c.Detection.DestinationBPSThreshold
	}
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"clickhouse_host":             "clickhouse.host",
	"clickhouse_port":             "clickhouse.port",
	"clickhouse_database":         "clickhouse.database",
	"clickhouse_user":             "clickhouse.user",
	"clickhouse_password":         "clickhouse.password",
	"clickhouse_table":            "clickhouse.table",
	"clickhouse_query_timeout":    "clickhouse.query_timeout",
	"clickhouse_max_destinations": "clickhouse.max_destinations",
	"clickhouse_min_dst_bps":      "clickhouse.min_dst_bps",
	"clickhouse_max_sources":      "clickhouse.max_sources",

	"check_interval":               "detection.check_interval",
	"time_window":                  "detection.time_window",
	"total_external_bps_threshold": "detection.total_external_bps_threshold",
	"dst_bps_threshold":            "detection.dst_bps_threshold",
	"entropy_threshold":            "detection.entropy_threshold",

	"abuseipdb_enabled":        "abuseipdb.enabled",
	"abuseipdb_api_key":        "abuseipdb.api_key",
	"abuseipdb_base_url":       "abuseipdb.base_url",
	"abuseipdb_max_age_days":   "abuseipdb.max_age_days",
	"abuseipdb_min_confidence": "abuseipdb.min_confidence",
	"abuseipdb_daily_quota":    "abuseipdb.daily_quota",
	"abuseipdb_cache_ttl":      "abuseipdb.cache_ttl",
	"abuseipdb_timeout":        "abuseipdb.timeout",

	"discord_webhook":          "notifications.discord_webhook",
	"slack_webhook":            "notifications.slack_webhook",
	"webhook_url":              "notifications.webhook_url",
	"webhook_token":            "notifications.webhook_token",
	"nats_url":                 "notifications.nats_url",
	"nats_subject":             "notifications.nats_subject",
	"notification_cooldown":    "notifications.cooldown",
	"notification_timeout":     "notifications.timeout",
	"notification_evict_after": "notifications.evict_after",
	"startup_notification":     "notifications.startup_notification",

	"metrics_enabled":     "metrics.enabled",
	"metrics_listen_addr": "metrics.listen_addr",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
	"log_file":   "logging.file",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unknown variables return "" and are ignored so unrelated environment
// does not pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
