// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package main

import (
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/ddoswatch/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ClickHouse: config.ClickHouseConfig{
			Host:                     "ch",
			Port:                     9440,
			Database:                 "flows_db",
			Username:                 "reader",
			Table:                    "flows_5m",
			QueryTimeoutSeconds:      7,
			MaxDestinations:          25,
			MinDestinationBitRate:    5e7,
			MaxSourcesPerDestination: 500,
		},
		Detection: config.DetectionConfig{
			CheckIntervalSeconds:      60,
			TimeWindowSeconds:         120,
			TotalExternalBPSThreshold: 1e9,
			DestinationBPSThreshold:   2e8,
			EntropyThreshold:          0.7,
		},
		AbuseIPDB: config.AbuseIPDBConfig{
			APIKey:         "k",
			BaseURL:        "http://abuse.test/api/v2",
			MaxAgeDays:     30,
			MinConfidence:  25,
			DailyQuota:     500,
			CacheTTLSecs:   600,
			TimeoutSeconds: 3,
		},
		Notifications: config.NotificationsConfig{
			NATSSubject:     "ddoswatch.alerts",
			CooldownSeconds: 300,
			TimeoutSeconds:  10,
			EvictAfter:      4,
		},
	}
}

func TestTelemetryConfig(t *testing.T) {
	tc := telemetryConfig(testConfig())

	if tc.Host != "ch" || tc.Port != 9440 || tc.Database != "flows_db" || tc.Table != "flows_5m" {
		t.Errorf("connection settings not mapped: %+v", tc)
	}
	if tc.DialTimeout != 7*time.Second {
		t.Errorf("DialTimeout = %v", tc.DialTimeout)
	}
	if tc.MaxDestinations != 25 || tc.MaxSourcesPerDestination != 500 || tc.MinDestinationBitRate != 5e7 {
		t.Errorf("query limits not mapped: %+v", tc)
	}
}

func TestReputationConfig(t *testing.T) {
	rc := reputationConfig(testConfig())

	if rc.APIKey != "k" || rc.BaseURL != "http://abuse.test/api/v2" {
		t.Errorf("credentials not mapped: %+v", rc)
	}
	if rc.MaxAgeDays != 30 || rc.MinConfidence != 25 || rc.DailyQuota != 500 {
		t.Errorf("lookup settings not mapped: %+v", rc)
	}
	if rc.CacheTTL != 10*time.Minute || rc.Timeout != 3*time.Second {
		t.Errorf("durations not mapped: ttl=%v timeout=%v", rc.CacheTTL, rc.Timeout)
	}
	if rc.Burst != 10 || rc.CacheSize == 0 {
		t.Errorf("defaults lost: burst=%d size=%d", rc.Burst, rc.CacheSize)
	}
}

func TestNewEngine_NilCheckerDisablesReputation(t *testing.T) {
	engine := newEngine(testConfig(), nil, nil)
	if engine.ReputationEnabled() {
		t.Error("engine built without a checker reports reputation enabled")
	}
}

func TestNewDispatcher(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.DiscordWebhook = "https://discord.test/hook"
	cfg.Notifications.WebhookURL = "https://hooks.test/ddos"

	dispatcher, closeFn := newDispatcher(cfg)
	defer closeFn()

	want := []string{"discord", "webhook"}
	if got := dispatcher.Channels(); !slices.Equal(got, want) {
		t.Errorf("Channels() = %v, want %v", got, want)
	}
}

func TestNewDispatcher_NoChannels(t *testing.T) {
	dispatcher, closeFn := newDispatcher(testConfig())
	defer closeFn()

	if n := len(dispatcher.Channels()); n != 0 {
		t.Errorf("Channels() has %d entries, want 0", n)
	}
}
