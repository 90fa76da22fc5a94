// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/ddoswatch/internal/config"
	"github.com/tomtom215/ddoswatch/internal/detection"
	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/monitor"
	"github.com/tomtom215/ddoswatch/internal/notification"
	"github.com/tomtom215/ddoswatch/internal/reputation"
	"github.com/tomtom215/ddoswatch/internal/supervisor"
	"github.com/tomtom215/ddoswatch/internal/supervisor/services"
	"github.com/tomtom215/ddoswatch/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	output, closeLog, err := logging.OpenOutput(cfg.Logging.File)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open log file")
	}
	defer func() { _ = closeLog() }()

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    output,
	})

	logging.Info().
		Str("clickhouse", cfg.ClickHouse.Host).
		Str("table", cfg.ClickHouse.Table).
		Int("check_interval", cfg.Detection.CheckIntervalSeconds).
		Int("time_window", cfg.Detection.TimeWindowSeconds).
		Float64("total_external_bps_threshold", cfg.Detection.TotalExternalBPSThreshold).
		Float64("dst_bps_threshold", cfg.Detection.DestinationBPSThreshold).
		Float64("entropy_threshold", cfg.Detection.EntropyThreshold).
		Bool("abuseipdb", cfg.AbuseIPDB.Enabled).
		Msg("Starting DDoSWatch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, cfg.ClickHouse.QueryTimeout())
	provider, err := telemetry.NewClickHouseProvider(startCtx, telemetryConfig(cfg))
	cancelStart()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to ClickHouse")
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ClickHouse connection")
		}
	}()

	var checker *reputation.Checker
	if cfg.AbuseIPDB.Enabled {
		checker, err = reputation.NewChecker(reputationConfig(cfg))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize AbuseIPDB checker")
		}
		logging.Info().Int("daily_quota", cfg.AbuseIPDB.DailyQuota).Msg("AbuseIPDB reputation checks enabled")
	}

	engine := newEngine(cfg, provider, checker)

	dispatcher, closeChannels := newDispatcher(cfg)
	defer closeChannels()

	mon := monitor.New(monitor.Config{
		Interval:            cfg.Detection.Interval(),
		StartupNotification: cfg.Notifications.StartupNotification,
	}, engine, dispatcher)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDetectionService(services.NewMonitorService(mon))
	if checker != nil {
		tree.AddDetectionService(services.NewJanitorService("reputation-cache-janitor", checker, cfg.AbuseIPDB.CacheTTL()))
	}

	if cfg.Metrics.Enabled {
		server := &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           services.NewRouter(mon, 3*cfg.Detection.Interval()+cfg.ClickHouse.QueryTimeout()),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
		logging.Info().Str("addr", server.Addr).Msg("Metrics endpoint enabled")
	}

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping supervisor tree")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("DDoSWatch stopped")
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.Host = cfg.ClickHouse.Host
	tc.Port = cfg.ClickHouse.Port
	tc.Database = cfg.ClickHouse.Database
	tc.Username = cfg.ClickHouse.Username
	tc.Password = cfg.ClickHouse.Password
	tc.Table = cfg.ClickHouse.Table
	tc.DialTimeout = cfg.ClickHouse.QueryTimeout()
	tc.MaxDestinations = cfg.ClickHouse.MaxDestinations
	tc.MaxSourcesPerDestination = cfg.ClickHouse.MaxSourcesPerDestination
	tc.MinDestinationBitRate = cfg.ClickHouse.MinDestinationBitRate
	return tc
}

func reputationConfig(cfg *config.Config) reputation.Config {
	rc := reputation.DefaultConfig()
	rc.APIKey = cfg.AbuseIPDB.APIKey
	rc.BaseURL = cfg.AbuseIPDB.BaseURL
	rc.MaxAgeDays = cfg.AbuseIPDB.MaxAgeDays
	rc.MinConfidence = cfg.AbuseIPDB.MinConfidence
	rc.DailyQuota = cfg.AbuseIPDB.DailyQuota
	rc.CacheTTL = cfg.AbuseIPDB.CacheTTL()
	rc.Timeout = cfg.AbuseIPDB.Timeout()
	return rc
}

func newEngine(cfg *config.Config, provider detection.TrafficStatsProvider, checker *reputation.Checker) *detection.Engine {
	ec := detection.EngineConfig{
		WindowSeconds: cfg.Detection.TimeWindowSeconds,
		Thresholds: detection.Thresholds{
			TotalExternalBitRate: cfg.Detection.TotalExternalBPSThreshold,
			DestinationBitRate:   cfg.Detection.DestinationBPSThreshold,
			Entropy:              cfg.Detection.EntropyThreshold,
		},
		QueryTimeout:  cfg.ClickHouse.QueryTimeout(),
		LookupTimeout: cfg.AbuseIPDB.Timeout(),
	}

	// A typed nil pointer must not reach the interface.
	if checker == nil {
		return detection.NewEngine(ec, provider, nil)
	}
	return detection.NewEngine(ec, provider, checker)
}

// newDispatcher builds every configured channel. The returned func closes
// channels that hold connections.
func newDispatcher(cfg *config.Config) (*notification.Dispatcher, func()) {
	n := cfg.Notifications

	var channels []notification.Channel
	if n.DiscordWebhook != "" {
		channels = append(channels, notification.NewDiscordChannel(n.DiscordWebhook))
	}
	if n.SlackWebhook != "" {
		channels = append(channels, notification.NewSlackChannel(n.SlackWebhook))
	}
	if n.WebhookURL != "" {
		channels = append(channels, notification.NewWebhookChannel(n.WebhookURL, n.WebhookToken))
	}

	closeFn := func() {}
	if n.NATSURL != "" {
		natsChannel, err := notification.NewNATSChannel(n.NATSURL, n.NATSSubject)
		if err != nil {
			logging.Error().Err(err).Str("url", n.NATSURL).Msg("NATS channel disabled")
		} else {
			channels = append(channels, natsChannel)
			closeFn = func() {
				if err := natsChannel.Close(); err != nil {
					logging.Warn().Err(err).Msg("Error draining NATS connection")
				}
			}
		}
	}

	state := notification.NewCooldownState(n.Cooldown(), n.EvictAfter)
	dispatcher := notification.NewDispatcher(state, n.Timeout(), channels...)

	if len(dispatcher.Channels()) == 0 {
		logging.Warn().Msg("No notification channels configured; attacks will only be logged")
	} else {
		logging.Info().Strs("channels", dispatcher.Channels()).Msg("Notification channels enabled")
	}

	return dispatcher, closeFn
}
