// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/tomtom215/ddoswatch/internal/detection"
	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/metrics"
)

const (
	queryTotalExternal = "total_external"
	queryDestinations  = "destinations"
)

// Config configures the ClickHouse provider.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Table holds the flow records, optionally qualified as "database.table".
	Table string

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration

	// MaxDestinations caps the number of candidate destinations per query.
	MaxDestinations int

	// MaxSourcesPerDestination caps the source list returned per destination.
	MaxSourcesPerDestination int

	// MinDestinationBitRate is the floor below which destinations are not returned.
	MinDestinationBitRate float64
}

// DefaultConfig returns the provider defaults.
func DefaultConfig() Config {
	return Config{
		Host:                     "localhost",
		Port:                     9000,
		Database:                 "default",
		Username:                 "default",
		Table:                    "flows",
		DialTimeout:              10 * time.Second,
		MaxDestinations:          100,
		MaxSourcesPerDestination: 10000,
		MinDestinationBitRate:    1e8,
	}
}

// conn is the subset of clickhouse.Conn used by the provider.
type conn interface {
	QueryRow(ctx context.Context, query string, args ...any) driver.Row
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// ClickHouseProvider implements detection.TrafficStatsProvider over ClickHouse.
type ClickHouseProvider struct {
	conn   conn
	config Config
}

var _ detection.TrafficStatsProvider = (*ClickHouseProvider)(nil)

// NewClickHouseProvider opens and verifies the ClickHouse connection.
func NewClickHouseProvider(ctx context.Context, cfg Config) (*ClickHouseProvider, error) {
	if !ValidTableName(cfg.Table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", cfg.Table)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping clickhouse at %s: %w", addr, err)
	}

	logging.Info().
		Str("addr", addr).
		Str("database", cfg.Database).
		Str("table", cfg.Table).
		Msg("Connected to ClickHouse")

	return newProvider(c, cfg), nil
}

func newProvider(c conn, cfg Config) *ClickHouseProvider {
	if cfg.MaxDestinations <= 0 {
		cfg.MaxDestinations = DefaultConfig().MaxDestinations
	}
	if cfg.MaxSourcesPerDestination <= 0 {
		cfg.MaxSourcesPerDestination = DefaultConfig().MaxSourcesPerDestination
	}
	return &ClickHouseProvider{conn: c, config: cfg}
}

// TotalExternalBitRate returns the bit-rate of externally-bound traffic.
func (p *ClickHouseProvider) TotalExternalBitRate(ctx context.Context, windowSeconds int) (float64, error) {
	if windowSeconds <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", windowSeconds)
	}

	start := time.Now()
	var bps float64
	err := p.conn.QueryRow(ctx, totalExternalQuery(p.config.Table, windowSeconds)).Scan(&bps)
	metrics.RecordTelemetryQuery(queryTotalExternal, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("query total external bit-rate: %w", err)
	}
	return bps, nil
}

// DestinationStats returns candidate destinations ordered by descending bit-rate.
func (p *ClickHouseProvider) DestinationStats(ctx context.Context, windowSeconds int) ([]detection.DestinationStat, error) {
	if windowSeconds <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", windowSeconds)
	}

	start := time.Now()
	stats, err := p.queryDestinations(ctx, windowSeconds)
	metrics.RecordTelemetryQuery(queryDestinations, time.Since(start), err)
	return stats, err
}

func (p *ClickHouseProvider) queryDestinations(ctx context.Context, windowSeconds int) ([]detection.DestinationStat, error) {
	query := destinationStatsQuery(
		p.config.Table,
		windowSeconds,
		p.config.MaxSourcesPerDestination,
		p.config.MaxDestinations,
		p.config.MinDestinationBitRate,
	)

	rows, err := p.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query destination stats: %w", err)
	}
	defer rows.Close()

	stats := make([]detection.DestinationStat, 0, p.config.MaxDestinations)
	for rows.Next() {
		var (
			dst      string
			bps      float64
			srcIPs   []string
			srcBytes []uint64
			unique   uint64
		)
		if err := rows.Scan(&dst, &bps, &srcIPs, &srcBytes, &unique); err != nil {
			return nil, fmt.Errorf("scan destination stats: %w", err)
		}
		stats = append(stats, newDestinationStat(dst, bps, srcIPs, srcBytes, unique))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate destination stats: %w", err)
	}

	return stats, nil
}

// newDestinationStat truncates misaligned source arrays to the shorter length.
func newDestinationStat(dst string, bps float64, srcIPs []string, srcBytes []uint64, unique uint64) detection.DestinationStat {
	if len(srcIPs) != len(srcBytes) {
		n := min(len(srcIPs), len(srcBytes))
		logging.Warn().
			Str("dst_ip", dst).
			Int("src_ips", len(srcIPs)).
			Int("src_bytes", len(srcBytes)).
			Msg("Source arrays misaligned, truncating")
		srcIPs = srcIPs[:n]
		srcBytes = srcBytes[:n]
	}

	return detection.DestinationStat{
		DestinationAddress: dst,
		BitRate:            bps,
		SourceAddresses:    srcIPs,
		SourceByteWeights:  srcBytes,
		UniqueSourceCount:  int(unique),
	}
}

// Ping verifies the connection is alive.
func (p *ClickHouseProvider) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}

// Close releases the connection.
func (p *ClickHouseProvider) Close() error {
	return p.conn.Close()
}
