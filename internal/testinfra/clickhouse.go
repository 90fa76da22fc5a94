// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultClickHouseImage is the ClickHouse server image used by tests.
	DefaultClickHouseImage = "clickhouse/clickhouse-server:24.8-alpine"

	clickHouseNativePort = "9000/tcp"
	clickHouseHTTPPort   = "8123/tcp"
)

// ClickHouseContainer represents a running ClickHouse server for testing.
type ClickHouseContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// ClickHouseOption configures the ClickHouse container.
type ClickHouseOption func(*clickHouseConfig)

type clickHouseConfig struct {
	image        string
	database     string
	username     string
	password     string
	startTimeout time.Duration
}

// WithClickHouseImage sets a custom ClickHouse image.
func WithClickHouseImage(image string) ClickHouseOption {
	return func(c *clickHouseConfig) {
		c.image = image
	}
}

// WithClickHouseDatabase sets the database created at startup.
func WithClickHouseDatabase(database string) ClickHouseOption {
	return func(c *clickHouseConfig) {
		c.database = database
	}
}

// NewClickHouseContainer creates and starts a ClickHouse container.
func NewClickHouseContainer(ctx context.Context, opts ...ClickHouseOption) (*ClickHouseContainer, error) {
	cfg := &clickHouseConfig{
		image:        DefaultClickHouseImage,
		database:     "flows",
		username:     "ddoswatch",
		password:     "ddoswatch",
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{clickHouseNativePort, clickHouseHTTPPort},
		Env: map[string]string{
			"CLICKHOUSE_DB":                        cfg.database,
			"CLICKHOUSE_USER":                      cfg.username,
			"CLICKHOUSE_PASSWORD":                  cfg.password,
			"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(clickHouseNativePort),
			wait.ForHTTP("/ping").WithPort(clickHouseHTTPPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create clickhouse container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, clickHouseNativePort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("parse mapped port %q: %w", mapped.Port(), err)
	}

	return &ClickHouseContainer{
		Container: container,
		Host:      host,
		Port:      port,
		Database:  cfg.database,
		Username:  cfg.username,
		Password:  cfg.password,
	}, nil
}
