// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package testinfra provides shared test infrastructure.
//
// # Webhook and NATS helpers
//
// MockWebhookServer captures HTTP deliveries for the notification channel
// and reputation client tests. StartNATSServer runs an in-process NATS
// server on a random port.
//
// # ClickHouse Container (integration build tag)
//
// NewClickHouseContainer starts a real ClickHouse server with testcontainers-go
// so the telemetry queries can be exercised against the actual SQL dialect:
//
//	//go:build integration
//
//	func TestClickHouseProvider(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    ch, err := testinfra.NewClickHouseContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, ch)
//	}
//
// Run integration tests with:
//
//	go test -tags integration ./...
package testinfra
