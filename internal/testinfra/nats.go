// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package testinfra

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// StartNATSServer starts an in-process NATS server on a random port and
// registers its shutdown with t.Cleanup. Returns the client URL.
func StartNATSServer(t *testing.T) string {
	t.Helper()

	opts := &server.Options{
		ServerName: "ddoswatch-test",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		NoLog:      true,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("create NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready within timeout")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns.ClientURL()
}
