// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// DefaultNATSSubject is used when no subject is configured.
const DefaultNATSSubject = "ddoswatch.alerts"

// NATSChannel publishes alerts as JSON documents to a NATS subject.
type NATSChannel struct {
	nc      *nats.Conn
	subject string
}

// NewNATSChannel connects to url. The connection is reused for the process
// lifetime and reconnects on its own.
func NewNATSChannel(url, subject string) (*NATSChannel, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	if subject == "" {
		subject = DefaultNATSSubject
	}

	nc, err := nats.Connect(url,
		nats.Name("ddoswatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSChannel{nc: nc, subject: subject}, nil
}

// Name returns the channel name.
func (c *NATSChannel) Name() string { return "nats" }

// Enabled reports whether the connection is usable.
func (c *NATSChannel) Enabled() bool { return c.nc != nil && !c.nc.IsClosed() }

// Send publishes an alert and waits for the server to acknowledge the flush.
func (c *NATSChannel) Send(ctx context.Context, alert *Alert) error {
	data, err := json.Marshal(NewWebhookPayload(alert))
	if err != nil {
		return fmt.Errorf("failed to marshal nats payload: %w", err)
	}

	if err := c.nc.Publish(c.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", c.subject, err)
	}

	// FlushWithContext rejects contexts without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	if err := c.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats connection: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (c *NATSChannel) Close() error {
	if c.nc == nil || c.nc.IsClosed() {
		return nil
	}
	return c.nc.Drain()
}
