// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"context"
	"time"

	"github.com/tomtom215/ddoswatch/internal/detection"
)

// WebhookPayload is the JSON document sent by the generic webhook and NATS
// channels.
type WebhookPayload struct {
	EventType string                 `json:"event_type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Severity  Severity               `json:"severity"`
	Color     string                 `json:"color"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Event     *detection.AttackEvent `json:"event,omitempty"`
}

// NewWebhookPayload converts an alert to the generic JSON document.
func NewWebhookPayload(alert *Alert) WebhookPayload {
	return WebhookPayload{
		EventType: string(alert.Kind),
		Title:     alert.Title,
		Body:      alert.Body,
		Severity:  alert.Severity,
		Color:     alert.Severity.Hex(),
		Timestamp: alert.Timestamp.UTC(),
		Source:    "ddoswatch",
		Event:     alert.Event,
	}
}

// WebhookChannel posts alerts to an arbitrary HTTP endpoint.
type WebhookChannel struct {
	poster *jsonPoster
}

// NewWebhookChannel creates a generic webhook channel. A non-empty token is
// sent as a bearer Authorization header.
func NewWebhookChannel(url, token string) *WebhookChannel {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}
	return &WebhookChannel{
		poster: newJSONPoster("webhook", url, 500*time.Millisecond, headers),
	}
}

// Name returns the channel name.
func (c *WebhookChannel) Name() string { return "webhook" }

// Enabled reports whether an endpoint is configured.
func (c *WebhookChannel) Enabled() bool { return c.poster.url != "" }

// Send delivers an alert to the endpoint.
func (c *WebhookChannel) Send(ctx context.Context, alert *Alert) error {
	return c.poster.post(ctx, NewWebhookPayload(alert))
}
