// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"context"
	"strings"
	"time"
)

// SlackChannel posts alerts to a Slack incoming webhook as attachments.
type SlackChannel struct {
	poster *jsonPoster
}

// NewSlackChannel creates a Slack channel. An empty URL disables it.
func NewSlackChannel(webhookURL string) *SlackChannel {
	return &SlackChannel{
		poster: newJSONPoster("slack", webhookURL, time.Second, nil),
	}
}

// Name returns the channel name.
func (c *SlackChannel) Name() string { return "slack" }

// Enabled reports whether a webhook URL is configured.
func (c *SlackChannel) Enabled() bool { return c.poster.url != "" }

// Send delivers an alert to Slack.
func (c *SlackChannel) Send(ctx context.Context, alert *Alert) error {
	return c.poster.post(ctx, slackWebhookPayload{
		Attachments: []slackAttachment{{
			Color:    alert.Severity.Hex(),
			Title:    alert.Title,
			Text:     toSlackMarkdown(alert.Body),
			Footer:   footerText,
			Ts:       alert.Timestamp.Unix(),
			MrkdwnIn: []string{"text"},
		}},
	})
}

// toSlackMarkdown converts **bold** to Slack's *bold*.
func toSlackMarkdown(s string) string {
	return strings.ReplaceAll(s, "**", "*")
}

type slackWebhookPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color    string   `json:"color,omitempty"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text,omitempty"`
	Footer   string   `json:"footer,omitempty"`
	Ts       int64    `json:"ts,omitempty"`
	MrkdwnIn []string `json:"mrkdwn_in,omitempty"`
}
