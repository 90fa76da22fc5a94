// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/ddoswatch/internal/detection"
)

const footerText = "DDoSWatch"

// DiscordChannel posts alerts as Discord webhook embeds.
type DiscordChannel struct {
	poster *jsonPoster
}

// NewDiscordChannel creates a Discord channel. An empty URL disables it.
func NewDiscordChannel(webhookURL string) *DiscordChannel {
	return &DiscordChannel{
		poster: newJSONPoster("discord", webhookURL, 500*time.Millisecond, nil),
	}
}

// Name returns the channel name.
func (c *DiscordChannel) Name() string { return "discord" }

// Enabled reports whether a webhook URL is configured.
func (c *DiscordChannel) Enabled() bool { return c.poster.url != "" }

// Send delivers an alert to Discord.
func (c *DiscordChannel) Send(ctx context.Context, alert *Alert) error {
	return c.poster.post(ctx, discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	})
}

func buildEmbed(alert *Alert) discordEmbed {
	embed := discordEmbed{
		Title:       alert.Title,
		Description: alert.Body,
		Color:       alert.Severity.Color(),
		Timestamp:   alert.Timestamp.UTC().Format(time.RFC3339),
		Footer:      discordEmbedFooter{Text: footerText},
	}

	if ev := alert.Event; ev != nil {
		embed.Fields = []discordEmbedField{
			{Name: "Attack Type", Value: ev.AttackType, Inline: true},
			{Name: "Severity", Value: string(alert.Severity), Inline: true},
			{Name: "Sources", Value: strconv.Itoa(ev.UniqueSourceCount), Inline: true},
		}
		if ev.TriggerReason == detection.TriggerReputationReported && ev.ReputationEvidence != nil {
			embed.Fields = append(embed.Fields, discordEmbedField{
				Name:   "Reported Source",
				Value:  ev.ReputationEvidence.Address,
				Inline: true,
			})
		}
	}

	return embed
}

type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}
