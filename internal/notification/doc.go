// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

// Package notification delivers attack alerts to operators.
//
// The Dispatcher applies a per-target cooldown and fans an alert out to every
// enabled Channel concurrently. Channel failures are logged and counted but
// never propagated: one failing transport cannot block another, and a failed
// attempt still restarts the target's cooldown window.
//
// Supported channels:
//   - Discord webhooks (embeds)
//   - Slack incoming webhooks (attachments)
//   - Generic JSON webhooks with optional bearer token
//   - NATS subjects
package notification
