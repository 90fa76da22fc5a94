// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// TransportError is returned when an endpoint answers with a non-2xx status.
type TransportError struct {
	Channel    string
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Channel, e.StatusCode)
}

// jsonPoster posts JSON documents to a fixed URL with send pacing.
type jsonPoster struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
}

func newJSONPoster(name, url string, interval time.Duration, headers map[string]string) *jsonPoster {
	return &jsonPoster{
		name:    name,
		url:     url,
		headers: headers,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// post waits for a send slot, then POSTs payload. Only 2xx counts as success.
func (p *jsonPoster) post(ctx context.Context, payload any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", p.name, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range p.headers {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", p.name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Channel: p.name, StatusCode: resp.StatusCode}
	}
	return nil
}
