// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// WebhookCapture is one captured HTTP request.
type WebhookCapture struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

// Decode unmarshals the captured body into v.
func (c WebhookCapture) Decode(v any) error {
	return json.Unmarshal(c.Body, v)
}

// MockWebhookServer is an HTTP server that records every request it receives.
type MockWebhookServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	captures []WebhookCapture

	// ResponseStatus is the HTTP status code to return (default: 200).
	ResponseStatus int

	// ResponseBody is the response body to return.
	ResponseBody []byte

	// ResponseDelay delays every response, for timeout tests.
	ResponseDelay time.Duration

	// ResponseFunc overrides the default response when set.
	ResponseFunc func(w http.ResponseWriter, r *http.Request)
}

// NewMockWebhookServer starts a capture server and closes it on test cleanup.
func NewMockWebhookServer(t *testing.T) *MockWebhookServer {
	t.Helper()

	m := &MockWebhookServer{ResponseStatus: http.StatusOK}

	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // capture is best effort
		_ = r.Body.Close()

		m.mu.Lock()
		m.captures = append(m.captures, WebhookCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		status, respBody, delay, fn := m.ResponseStatus, m.ResponseBody, m.ResponseDelay, m.ResponseFunc
		m.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if fn != nil {
			fn(w, r)
			return
		}

		w.WriteHeader(status)
		if respBody != nil {
			w.Write(respBody) //nolint:errcheck
		}
	}))
	t.Cleanup(m.Server.Close)

	return m
}

// URL returns the server URL.
func (m *MockWebhookServer) URL() string {
	return m.Server.URL
}

// SetResponse changes the canned status and body.
func (m *MockWebhookServer) SetResponse(status int, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseStatus = status
	m.ResponseBody = body
}

// Captures returns a copy of all captured requests.
func (m *MockWebhookServer) Captures() []WebhookCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WebhookCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// Count returns the number of captured requests.
func (m *MockWebhookServer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captures)
}
