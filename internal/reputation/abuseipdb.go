// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package reputation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ddoswatch/internal/detection"
)

// DefaultBaseURL is the AbuseIPDB v2 API root.
const DefaultBaseURL = "https://api.abuseipdb.com/api/v2"

var (
	// ErrInvalidAddress is returned for text that does not parse as an IP address.
	ErrInvalidAddress = errors.New("invalid IP address")

	// ErrQuotaExhausted is returned when the local limiter or the remote API
	// refuses further lookups.
	ErrQuotaExhausted = fmt.Errorf("abuseipdb quota exhausted: %w", detection.ErrCheckerUnavailable)

	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = fmt.Errorf("abuseipdb circuit open: %w", detection.ErrCheckerUnavailable)
)

// RateLimitError is returned when the API answers 429.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("abuseipdb rate limited, retry after %s", e.RetryAfter)
}

// Unwrap makes a RateLimitError match ErrQuotaExhausted.
func (e *RateLimitError) Unwrap() error {
	return ErrQuotaExhausted
}

// Config configures the AbuseIPDB client and its protective layers.
type Config struct {
	APIKey  string
	BaseURL string

	// MaxAgeDays limits reports to the last N days (1-365).
	MaxAgeDays int

	// MinConfidence is the abuse confidence score at or above which a source
	// with reports counts as reported.
	MinConfidence int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// DailyQuota is the number of lookups allowed per 24 hours.
	DailyQuota int

	// Burst is the number of lookups that may be issued back to back.
	Burst int

	// CacheTTL is how long a lookup result is reused.
	CacheTTL time.Duration

	// CacheSize caps the number of cached results.
	CacheSize int
}

// DefaultConfig returns the client defaults for the free AbuseIPDB tier.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		MaxAgeDays: 90,
		Timeout:    10 * time.Second,
		DailyQuota: 1000,
		Burst:      10,
		CacheTTL:   time.Hour,
		CacheSize:  10000,
	}
}

// checkResponse is the body of GET /check.
type checkResponse struct {
	Data struct {
		IPAddress            string `json:"ipAddress"`
		IsPublic             bool   `json:"isPublic"`
		IsWhitelisted        bool   `json:"isWhitelisted"`
		AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
		CountryCode          string `json:"countryCode"`
		ISP                  string `json:"isp"`
		Domain               string `json:"domain"`
		TotalReports         int    `json:"totalReports"`
		NumDistinctUsers     int    `json:"numDistinctUsers"`
		LastReportedAt       string `json:"lastReportedAt"`
	} `json:"data"`
}

// errorResponse is the body AbuseIPDB returns on failures.
type errorResponse struct {
	Errors []struct {
		Detail string `json:"detail"`
		Status int    `json:"status"`
	} `json:"errors"`
}

// Client performs raw lookups against the AbuseIPDB API.
type Client struct {
	baseURL       string
	apiKey        string
	maxAgeDays    int
	minConfidence int
	httpClient    *http.Client
}

// NewClient creates an API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 90
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		maxAgeDays:    cfg.MaxAgeDays,
		minConfidence: cfg.MinConfidence,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Lookup queries the check endpoint for one address.
func (c *Client) Lookup(ctx context.Context, addr netip.Addr) (*detection.ReputationResult, error) {
	query := url.Values{}
	query.Set("ipAddress", addr.String())
	query.Set("maxAgeInDays", strconv.Itoa(c.maxAgeDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "DDoSWatch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("abuseipdb returned status %d: %s", resp.StatusCode, errorDetail(body))
	}

	var parsed checkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return c.toResult(addr, &parsed), nil
}

func (c *Client) toResult(addr netip.Addr, resp *checkResponse) *detection.ReputationResult {
	d := resp.Data
	address := d.IPAddress
	if address == "" {
		address = addr.String()
	}

	return &detection.ReputationResult{
		Address:         address,
		IsReported:      !d.IsWhitelisted && d.TotalReports > 0 && d.AbuseConfidenceScore >= c.minConfidence,
		TotalReports:    d.TotalReports,
		ConfidenceScore: d.AbuseConfidenceScore,
		CountryCode:     d.CountryCode,
		ISP:             d.ISP,
	}
}

func errorDetail(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		return parsed.Errors[0].Detail
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// parseRetryAfter reads a delta-seconds Retry-After header, defaulting to one hour.
func parseRetryAfter(value string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Hour
}
