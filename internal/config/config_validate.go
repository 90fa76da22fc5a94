// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/ddoswatch/internal/validation"
)

// Validate checks struct tags, then rules spanning several fields.
func (c *Config) Validate() error {
	if errs := validation.ValidateStruct(c); errs != nil {
		return errs
	}

	return c.validateAbuseIPDB()
}

func (c *Config) validateAbuseIPDB() error {
	if c.AbuseIPDB.Enabled && containsPlaceholder(c.AbuseIPDB.APIKey) {
		return fmt.Errorf("ABUSEIPDB_API_KEY contains a placeholder value; set a real API key or disable AbuseIPDB")
	}
	return nil
}

// placeholderPatterns indicate the operator forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_API_KEY",
	"YOUR_KEY",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
