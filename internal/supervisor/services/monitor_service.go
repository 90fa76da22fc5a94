// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package services

import (
	"context"
)

// DetectionMonitor is satisfied by *monitor.Monitor.
type DetectionMonitor interface {
	// RunWithContext runs detection cycles until ctx is canceled.
	RunWithContext(ctx context.Context) error
}

// MonitorService wraps the detection loop as a supervised service.
// The supervisor restarts it if RunWithContext returns early.
type MonitorService struct {
	monitor DetectionMonitor
	name    string
}

// NewMonitorService creates a new detection monitor service wrapper.
func NewMonitorService(monitor DetectionMonitor) *MonitorService {
	return &MonitorService{
		monitor: monitor,
		name:    "detection-monitor",
	}
}

// Serve implements suture.Service.
func (s *MonitorService) Serve(ctx context.Context) error {
	return s.monitor.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture log messages.
func (s *MonitorService) String() string {
	return s.name
}
