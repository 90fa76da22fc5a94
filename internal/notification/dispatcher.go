// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/ddoswatch/internal/detection"
	"github.com/tomtom215/ddoswatch/internal/logging"
	"github.com/tomtom215/ddoswatch/internal/metrics"
)

// DefaultTimeout bounds each channel call.
const DefaultTimeout = 10 * time.Second

// DispatchResult reports what happened to one event.
type DispatchResult struct {
	// Skipped is true when the target was still in cooldown.
	Skipped bool

	// Attempted counts channels a send was issued to.
	Attempted int

	// Failed counts channels whose send returned an error.
	Failed int
}

// Dispatcher gates alerts through the cooldown and fans them out to channels.
type Dispatcher struct {
	channels []Channel
	state    *CooldownState
	timeout  time.Duration
	now      func() time.Time
}

// NewDispatcher creates a dispatcher. Disabled channels are dropped.
func NewDispatcher(state *CooldownState, timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	enabled := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil && ch.Enabled() {
			enabled = append(enabled, ch)
		}
	}

	return &Dispatcher{
		channels: enabled,
		state:    state,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Channels returns the names of the enabled channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.channels))
	for i, ch := range d.channels {
		names[i] = ch.Name()
	}
	return names
}

// Dispatch alerts on one attack event unless its target is in cooldown.
// Channel failures are logged and counted, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, event *detection.AttackEvent) DispatchResult {
	now := d.now()
	log := logging.Ctx(ctx)

	if !d.state.Allow(event.DestinationAddress, now) {
		metrics.NotificationsSuppressed.Inc()
		log.Debug().
			Str("dst_ip", event.DestinationAddress).
			Dur("cooldown", d.state.Cooldown()).
			Msg("Alert suppressed by cooldown")
		return DispatchResult{Skipped: true}
	}

	if len(d.channels) == 0 {
		log.Warn().Str("dst_ip", event.DestinationAddress).Msg("Attack detected but no notification channels are configured")
		return DispatchResult{}
	}

	result := d.fanOut(ctx, NewAttackAlert(event, now))
	if result.Attempted > 0 {
		// Slow channels must not shorten the next cooldown window.
		d.state.Record(event.DestinationAddress, d.now())
	}
	return result
}

// NotifyStartup sends the startup report to every channel. The cooldown is
// neither consulted nor updated.
func (d *Dispatcher) NotifyStartup(ctx context.Context, report *StartupReport) DispatchResult {
	if len(d.channels) == 0 {
		return DispatchResult{}
	}
	return d.fanOut(ctx, NewStartupAlert(report, d.now()))
}

// Prune evicts stale cooldown entries.
func (d *Dispatcher) Prune() int {
	return d.state.Prune(d.now())
}

// fanOut sends alert to every channel concurrently and waits for all of them.
func (d *Dispatcher) fanOut(ctx context.Context, alert *Alert) DispatchResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			if err := d.send(ctx, ch, alert); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(ch)
	}
	wg.Wait()

	return DispatchResult{Attempted: len(d.channels), Failed: failed}
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, alert *Alert) (err error) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
		metrics.RecordNotification(ch.Name(), time.Since(start), err)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("channel", ch.Name()).
				Str("dst_ip", alert.Target).
				Str("kind", string(alert.Kind)).
				Msg("Notification delivery failed")
		}
	}()

	return ch.Send(callCtx, alert)
}
