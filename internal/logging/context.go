// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

// cycleIDKey is the context key for detection cycle IDs.
const cycleIDKey contextKey = "cycle_id"

// GenerateCycleID creates a new cycle ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateCycleID() string {
	return uuid.New().String()[:8]
}

// ContextWithCycleID returns a new context carrying the given cycle ID.
func ContextWithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIDKey, id)
}

// ContextWithNewCycleID returns a context with a newly generated cycle ID.
func ContextWithNewCycleID(ctx context.Context) context.Context {
	return ContextWithCycleID(ctx, GenerateCycleID())
}

// CycleIDFromContext retrieves the cycle ID from context.
// Returns empty string if not present.
func CycleIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(cycleIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with the context's cycle ID attached.
//
//	logging.Ctx(ctx).Info().Msg("Cycle complete")
//	// {"level":"info","cycle_id":"abc12345","message":"Cycle complete"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if id := CycleIDFromContext(ctx); id != "" {
		logger = logger.With().Str("cycle_id", id).Logger()
	}
	return &logger
}
