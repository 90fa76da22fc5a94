// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateCycleID(t *testing.T) {
	t.Parallel()

	id1 := GenerateCycleID()
	id2 := GenerateCycleID()

	if len(id1) != 8 {
		t.Errorf("expected 8-character cycle ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique cycle IDs")
	}
}

func TestCycleIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if id := CycleIDFromContext(ctx); id != "" {
		t.Errorf("expected empty cycle ID, got %s", id)
	}

	ctx = ContextWithCycleID(ctx, "abc12345")
	if id := CycleIDFromContext(ctx); id != "abc12345" {
		t.Errorf("CycleIDFromContext() = %q, want abc12345", id)
	}

	ctx = ContextWithNewCycleID(context.Background())
	if id := CycleIDFromContext(ctx); len(id) != 8 {
		t.Errorf("expected generated cycle ID, got %q", id)
	}
}

func TestCtx_AddsCycleID(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(original)

	ctx := ContextWithCycleID(context.Background(), "deadbeef")
	Ctx(ctx).Info().Msg("cycle complete")

	if !strings.Contains(buf.String(), `"cycle_id":"deadbeef"`) {
		t.Errorf("expected cycle_id in output, got: %s", buf.String())
	}

	buf.Reset()
	Ctx(context.Background()).Info().Msg("no cycle")
	if strings.Contains(buf.String(), "cycle_id") {
		t.Errorf("unexpected cycle_id in output: %s", buf.String())
	}
}
