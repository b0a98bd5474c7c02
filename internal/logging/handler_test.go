// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestSetup_AddsServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("gridtown", "1.2.3", "json", slog.LevelInfo, &buf)

	logger.Info("hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "gridtown", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "value", record["key"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("gridtown", "dev", "text", slog.LevelInfo, &buf)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "service=gridtown")
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("gridtown", "dev", "json", slog.LevelWarn, &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestTraceHandler_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("gridtown", "dev", "json", slog.LevelInfo, &buf)

	traceID := trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	spanID := trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, traceID.String(), record["trace_id"])
	assert.Equal(t, spanID.String(), record["span_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("anything"))
}
