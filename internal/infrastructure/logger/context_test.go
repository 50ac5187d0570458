package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_NotFound(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithRequestAndCashier(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithCashierID(ctx, "42")
	FromContext(ctx).Info("hello")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "42", GetCashierID(ctx))
	entry := recorded.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["cashier_id"])
}

func TestL_AddsTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = WithContext(ctx, zap.New(core))

	L(ctx).Info("traced")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestL_WithoutSpan(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).Info("plain")

	assert.NotContains(t, recorded.All()[0].ContextMap(), "trace_id")
}
