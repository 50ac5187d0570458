package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	cfg := Config{Enabled: false, ServiceName: "pos-gateway"}

	tp, err := NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, tp.Provider())
	assert.NotNil(t, tp.Tracer("test"))
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, lp.ZapCore("pos", zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1.0).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "pos-gateway", ServiceVersion: "1.2.3"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "pos-gateway", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, level: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("terminal", "t-1"))

	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "t-1", entry.ContextMap()["terminal"])
	assert.False(t, core.Enabled(zapcore.DebugLevel))
}

func TestProfiler(t *testing.T) {
	logger := zap.NewNop()

	p, err := NewProfiler(ProfilerConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "pos"}, logger)
	assert.ErrorContains(t, err, "server address")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, logger)
	assert.ErrorContains(t, err, "application name")
}

func TestPyroscopeLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &pyroscopeLogger{logger: zap.New(core)}

	l.Infof("uploaded %d profiles", 3)
	l.Debugf("tick")
	l.Errorf("upload failed: %s", "timeout")

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "uploaded 3 profiles", logs.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
}
