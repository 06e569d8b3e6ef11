package observability

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

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("fetched calendar", "participant_id", "alice")

		assert.Contains(t, buf.String(), "fetched calendar")
		assert.Contains(t, buf.String(), "participant_id=alice")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "calcompare",
			ServiceVersion: "1.2.0",
		})

		logger.Info("group availability", "group_id", "g-1")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "group availability", entry["msg"])
		assert.Equal(t, "g-1", entry["group_id"])
		assert.Equal(t, "calcompare", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Format: LogFormatText, Output: &buf})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		assert.NotContains(t, buf.String(), "debug message")
		assert.NotContains(t, buf.String(), "info message")
		assert.Contains(t, buf.String(), "warn message")
	})

	t.Run("adds context ids", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})
		ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-123"), "req-456")

		logger.InfoContext(ctx, "with context")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-123", entry[CorrelationIDKey])
		assert.Equal(t, "req-456", entry[RequestIDKey])
	})

	t.Run("WithAttrs keeps context ids", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf}).
			With("group_id", "g-1")

		logger.InfoContext(WithCorrelationID(context.Background(), "corr-1"), "scoped")

		assert.Contains(t, buf.String(), "group_id=g-1")
		assert.Contains(t, buf.String(), "correlation_id=corr-1")
	})
}

func TestLogConfigs(t *testing.T) {
	dev := DefaultLogConfig()
	assert.Equal(t, LogLevelWarn, dev.Level)
	assert.Equal(t, LogFormatText, dev.Format)
	assert.Equal(t, "calcompare", dev.ServiceName)

	prod := ProductionLogConfig()
	assert.Equal(t, LogFormatJSON, prod.Format)
	assert.True(t, prod.AddSource)
}

func TestNewLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

	logger.Info("caldav login", "username", "svc", "caldav_password", "hunter2", "access_token", "ya29")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "svc", entry["username"])
	assert.Equal(t, "[REDACTED]", entry["caldav_password"])
	assert.Equal(t, "[REDACTED]", entry["access_token"])
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestNewLogger_TraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0x0b},
		SpanID:     trace.SpanID{0x01},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "in span")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, sc.TraceID().String(), entry[TraceIDKey])
	assert.Equal(t, sc.SpanID().String(), entry[SpanIDKey])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected slog.Level
	}{
		{LogLevelDebug, slog.LevelDebug},
		{LogLevelInfo, slog.LevelInfo},
		{LogLevelWarn, slog.LevelWarn},
		{LogLevelError, slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"info+2", slog.LevelInfo + 2},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background(), "parent")
	assert.Equal(t, "parent", CorrelationIDFromContext(ctx))
	assert.NotEmpty(t, RequestIDFromContext(ctx))

	fresh := NewRequestContext(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(fresh))
	assert.NotEqual(t, RequestIDFromContext(ctx), RequestIDFromContext(fresh))

	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestRequestIDs_SetIndependently(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr")
	ctx = WithRequestID(ctx, "req")

	assert.Equal(t, "corr", CorrelationIDFromContext(ctx))
	assert.Equal(t, "req", RequestIDFromContext(ctx))

	ctx = WithCorrelationID(ctx, "")
	assert.NotEqual(t, "corr", CorrelationIDFromContext(ctx))
	assert.Equal(t, "req", RequestIDFromContext(ctx))
}
