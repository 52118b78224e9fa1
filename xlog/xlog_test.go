package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrbtree/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.Write(p)
}

func (w *testMemOutWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.String()
}

func (w *testMemOutWriter) lines() []string {
	return strings.FieldsFunc(w.String(), func(r rune) bool { return r == '\n' })
}

func (w *testMemOutWriter) lastJSON(t *testing.T) map[string]any {
	lines := w.lines()
	require.NotEmpty(t, lines)
	res := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &res))
	return res
}

func newTestLogger(w *testMemOutWriter, opts ...XLoggerOption) XLogger {
	return NewXLogger(append([]XLoggerOption{
		WithXLoggerWriter(w),
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
	}, opts...)...)
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())
}

func TestGetLogLevelOrDefault(t *testing.T) {
	testcases := []struct {
		level    string
		expected zapcore.Level
	}{
		{"", zapcore.DebugLevel},
		{"  ", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"fatal", zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, getLogLevelOrDefault(tc.level), tc.level)
	}
}

func TestXLogger_JSON(t *testing.T) {
	w := &testMemOutWriter{}
	logger := newTestLogger(w)

	logger.Info("rbtree insert", zap.Int("key", 10))
	res := w.lastJSON(t)
	require.Equal(t, "rbtree insert", res["msg"])
	require.Equal(t, "INFO", res["lvl"])
	require.Equal(t, float64(10), res["key"])
	require.Contains(t, res, "ts")
	require.Contains(t, res["callAt"], "xlog_test.go")

	logger.Debug("debug")
	require.Equal(t, "DEBUG", w.lastJSON(t)["lvl"])
	logger.Warn("warn")
	require.Equal(t, "WARN", w.lastJSON(t)["lvl"])
	logger.Logf(zapcore.InfoLevel, "deleted %d keys", 3)
	require.Equal(t, "deleted 3 keys", w.lastJSON(t)["msg"])

	logger.Error(nil, "without error")
	require.NotContains(t, w.lastJSON(t), "error")
	require.NoError(t, logger.Sync())
}

func TestXLogger_IncreaseLogLevel(t *testing.T) {
	w := &testMemOutWriter{}
	logger := newTestLogger(w)
	require.Equal(t, "debug", logger.Level())

	logger.IncreaseLogLevel(zapcore.ErrorLevel)
	require.Equal(t, "error", logger.Level())
	logger.Info("dropped")
	logger.Warn("dropped")
	require.Empty(t, w.lines())

	logger.Error(infra.NewErrorStack("kept"), "error level")
	require.Len(t, w.lines(), 1)
	require.Equal(t, "kept", w.lastJSON(t)["error"])

	logger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Debug("back")
	require.Len(t, w.lines(), 2)
}

func TestXLogger_ErrorStack(t *testing.T) {
	w := &testMemOutWriter{}
	logger := newTestLogger(w)

	logger.ErrorStack(infra.NewErrorStack("invalid rotation"), "debug assertion", zap.String("color", "Red"))
	res := w.lastJSON(t)
	require.Equal(t, "debug assertion", res["msg"])
	require.Equal(t, "invalid rotation", res["error"])
	require.Equal(t, "Red", res["color"])
	frames, ok := res["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	require.Contains(t, frames[0], "TestXLogger_ErrorStack")

	logger.ErrorStack(context.Canceled, "plain error")
	res = w.lastJSON(t)
	require.Equal(t, context.Canceled.Error(), res["error"])
	require.NotContains(t, res, "errorStack")
}

func TestXLogger_ContextFields(t *testing.T) {
	w := &testMemOutWriter{}
	logger := newTestLogger(w,
		WithXLoggerContextFieldExtract("traceId"),
		WithXLoggerContextFieldExtract("tree", "treeName"),
		WithXLoggerContextFieldExtract("optional", ContextKeyMapToOmitempty),
		WithXLoggerContextFieldExtract(""),
	)

	ctx := context.WithValue(context.Background(), ContextKey("traceId"), "abc")
	logger.InfoContext(ctx, "with context")
	res := w.lastJSON(t)
	require.Equal(t, "abc", res["traceId"])
	require.Equal(t, "nil", res["treeName"])
	require.NotContains(t, res, "optional")

	ctx = context.WithValue(ctx, ContextKey("tree"), "stress-1")
	logger.DebugContext(ctx, "debug")
	require.Equal(t, "stress-1", w.lastJSON(t)["treeName"])
	logger.WarnContext(ctx, "warn")
	require.Equal(t, "WARN", w.lastJSON(t)["lvl"])
	logger.ErrorContext(ctx, context.DeadlineExceeded, "error")
	res = w.lastJSON(t)
	require.Equal(t, context.DeadlineExceeded.Error(), res["error"])
	require.Equal(t, "abc", res["traceId"])

	ctx = context.WithValue(ctx, ContextKey("optional"), "v")
	logger.InfoContext(ctx, "optional present")
	res = w.lastJSON(t)
	require.Equal(t, "v", res["optional"])
	require.Equal(t, "stress-1", res["treeName"])

	fields := extractFieldsFromContext(ctx, map[string]string{"optional": ContextKeyMapToOmitempty})
	require.Len(t, fields, 1)
	require.Equal(t, "optional", fields[0].Key)
	require.Empty(t, extractFieldsFromContext(context.Background(), map[string]string{"optional": ContextKeyMapToOmitempty}))

	require.Empty(t, extractFieldsFromContext(nil, map[string]string{"a": "a"}))
}

func TestXLogger_InvalidOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(nil))
	})
	require.NotPanics(t, func() {
		NewXLogger(
			nil,
			WithXLoggerWriter(&testMemOutWriter{}),
			WithXLoggerLevelEncoder(nil),
			WithXLoggerTimeEncoder(nil),
		)
	})
}

type testBanner struct{}

func (testBanner) JSON() string {
	return "{\"app\":\"xrbt\"}"
}

func (testBanner) PlainText() string {
	return "xrbt"
}

func TestXLogger_Banner(t *testing.T) {
	w := &testMemOutWriter{}
	logger := newTestLogger(w, WithXLoggerEncoder(PlainText))
	logger.Banner(nil)
	require.Empty(t, w.lines())

	logger.Banner(testBanner{})
	require.Equal(t, []string{"xrbt"}, w.lines())
	// Printed once per process.
	logger.Banner(testBanner{})
	require.Len(t, w.lines(), 1)
}
