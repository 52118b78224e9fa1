package xlog

import (
	"strings"
	"testing"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestAntsXLogger_ParentLogLevelChanged(t *testing.T) {
	var logger *AntsXLogger
	logger.Printf("test %d", 123)
	NewAntsXLogger(nil).Printf("test %d", 123)

	w := &testMemOutWriter{}
	parentLogger := newTestLogger(w)
	logger = NewAntsXLogger(parentLogger)

	parentLogger.IncreaseLogLevel(zapcore.InfoLevel)
	parentLogger.Debug("abc")
	require.Empty(t, w.lines())
	logger.Printf("test %d", 123)
	require.Len(t, w.lines(), 1)
	res := w.lastJSON(t)
	require.Equal(t, "test 123", res["msg"])
	require.Equal(t, "Ants", res["component"])
	require.Equal(t, "ERROR", res["lvl"])

	parentLogger.IncreaseLogLevel(zapcore.DebugLevel)
	parentLogger.Debug("abc")
	require.Len(t, w.lines(), 2)
}

func TestAntsXLogger_AntsPool(t *testing.T) {
	w := &testMemOutWriter{}
	parentLogger := newTestLogger(w)

	p, err := antsv2.NewPool(2, antsv2.WithLogger(NewAntsXLogger(parentLogger)))
	require.NoError(t, err)
	defer p.Release()

	err = p.Submit(func() {
		panic("xlogger panic in ants pool")
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), "xlogger panic in ants pool")
	}, 2*time.Second, 10*time.Millisecond)
}
