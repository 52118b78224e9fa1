package main

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/observability"
	"github.com/benz9527/xrbtree/xlog"
)

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func mapEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(mapEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	cfg, err = loadConfig(mapEnv(map[string]string{
		envStressTotal:     "500",
		envStressRounds:    " 3 ",
		envStressWorkers:   "2",
		envMetrics:         "Stdout",
		envMetricsAddr:     "127.0.0.1:19464",
		envMetricsInterval: "250ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.StressTotal)
	assert.Equal(t, 3, cfg.StressRounds)
	assert.Equal(t, 2, cfg.StressWorkers)
	assert.Equal(t, observability.StdoutMetrics, cfg.Metrics)
	assert.Equal(t, "127.0.0.1:19464", cfg.MetricsAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.MetricsInterval)

	_, err = loadConfig(mapEnv(map[string]string{
		envStressTotal:     "abc",
		envStressRounds:    "0",
		envStressWorkers:   "-1",
		envMetrics:         "statsd",
		envMetricsInterval: "-1s",
	}))
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 5)
	require.ErrorIs(t, err, observability.ErrUnknownMetricsExporter)
}

func TestRunDemo(t *testing.T) {
	w := &syncBuffer{}
	logger := xlog.NewXLogger(xlog.WithXLoggerWriter(w), xlog.WithXLoggerLevel(xlog.LogLevelInfo))

	rbt, err := runDemo(logger)
	require.NoError(t, err)
	require.Equal(t, []int{1, 5, 10, 15, 25, 30}, slices.Collect(rbt.InorderTraversal()))
	require.Equal(t, "1(R) 5(B) 10(R) 15(B) 25(B) 30(B)", rbt.String())

	out := w.String()
	require.Equal(t, len(demoKeys), strings.Count(out, "[demo] inserted"))
	require.Contains(t, out, "1(R) 5(B) 10(R) 15(B) 20(B) 25(R) 30(B)")
	require.Contains(t, out, "[demo] found")
	require.Contains(t, out, "\"deleted\":true")
	require.Contains(t, out, "[1,5,10,15,25,30]")
}

func TestRunStress(t *testing.T) {
	t.Setenv("XLOG_LVL", "debug")
	w := &syncBuffer{}
	logger := newLogger(w)
	cfg := &config{
		StressTotal:   2000,
		StressRounds:  6,
		StressWorkers: 3,
	}
	pool, err := newStressPool(cfg, logger)
	require.NoError(t, err)
	defer pool.Release()

	require.NoError(t, runStress(context.Background(), cfg, pool, logger))
	require.Equal(t, cfg.StressRounds, strings.Count(w.String(), "[stress] round done"))
	// Each round logs with its tree name from the context.
	for round := 0; round < cfg.StressRounds; round++ {
		require.Contains(t, w.String(), fmt.Sprintf(`"rbtree":"stress-%d"`, round))
	}
	// The field is omitted when the context carries no tree.
	for _, line := range strings.Split(w.String(), "\n") {
		if strings.Contains(line, "[stress] passed") {
			require.NotContains(t, line, `"rbtree"`)
		}
	}
	require.Contains(t, w.String(), "[stress] passed")
}

func TestRunStress_Canceled(t *testing.T) {
	logger := xlog.NewXLogger(xlog.WithXLoggerWriter(&syncBuffer{}))
	cfg := &config{
		StressTotal:   100,
		StressRounds:  2,
		StressWorkers: 1,
	}
	pool, err := newStressPool(cfg, logger)
	require.NoError(t, err)
	defer pool.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = runStress(ctx, cfg, pool, logger)
	require.ErrorIs(t, err, context.Canceled)

	pool.Release()
	err = runStress(context.Background(), cfg, pool, logger)
	require.ErrorIs(t, err, ants.ErrPoolClosed)
}

func TestStressRound_Recover(t *testing.T) {
	logger := xlog.NewXLogger(xlog.WithXLoggerWriter(&syncBuffer{}))
	// A nil context panics inside the round and turns into its error.
	//nolint:staticcheck
	err := stressRound(nil, 7, 10, logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "round 7")
	require.Contains(t, err.Error(), "nil pointer")
}

func TestApp(t *testing.T) {
	w := &syncBuffer{}
	app := fxtest.New(t, appOptions(mapEnv(map[string]string{
		envStressTotal:     "1000",
		envStressRounds:    "4",
		envStressWorkers:   "2",
		envMetrics:         "stdout",
		envMetricsInterval: "1h",
	}), w))
	app.RequireStart()

	select {
	case sig := <-app.Wait():
		require.Equal(t, 0, sig.ExitCode)
	case <-time.After(30 * time.Second):
		t.Fatal("xrbt app timeout")
	}
	app.RequireStop()

	out := w.String()
	require.Contains(t, out, "[demo] deleted")
	require.Contains(t, out, "[stress] passed")
	// Flushed by the console exporter on stop.
	require.Contains(t, out, "rbtree.node.count")
	require.Contains(t, out, "RUNNING")
}
