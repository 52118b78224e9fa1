package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrbtree/observability"
	"github.com/benz9527/xrbtree/xlog"
)

type banner struct{}

func (banner) JSON() string {
	return `{"app":"xrbt","desc":"red-black tree demo and stress"}`
}

func (banner) PlainText() string {
	return "xrbt, red-black tree demo and stress"
}

func newLogger(w io.Writer) xlog.XLogger {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(w),
		xlog.WithXLoggerContextFieldExtract(ctxFieldTree, xlog.ContextKeyMapToOmitempty),
	)
	logger.Banner(banner{})
	return logger
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

func registerMetrics(lc fx.Lifecycle, cfg *config, w io.Writer, logger xlog.XLogger) error {
	shutdown, err := observability.InitMetricsExporter(cfg.Metrics, w, cfg.MetricsInterval)
	if err != nil {
		return err
	}
	observability.InitAppStats(context.Background(), "xrbt", nil)
	lc.Append(fx.StopHook(shutdown))
	if cfg.Metrics != observability.PrometheusMetrics {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "[metrics] http server exited")
				}
			}()
			logger.Info("[metrics] serving", zap.String("addr", cfg.MetricsAddr))
			return nil
		},
		OnStop: srv.Shutdown,
	})
	return nil
}

func registerPool(lc fx.Lifecycle, pool *ants.Pool) {
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			pool.Release()
			return nil
		}
		return pool.ReleaseTimeout(time.Until(deadline))
	}))
}

// registerRun runs the demo and the stress in background once the app
// started. The app shuts itself down afterwards, unless the metrics are
// served by HTTP.
func registerRun(lc fx.Lifecycle, sd fx.Shutdowner, cfg *config, pool *ants.Pool, logger xlog.XLogger) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := 0
				if _, err := runDemo(logger); err != nil {
					code = 1
				}
				if err := runStress(runCtx, cfg, pool, logger); err != nil {
					code = 1
				}
				if code != 0 || cfg.Metrics != observability.PrometheusMetrics {
					_ = sd.Shutdown(fx.ExitCode(code))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
}

func appOptions(getenv func(string) string, w io.Writer) fx.Option {
	return fx.Options(
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Provide(
			func() io.Writer {
				return w
			},
			newLogger,
			func() (*config, error) {
				return loadConfig(getenv)
			},
			newStressPool,
		),
		fx.Invoke(
			setMaxProcs,
			registerMetrics,
			registerPool,
			registerRun,
		),
	)
}

func main() {
	fx.New(appOptions(os.Getenv, os.Stdout)).Run()
}
