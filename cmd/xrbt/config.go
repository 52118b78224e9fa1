package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/observability"
)

const (
	envStressTotal     = "XRBT_STRESS_TOTAL"
	envStressRounds    = "XRBT_STRESS_ROUNDS"
	envStressWorkers   = "XRBT_STRESS_WORKERS"
	envMetrics         = "XRBT_METRICS"
	envMetricsAddr     = "XRBT_METRICS_ADDR"
	envMetricsInterval = "XRBT_METRICS_INTERVAL"
)

type config struct {
	StressTotal     int
	StressRounds    int
	StressWorkers   int
	Metrics         observability.MetricsExporterKind
	MetricsAddr     string
	MetricsInterval time.Duration
}

func defaultConfig() *config {
	return &config{
		StressTotal:     10000,
		StressRounds:    8,
		StressWorkers:   runtime.GOMAXPROCS(0),
		Metrics:         observability.NoneMetrics,
		MetricsAddr:     ":9464",
		MetricsInterval: 5 * time.Second,
	}
}

func positiveInt(getenv func(string) string, key string, dst *int) error {
	val := strings.TrimSpace(getenv(key))
	if len(val) == 0 {
		return nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if i <= 0 {
		return fmt.Errorf("%s: %d is not positive", key, i)
	}
	*dst = i
	return nil
}

// loadConfig overrides the defaults by the XRBT_* environment variables.
// All the invalid values are reported together.
func loadConfig(getenv func(string) string) (*config, error) {
	cfg := defaultConfig()
	var err error
	err = multierr.Append(err, positiveInt(getenv, envStressTotal, &cfg.StressTotal))
	err = multierr.Append(err, positiveInt(getenv, envStressRounds, &cfg.StressRounds))
	err = multierr.Append(err, positiveInt(getenv, envStressWorkers, &cfg.StressWorkers))

	kind, kindErr := observability.ParseMetricsExporterKind(getenv(envMetrics))
	if kindErr != nil {
		err = multierr.Append(err, fmt.Errorf("%s: %w", envMetrics, kindErr))
	}
	cfg.Metrics = kind

	if addr := strings.TrimSpace(getenv(envMetricsAddr)); len(addr) > 0 {
		cfg.MetricsAddr = addr
	}
	if interval := strings.TrimSpace(getenv(envMetricsInterval)); len(interval) > 0 {
		d, parseErr := time.ParseDuration(interval)
		if parseErr == nil && d <= 0 {
			parseErr = fmt.Errorf("%s is not positive", d)
		}
		if parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", envMetricsInterval, parseErr))
		} else {
			cfg.MetricsInterval = d
		}
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
