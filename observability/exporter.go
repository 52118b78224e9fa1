package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type MetricsExporterKind string

const (
	StdoutMetrics     MetricsExporterKind = "stdout"
	PrometheusMetrics MetricsExporterKind = "prometheus"
	NoneMetrics       MetricsExporterKind = "none"
)

var ErrUnknownMetricsExporter = errors.New("unknown metrics exporter")

// ParseMetricsExporterKind accepts the kind case-insensitively, blank
// means none.
func ParseMetricsExporterKind(kind string) (MetricsExporterKind, error) {
	switch k := MetricsExporterKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "", NoneMetrics:
		return NoneMetrics, nil
	case StdoutMetrics, PrometheusMetrics:
		return k, nil
	default:
	}
	return NoneMetrics, errors.Join(ErrUnknownMetricsExporter, errors.New(kind))
}

// Serves for test/dev environment.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func NewPrometheusMetricsExporter(opts ...prometheus.Option) (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// InitMetricsExporter installs the global meter provider by kind. The
// console exporter writes to w every interval.
func InitMetricsExporter(kind MetricsExporterKind, w io.Writer, interval time.Duration) (func(ctx context.Context) error, error) {
	switch kind {
	case StdoutMetrics:
		if w == nil {
			return nil, errors.New("nil metrics writer")
		}
		return NewConsoleMetricsExporter(interval, interval,
			stdoutmetric.WithWriter(w),
			stdoutmetric.WithoutTimestamps(),
		)
	case PrometheusMetrics:
		return NewPrometheusMetricsExporter()
	case NoneMetrics:
		return func(context.Context) error { return nil }, nil
	default:
	}
	return nil, errors.Join(ErrUnknownMetricsExporter, errors.New(string(kind)))
}
