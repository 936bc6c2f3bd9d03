package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	ServiceName    = "alphabill-fees"
	ServiceVersion = "0.1.0"
)

/*
Observability bundles the meter provider and logger used by the fee engine
components.

Supported metrics exporters are "stdout" and "prometheus", empty string
disables metrics.
*/
type Observability struct {
	mp  metric.MeterProvider
	pr  prometheus.Registerer
	log *slog.Logger

	shutdownFuncs []func(context.Context) error
}

func New(metrics string, log *slog.Logger) (*Observability, error) {
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	o := &Observability{mp: noop.NewMeterProvider(), log: log}
	if metrics == "" {
		return o, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		))
	if err != nil {
		return nil, fmt.Errorf("creating OTEL resource: %w", err)
	}
	mp, err := o.initMeterProvider(metrics, res)
	if err != nil {
		return nil, fmt.Errorf("initialize meter provider: %w", err)
	}
	o.mp = mp
	o.shutdownFuncs = append(o.shutdownFuncs, mp.Shutdown)
	return o, nil
}

func (o *Observability) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, fn := range o.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("observability shutdown: %w", errors.Join(errs...))
	}
	return nil
}

func (o *Observability) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, opts...)
}

func (o *Observability) Logger() *slog.Logger {
	return o.log
}

// MetricsHandler returns handler of the Prometheus scrape endpoint, nil when
// metrics are not exported to Prometheus.
func (o *Observability) MetricsHandler() http.Handler {
	if o.pr == nil {
		return nil
	}
	return promhttp.HandlerFor(o.pr.(prometheus.Gatherer), promhttp.HandlerOpts{MaxRequestsInFlight: 1})
}

func (o *Observability) PrometheusRegisterer() prometheus.Registerer {
	return o.pr
}

func (o *Observability) initMeterProvider(exporter string, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var reader sdkmetric.Reader
	switch exporter {
	case "stdout":
		me, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(me)
	case "prometheus":
		var err error
		o.pr = prometheus.NewRegistry()
		if reader, err = promexp.New(promexp.WithRegisterer(o.pr), promexp.WithNamespace("ab")); err != nil {
			return nil, fmt.Errorf("creating Prometheus exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported exporter %q", exporter)
	}

	μs := time.Microsecond.Seconds()
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{
					Name:  "duration",
					Scope: instrumentation.Scope{Name: "rest_api"},
				},
				sdkmetric.Stream{
					Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
						Boundaries: []float64{100 * μs, 200 * μs, 400 * μs, 800 * μs, 0.0016, 0.01, 0.05, 0.1},
					},
				},
			),
		),
	), nil
}
