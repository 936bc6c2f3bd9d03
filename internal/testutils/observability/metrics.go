package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	testlogr "github.com/alphabill-org/alphabill-fees/internal/testutils/logger"
)

/*
NOPObservability creates observability implementation where everything is no-op.
Use it for tests for which it absolutely doesn't make sense to create any logs or metrics.
*/
func NOPObservability() *Observability {
	return &Observability{
		mp:  noop.NewMeterProvider(),
		log: testlogr.NOP(),
	}
}

/*
Default creates observability which logs into test log and discards metrics.
*/
func Default(t testing.TB) *Observability {
	return &Observability{
		mp:  noop.NewMeterProvider(),
		log: testlogr.New(t),
	}
}

/*
WithMetrics creates observability which logs into test log and collects
metrics into manual reader, use Collect to read them.
*/
func WithMetrics(t testing.TB) *Observability {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			t.Errorf("shutting down meter provider: %v", err)
		}
	})
	return &Observability{
		mp:     mp,
		reader: reader,
		log:    testlogr.New(t),
	}
}

type Observability struct {
	mp     metric.MeterProvider
	reader *sdkmetric.ManualReader
	log    *slog.Logger
}

func (o *Observability) Logger() *slog.Logger {
	return o.log
}

func (o *Observability) Meter(name string, options ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, options...)
}

// PrometheusRegisterer returns nil, metrics are not exported in tests.
func (o *Observability) PrometheusRegisterer() prometheus.Registerer { return nil }

func (o *Observability) Shutdown() error { return nil }

/*
Collect returns current value of the Int64 sum metric "name" for data point
with given attribute (key=value), when key is empty all data points are summed.
Returns zero when metrics are not collected or the metric doesn't exist.
*/
func (o *Observability) Collect(t testing.TB, name, key, value string) int64 {
	t.Helper()
	if o.reader == nil {
		return 0
	}
	var rm metricdata.ResourceMetrics
	if err := o.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is %T, expected int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if key == "" {
					total += dp.Value
					continue
				}
				if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					total += dp.Value
				}
			}
		}
	}
	return total
}
