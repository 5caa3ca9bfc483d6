package observing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricPoolActive = "db.connection.pool.active"
	metricPoolIdle   = "db.connection.pool.idle"
	metricPoolTotal  = "db.connection.pool.total"
)

// statser is the minimal surface pool metrics need from a connection.
type statser interface {
	Stats() (map[string]any, error)
}

// asInt64 converts the numeric values that driver Stats() maps actually
// contain. Non-numeric values report false.
func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint32:
		return int64(val), true
	case uint64:
		if val <= 1<<63-1 {
			return int64(val), true
		}
		return 0, false
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}

func extractPoolStats(stats map[string]any) (inUse, idle, maxOpen int64) {
	if val, ok := asInt64(stats["in_use"]); ok {
		inUse = val
	}
	if val, ok := asInt64(stats["idle"]); ok {
		idle = val
	}
	if val, ok := asInt64(stats["max_open_connections"]); ok {
		maxOpen = val
	}
	return
}

type poolMetricsRegistration struct {
	conn        statser
	activeGauge metric.Int64ObservableGauge
	idleGauge   metric.Int64ObservableGauge
	totalGauge  metric.Int64ObservableGauge
	attrs       []attribute.KeyValue
}

// observePoolStats reads pool statistics and updates the gauges. Called by the
// meter during collection; a Stats failure skips the cycle rather than failing it.
func (r *poolMetricsRegistration) observePoolStats(_ context.Context, observer metric.Observer) error {
	stats, err := r.conn.Stats()
	if err != nil {
		return nil
	}

	inUse, idle, maxOpen := extractPoolStats(stats)

	if r.activeGauge != nil {
		observer.ObserveInt64(r.activeGauge, inUse, metric.WithAttributes(r.attrs...))
	}
	if r.idleGauge != nil {
		observer.ObserveInt64(r.idleGauge, idle, metric.WithAttributes(r.attrs...))
	}
	if r.totalGauge != nil {
		observer.ObserveInt64(r.totalGauge, maxOpen, metric.WithAttributes(r.attrs...))
	}

	return nil
}

func createGauge(meter metric.Meter, name, description string) metric.Int64ObservableGauge {
	gauge, err := meter.Int64ObservableGauge(name, metric.WithDescription(description))
	logMetricError(name, err)
	return gauge
}

// RegisterConnectionPoolMetrics registers observable gauges reporting the
// wrapped connection's pool usage. It degrades gracefully: gauges that fail to
// register are skipped, and the returned cleanup function is always safe to
// call.
func RegisterConnectionPoolMetrics(conn statser, vendor string) func() {
	meter := otel.Meter(instrumentationName)

	reg := &poolMetricsRegistration{
		conn:  conn,
		attrs: []attribute.KeyValue{attribute.String(attrSystem, vendor)},
	}

	reg.activeGauge = createGauge(meter, metricPoolActive, "Number of active database connections")
	reg.idleGauge = createGauge(meter, metricPoolIdle, "Number of idle database connections")
	reg.totalGauge = createGauge(meter, metricPoolTotal, "Maximum number of database connections configured")

	var instruments []metric.Observable
	for _, g := range []metric.Int64ObservableGauge{reg.activeGauge, reg.idleGauge, reg.totalGauge} {
		if g != nil {
			instruments = append(instruments, g)
		}
	}
	if len(instruments) == 0 {
		return func() {}
	}

	registration, err := meter.RegisterCallback(reg.observePoolStats, instruments...)
	if err != nil {
		logMetricError("pool_metrics_callback", err)
		return func() {}
	}

	return func() {
		if err := registration.Unregister(); err != nil {
			logMetricError("pool_metrics_unregister", err)
		}
	}
}
