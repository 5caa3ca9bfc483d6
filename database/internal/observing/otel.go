package observing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

// Observed operation names, used for span naming and metric attributes.
const (
	opLoad    = "load"
	opExecute = "execute"
)

const (
	instrumentationName = "dbscope/database"

	metricQueryCalls    = "db.client.calls"
	metricQueryDuration = "db.client.operation.duration"

	attrOperation = "db.operation.name"
	attrSystem    = "db.system"

	// Span attributes should stay a reasonable size.
	maxSpanQueryAttrLen = 2000
)

var (
	meterOnce sync.Once

	queryCallsCounter      metric.Int64Counter
	queryDurationHistogram metric.Float64Histogram
)

// logMetricError reports a metric initialization failure to stderr. Metrics
// are best-effort and must never break the query path.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", metricName, err)
	}
}

func initMeter() {
	meter := otel.Meter(instrumentationName)

	var err error
	queryCallsCounter, err = meter.Int64Counter(
		metricQueryCalls,
		metric.WithDescription("Total number of observed database operations"),
	)
	logMetricError(metricQueryCalls, err)

	queryDurationHistogram, err = meter.Float64Histogram(
		metricQueryDuration,
		metric.WithDescription("Duration of observed database operations in milliseconds"),
		metric.WithUnit("ms"),
	)
	logMetricError(metricQueryDuration, err)
}

// createQuerySpan emits a client span for an observed operation, carrying the
// database semantic attributes and the exact operation start time.
func createQuerySpan(ctx context.Context, vendor, operation, queryText string, start time.Time, err error) {
	tracer := otel.Tracer(instrumentationName)

	_, span := tracer.Start(ctx, "db."+operation,
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	span.SetAttributes(
		attribute.String(attrSystem, vendor),
		attribute.String(attrOperation, operation),
		semconv.DBQueryText(TruncateString(queryText, maxSpanQueryAttrLen)),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// recordQueryMetrics records the call counter and duration histogram for an
// observed operation. Failures here never impact query execution.
func recordQueryMetrics(ctx context.Context, vendor, operation string, elapsed time.Duration, err error) {
	meterOnce.Do(initMeter)

	attrs := metric.WithAttributes(
		attribute.String(attrSystem, vendor),
		attribute.String(attrOperation, operation),
		attribute.Bool("error", err != nil),
	)

	if queryCallsCounter != nil {
		queryCallsCounter.Add(ctx, 1, attrs)
	}
	if queryDurationHistogram != nil {
		queryDurationHistogram.Record(ctx, durationToMillis(elapsed), attrs)
	}
}
