package mysqlreconnect

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/SimpleNexus/activerecord-mysql-reconnect"
	instrumentationVersion = "v0.1.0"
)

var telemetryEnabled atomic.Bool

var (
	metricsOnce      sync.Once
	retryCounter     metric.Int64Counter
	exhaustedCounter metric.Int64Counter
)

// EnableTelemetry enables or disables OpenTelemetry tracing and metrics for
// retry runs. Off by default.
func EnableTelemetry(enabled bool) {
	telemetryEnabled.Store(enabled)
}

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
}

func initMetrics() {
	meter := otel.Meter(instrumentationName)
	retryCounter, _ = meter.Int64Counter("db.retry.attempts",
		metric.WithDescription("Retries performed after transient database errors"))
	exhaustedCounter, _ = meter.Int64Counter("db.retry.exhausted",
		metric.WithDescription("Operations that failed after exhausting retries"))
}

// startRunSpan opens a span for one executor run. Returns the incoming
// context untouched when telemetry is off.
func startRunSpan(ctx context.Context, sql string) (context.Context, trace.Span) {
	if !telemetryEnabled.Load() {
		return ctx, nil
	}
	ctx, span := tracer().Start(ctx, "mysqlreconnect.run")
	span.SetAttributes(attribute.String("db.system", "mysql"))
	if sql != "" {
		span.SetAttributes(attribute.String("db.statement", sql))
	}
	return ctx, span
}

func finishRunSpan(span trace.Span, attempts int, err error) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("db.retry.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func recordRetry(ctx context.Context, attemptNo int) {
	if !telemetryEnabled.Load() {
		return
	}
	metricsOnce.Do(initMetrics)
	if retryCounter != nil {
		retryCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("attempt", attemptNo)))
	}
}

func recordExhausted(ctx context.Context) {
	if !telemetryEnabled.Load() {
		return
	}
	metricsOnce.Do(initMetrics)
	if exhaustedCounter != nil {
		exhaustedCounter.Add(ctx, 1)
	}
}
