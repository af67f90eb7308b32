package mysqlreconnect

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTelemetry_SpanPerRunWithAttemptCount(t *testing.T) {
	useFakeClock(t)
	enableRetry(t, 3, time.Millisecond, ModeReadOnly)

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	EnableTelemetry(true)
	t.Cleanup(func() { EnableTelemetry(false) })

	calls := 0
	err := Run(context.Background(), func() error {
		calls++
		if calls < 2 {
			return goneAway()
		}
		return nil
	}, WithSQL("SELECT 1"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans=%d want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "mysqlreconnect.run" {
		t.Fatalf("span name=%q", span.Name())
	}
	var sawStatement, sawAttempts bool
	for _, attr := range span.Attributes() {
		switch string(attr.Key) {
		case "db.statement":
			sawStatement = attr.Value.AsString() == "SELECT 1"
		case "db.retry.attempts":
			sawAttempts = attr.Value.AsInt64() == 2
		}
	}
	if !sawStatement || !sawAttempts {
		t.Fatalf("span attributes incomplete: %v", span.Attributes())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "db.retry.attempts" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("retry counter not recorded")
	}
}

func TestTelemetry_DisabledIsInert(t *testing.T) {
	useFakeClock(t)
	enableRetry(t, 2, time.Millisecond, ModeReadOnly)

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	EnableTelemetry(false)

	_ = Run(context.Background(), func() error { return goneAway() }, WithSQL("SELECT 1"))

	if n := len(recorder.Ended()); n != 0 {
		t.Fatalf("disabled telemetry produced %d spans", n)
	}
}
