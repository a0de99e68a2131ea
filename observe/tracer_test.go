package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTracer(tp.Tracer("test")), recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestCheckMeta_SpanName(t *testing.T) {
	if got := (CheckMeta{Name: "redis"}).SpanName(); got != "health.check.redis" {
		t.Errorf("SpanName() = %q", got)
	}
}

func TestTracer_SuccessSpan(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.StartSpan(context.Background(), CheckMeta{Name: "redis", Flag: "ENABLE_REDIS_CHECK"})
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "health.check.redis" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
	if v, ok := spanAttr(s, "check.name"); !ok || v.AsString() != "redis" {
		t.Errorf("check.name = %v", v)
	}
	if v, ok := spanAttr(s, "check.flag"); !ok || v.AsString() != "ENABLE_REDIS_CHECK" {
		t.Errorf("check.flag = %v", v)
	}
	if v, _ := spanAttr(s, "check.error"); v.AsBool() {
		t.Error("check.error = true on success")
	}
}

func TestTracer_ErrorSpan(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.StartSpan(context.Background(), CheckMeta{Name: "database"})
	tracer.EndSpan(span, errors.New("connection refused"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "connection refused" {
		t.Errorf("description = %q", s.Status().Description)
	}
	if v, _ := spanAttr(s, "check.error"); !v.AsBool() {
		t.Error("check.error = false on failure")
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
	if _, ok := spanAttr(s, "check.flag"); ok {
		t.Error("check.flag must be omitted when empty")
	}
}
