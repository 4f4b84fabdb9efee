package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/listonic-sync/internal/apierrors"
)

// newTestTracerProvider creates a tracer provider with in-memory exporter for testing.
func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	ctx, span := StartSpan(context.Background(), nil, "listonic.fetch_lists")

	require.NotNil(t, ctx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_ValidTracer(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	_, span := StartSpan(context.Background(), tp.Tracer("test"), "listonic.fetch_list",
		trace.WithAttributes(AttrListID.Int64(123)))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "listonic.fetch_list", spans[0].Name)
	require.Len(t, spans[0].Attributes, 1)
	assert.Equal(t, int64(123), spans[0].Attributes[0].Value.AsInt64())
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantClass string
	}{
		{name: "auth", err: apierrors.NewAuthError("rejected", nil), wantClass: "auth"},
		{name: "transient", err: apierrors.NewTransientError("timeout", nil), wantClass: "transient"},
		{name: "request", err: apierrors.NewInvalidRequest("bad id"), wantClass: "request"},
		{name: "other", err: errors.New("boom"), wantClass: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			_, span := tp.Tracer("test").Start(context.Background(), "op")
			RecordError(span, tt.err)
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status.Code)
			assert.Equal(t, "operation failed", spans[0].Status.Description)
			require.Len(t, spans[0].Events, 1)

			var class string
			for _, attr := range spans[0].Attributes {
				if attr.Key == AttrErrorClass {
					class = attr.Value.AsString()
				}
			}
			assert.Equal(t, tt.wantClass, class)
		})
	}
}

func TestRecordError_NilSafe(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	assert.NotPanics(t, func() {
		RecordError(span, nil)
		RecordError(nil, errors.New("x"))
	})
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}
