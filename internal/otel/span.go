// Package otel provides tracing helpers shared by the Listonic client and the coordinator.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/listonic-sync/internal/apierrors"
)

// Attribute keys used on spans across the application
const (
	AttrAccount     = attribute.Key("listonic.account")
	AttrListID      = attribute.Key("listonic.list_id")
	AttrItemID      = attribute.Key("listonic.item_id")
	AttrOperation   = attribute.Key("listonic.operation")
	AttrResultCount = attribute.Key("result.count")
	AttrRetried     = attribute.Key("listonic.auth_retried")
	AttrErrorClass  = attribute.Key("error.class")
)

// StartSpan starts a span with tracer, or returns the context's current span when tracer is nil
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span as failed.
// The status description stays generic so URLs and payloads never reach it.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(AttrErrorClass.String(ErrorClass(err)))
	span.SetStatus(codes.Error, "operation failed")
}

// ErrorClass names the taxonomy bucket of err
func ErrorClass(err error) string {
	switch {
	case apierrors.IsAuth(err):
		return "auth"
	case apierrors.IsTransient(err):
		return "transient"
	case apierrors.IsRequest(err):
		return "request"
	default:
		return "other"
	}
}
