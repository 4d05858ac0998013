package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a span named "<component>.<operation>".
func StartSpan(ctx context.Context, component, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("idleforge/" + component)
	ctx, span := tracer.Start(ctx, component+"."+operation)

	span.SetAttributes(attribute.String("component", component))
	span.SetAttributes(attrs...)
	return ctx, span
}

// StartCommandSpan starts the root span of a CLI command.
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	return StartSpan(ctx, "cli", cmdName, attribute.String("command", cmdName))
}

// RecordSuccess marks the span successful with optional attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError marks the span failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}

// End records err (if any) and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		RecordError(span, err)
	} else {
		RecordSuccess(span)
	}
	span.End()
}
