package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for service spans
const TracerName = "callbridge-backend"

// Attribute keys recorded on call-outcome spans
const (
	AttrAccountNumber   attribute.Key = "callbridge.account_number"
	AttrDirective       attribute.Key = "callbridge.directive"
	AttrCustomerUpdated attribute.Key = "callbridge.customer_updated"
	AttrLoanUpdated     attribute.Key = "callbridge.loan_updated"
	AttrInteractionID   attribute.Key = "callbridge.interaction_id"
	AttrCacheHit        attribute.Key = "callbridge.cache_hit"
)

// StartServiceSpan starts an internal span named {service}.{operation} on
// the global provider. The caller ends it.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "call_outcome", "apply")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Annotate adds attributes to the span carried by ctx. Without a recording
// span it does nothing.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// RecordError records err on span and marks the span failed. A nil err is
// ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AccountNumber tags the account a call concerns
func AccountNumber(account string) attribute.KeyValue {
	return AttrAccountNumber.String(account)
}

// Directive tags the loan-status decision taken for a disposition
func Directive(name string) attribute.KeyValue {
	return AttrDirective.String(name)
}

// CacheHit marks a profile served from the cache
func CacheHit() attribute.KeyValue {
	return AttrCacheHit.Bool(true)
}

// Outcome describes what a committed post-call outcome changed
func Outcome(customerUpdated, loanUpdated bool, interactionID int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrCustomerUpdated.Bool(customerUpdated),
		AttrLoanUpdated.Bool(loanUpdated),
		AttrInteractionID.Int64(interactionID),
	}
}
