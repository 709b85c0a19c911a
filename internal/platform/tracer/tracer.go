// Package tracer provides a lightweight tracing abstraction for the auth
// service. It decouples the service from OpenTelemetry APIs so tests run with
// zero tracing overhead.
package tracer

import "context"

// Attribute is a key-value pair recorded on a span.
type Attribute struct {
	Key   string
	Value string
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Noop is a tracer that records nothing. Used in tests.
type Noop struct{}

// NewNoop creates a tracer that discards all spans.
func NewNoop() Noop { return Noop{} }

func (Noop) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) AddEvent(string, ...Attribute) {}
