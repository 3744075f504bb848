package infra

import "context"

type requestIDKey struct{}

// WithRequestID stores the request correlation ID on the context. The facade
// middleware sets it for every inbound request; the record-service client
// forwards it on outbound calls so one dashboard action can be traced across
// both hops.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation ID, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
