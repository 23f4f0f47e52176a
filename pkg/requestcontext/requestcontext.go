// Package requestcontext carries per-request values set by the middleware chain.
package requestcontext

import (
	"context"

	"orcs/pkg/domain"
)

type (
	requestIDKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	visitorIDKey   struct{}
	deviceLabelKey struct{}
	userIDKey      struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithClientMetadata stores the resolved client IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithVisitorID stores the opaque visitor cookie value.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey{}, visitorID)
}

func VisitorID(ctx context.Context) string {
	v, _ := ctx.Value(visitorIDKey{}).(string)
	return v
}

// WithDeviceLabel stores a short "Browser on OS" label derived from the User-Agent.
func WithDeviceLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, deviceLabelKey{}, label)
}

func DeviceLabel(ctx context.Context) string {
	v, _ := ctx.Value(deviceLabelKey{}).(string)
	return v
}

// WithUserID stores the signed-in user acting in this request.
func WithUserID(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the acting user, or the nil id for anonymous requests.
func UserID(ctx context.Context) domain.UserID {
	v, _ := ctx.Value(userIDKey{}).(domain.UserID)
	return v
}
