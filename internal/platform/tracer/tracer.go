// Package tracer provides a small tracing abstraction for calls to the hosted
// backend, so adapters can emit spans without depending on OpenTelemetry APIs.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	//   ctx, span := tr.Start(ctx, tracer.SpanDataSelect, tracer.String(tracer.AttrTable, "keys"))
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 prefix of the normalised address so sign-in
// spans can be correlated without carrying the address itself.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the backend adapters.
const (
	SpanDataSelect  = "backend.data.select"
	SpanDataInsert  = "backend.data.insert"
	SpanDataUpsert  = "backend.data.upsert"
	SpanDataUpdate  = "backend.data.update"
	SpanDataDelete  = "backend.data.delete"
	SpanDataRPC     = "backend.data.rpc"
	SpanAuthSignUp  = "backend.auth.sign_up"
	SpanAuthSignIn  = "backend.auth.sign_in"
	SpanAuthSignOut = "backend.auth.sign_out"
	SpanAuthRefresh = "backend.auth.refresh"
)

// Attribute keys.
const (
	AttrTable       = "db.table"
	AttrFunction    = "db.function"
	AttrStatus      = "http.status_code"
	AttrRows        = "db.rows"
	AttrEmailHash   = "user.email_hash"
	AttrBreakerOpen = "circuit.open"
)
