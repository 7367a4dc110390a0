// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them without importing net/http:
//
//	actor := requestcontext.UserID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Service tests inject them directly:
//
//	ctx = requestcontext.WithRequestID(ctx, "req-123")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "fellinglicence/pkg/domain"
)

type (
	userIDKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	apiVersionKey  struct{}
)

var (
	ContextKeyUserID      = userIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyAPIVersion  = apiVersionKey{}
)

// UserID retrieves the acting user from the context.
// Returns the zero value (nil UUID) if not set.
func UserID(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(ContextKeyUserID).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// WithUserID injects the acting user into the context.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for workers, CLI runs and tests that did not set one.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// APIVersion retrieves the API version of the matched route.
func APIVersion(ctx context.Context) id.APIVersion {
	if v, ok := ctx.Value(ContextKeyAPIVersion).(id.APIVersion); ok {
		return v
	}
	return ""
}

// WithAPIVersion injects the API version of the matched route.
func WithAPIVersion(ctx context.Context, v id.APIVersion) context.Context {
	return context.WithValue(ctx, ContextKeyAPIVersion, v)
}
