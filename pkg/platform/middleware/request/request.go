// Package request provides the middleware that populates requestcontext:
// correlation id, acting user, request time and API version.
package request

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
	"fellinglicence/pkg/platform/httputil"
	"fellinglicence/pkg/requestcontext"
)

const (
	HeaderRequestID = "X-Request-ID"
	// HeaderActorID carries the user already authenticated by the gateway.
	HeaderActorID = "X-Actor-ID"
)

const maxRequestIDLength = 128

// RequestID reuses an inbound X-Request-ID or generates one, and echoes it
// on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Actor records the acting user from X-Actor-ID. The header is optional;
// a malformed value is rejected.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderActorID)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := id.ParseUserID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+HeaderActorID+" header"))
			return
		}
		ctx := requestcontext.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Time fixes "now" for the whole request so records and audit events agree.
func Time(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Version tags requests routed under a versioned subrouter.
//
//	r.Route(id.APIVersionV1.Prefix(), func(v1 chi.Router) {
//	    v1.Use(request.Version(id.APIVersionV1))
//	})
func Version(version id.APIVersion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithAPIVersion(r.Context(), version)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logger logs one line per request after it completes.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			ctx := r.Context()
			logger.Log(ctx, level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestcontext.RequestID(ctx),
			)
		})
	}
}
