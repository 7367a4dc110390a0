// Package httputil holds the JSON response and request helpers shared by handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "fellinglicence/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies accepted by DecodeAndPrepare.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body written for every error.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status. Descriptions of
// internal errors are not exposed.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.GetCode(err)
	status := StatusFor(code)

	resp := ErrorResponse{Error: string(code)}
	var de *dErrors.Error
	if status < http.StatusInternalServerError || code == dErrors.CodeUnavailable {
		if errors.As(err, &de) {
			resp.Description = de.Message
		} else {
			resp.Description = err.Error()
		}
	}
	WriteJSON(w, status, resp)
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Validatable is implemented by request bodies that check and normalise themselves.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON body into T and validates it. On failure it
// writes the error response and returns ok=false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is required")
		}
		logger.WarnContext(ctx, "failed to decode request body", "request_id", requestID, "error", err)
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON request body"))
		return nil, false
	}

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed", "request_id", requestID, "error", err)
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
