// Package testutil provides common test utilities for handler and router tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellinglicence/pkg/platform/httputil"
)

// NewJSONRequest creates a request whose body is body marshaled to JSON.
// A nil body sends no payload.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// Decode unmarshals the response body into T.
func Decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "failed to unmarshal response: %s", rr.Body.String())
	return out
}

// AssertStatusAndError asserts the status and the error code of an error response.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, "unexpected status code: %s", rr.Body.String())
	assert.Equal(t, code, Decode[httputil.ErrorResponse](t, rr).Error, "unexpected error code")
}
