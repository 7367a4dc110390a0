package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext drives a running conditions service over HTTP and remembers
// the last response for assertions.
type TestContext struct {
	BaseURL string
	client  *http.Client
	headers map[string]string

	lastStatus int
	lastBody   []byte
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		headers: map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.headers = map[string]string{}
	tc.lastStatus = 0
	tc.lastBody = nil
}

func (tc *TestContext) SetHeader(key, value string) {
	tc.headers[key] = value
}

func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	for k, v := range tc.headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("decode response: %w (body: %s)", err, tc.lastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}
