package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := NewWith(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/applications/{applicationID}/conditions", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/applications/a/conditions", "/applications/b/conditions", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.Requests.WithLabelValues("/applications/{applicationID}/conditions", http.MethodGet, "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", http.MethodGet, "404")))
}
