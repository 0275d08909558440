package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightd/insightd/pkg/metrics"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	registry := metrics.NewRegistry(metrics.WithPrefix("app"), metrics.WithNamespace("testsvc"))
	return New(Config{
		Addr:    "127.0.0.1:0",
		Version: "test",
	}, metrics.NewCollector(registry))
}

func doJSON(t *testing.T, a *API, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func ingestBody(sourceMetrics ...map[string]any) map[string]any {
	return map[string]any{
		"source":  "test-client",
		"metrics": sourceMetrics,
	}
}

func measurement(name, typ string, value float64) map[string]any {
	return map[string]any{
		"name":        name,
		"metric_type": typ,
		"help":        "help for " + name,
		"labels":      map[string]string{"service": "checkout"},
		"value":       map[string]any{"value": value, "timestamp": nil},
	}
}

func TestHandleHealth(t *testing.T) {
	a := newTestAPI(t)
	rec := doJSON(t, a, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestHandleStatus(t *testing.T) {
	a := newTestAPI(t)

	rec := doJSON(t, a, http.MethodPost, "/api/metrics", ingestBody(
		measurement("orders_total", "counter", 1),
		measurement("queue_depth", "gauge", 5),
	))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, a, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp.Status)
	assert.Equal(t, 2, resp.MetricsCount)
	assert.NotEmpty(t, resp.StartTime)
}

func TestHandleIngest(t *testing.T) {
	t.Run("full success", func(t *testing.T) {
		a := newTestAPI(t)
		rec := doJSON(t, a, http.MethodPost, "/api/metrics", ingestBody(
			measurement("orders_total", "counter", 3),
			measurement("queue_depth", "gauge", 12),
			measurement("latency_seconds", "histogram", 0.25),
		))
		require.Equal(t, http.StatusOK, rec.Code)

		var result metrics.BatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 3, result.Processed)
		assert.Equal(t, metrics.StatusSuccess, result.Status)
		assert.Empty(t, result.Errors)

		// Errors must serialize as an empty array, not null.
		assert.Contains(t, rec.Body.String(), `"errors":[]`)
	})

	t.Run("malformed body", func(t *testing.T) {
		a := newTestAPI(t)
		req := httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_json", resp.Error)
	})

	t.Run("empty source rejected", func(t *testing.T) {
		a := newTestAPI(t)
		body := ingestBody(measurement("orders_total", "counter", 1))
		body["source"] = ""
		rec := doJSON(t, a, http.MethodPost, "/api/metrics", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_batch", resp.Error)
	})

	t.Run("duplicate measurements rejected", func(t *testing.T) {
		a := newTestAPI(t)
		m := measurement("orders_total", "counter", 1)
		rec := doJSON(t, a, http.MethodPost, "/api/metrics", ingestBody(m, m))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "duplicate")
	})

	t.Run("reserved label yields partial success", func(t *testing.T) {
		a := newTestAPI(t)
		bad := measurement("buckets_seen", "counter", 1)
		bad["labels"] = map[string]string{"le": "0.5"}
		rec := doJSON(t, a, http.MethodPost, "/api/metrics", ingestBody(
			measurement("orders_total", "counter", 1),
			bad,
			measurement("queue_depth", "gauge", 2),
		))
		require.Equal(t, http.StatusOK, rec.Code)

		var result metrics.BatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Processed)
		assert.Equal(t, metrics.StatusPartialSuccess, result.Status)
		assert.Len(t, result.Errors, 1)
	})

	t.Run("all summaries fail the request", func(t *testing.T) {
		a := newTestAPI(t)
		rec := doJSON(t, a, http.MethodPost, "/api/metrics", ingestBody(
			measurement("p50", "summary", 1),
			measurement("p99", "summary", 2),
		))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "all_failed", resp.Error)
	})
}

func TestHandleExposition(t *testing.T) {
	t.Run("empty registry yields placeholder", func(t *testing.T) {
		a := newTestAPI(t)
		rec := doJSON(t, a, http.MethodGet, "/metrics", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, expositionContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, "# No metrics found in registry\n", rec.Body.String())
	})

	t.Run("pushed metrics appear qualified", func(t *testing.T) {
		a := newTestAPI(t)
		rec := doJSON(t, a, http.MethodPost, "/api/metrics", ingestBody(
			measurement("orders_total", "counter", 3),
		))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, a, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "# HELP app_testsvc_orders_total help for orders_total")
		assert.Contains(t, body, "# TYPE app_testsvc_orders_total counter")
		assert.Contains(t, body, `app_testsvc_orders_total{service="checkout"} 3`)
	})

	t.Run("custom endpoint path", func(t *testing.T) {
		registry := metrics.NewRegistry()
		a := New(Config{Addr: "127.0.0.1:0", MetricsEndpoint: "/scrape"}, metrics.NewCollector(registry))

		rec := doJSON(t, a, http.MethodGet, "/scrape", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInternalMetrics(t *testing.T) {
	a := newTestAPI(t)

	// Generate some traffic first so the request counter has samples.
	doJSON(t, a, http.MethodGet, "/api/health", nil)

	rec := doJSON(t, a, http.MethodGet, "/internal/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, "insightd_http_requests_total")
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an ID when absent", func(t *testing.T) {
		a := newTestAPI(t)
		rec := doJSON(t, a, http.MethodGet, "/api/health", nil)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("preserves a provided ID", func(t *testing.T) {
		a := newTestAPI(t)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})
}

func TestStartStop(t *testing.T) {
	a := newTestAPI(t)
	require.NoError(t, a.Start())
	assert.GreaterOrEqual(t, a.Uptime(), int64(0))
	require.NoError(t, a.Stop(t.Context()))
}
