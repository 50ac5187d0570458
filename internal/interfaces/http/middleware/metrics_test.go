package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	result := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			result[m.Name] = m
		}
	}
	return result
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(HTTPMetrics(provider.Meter("http.server"), nil))
	r.GET("/pos/sales/:id", func(c *gin.Context) { c.String(http.StatusOK, "sale") })

	for _, path := range []string{"/pos/sales/1", "/pos/sales/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	metrics := collectMetrics(t, reader)

	total, ok := metrics["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http_route"))
		status, _ := dp.Attributes.Value(attribute.Key("http_status_code"))
		counts[route.AsString()+" "+status.Emit()] = dp.Value
	}
	assert.Equal(t, int64(2), counts["/pos/sales/:id 200"])
	assert.Equal(t, int64(1), counts["unknown 404"])

	duration, ok := metrics["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var observed uint64
	for _, dp := range duration.DataPoints {
		observed += dp.Count
	}
	assert.Equal(t, uint64(3), observed)

	active, ok := metrics["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, nil))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
