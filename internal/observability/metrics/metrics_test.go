package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("kind", "Guest"),
		attribute.String("plate", "ABC123"),
		attribute.String("method", "Cash"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "kind" || attrs[1].Key != "method" {
		t.Fatalf("unexpected attributes retained: %v", attrs)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordTicketEntry(ctx, "Guest")
	m.RecordTicketExit(ctx, "Guest")
	m.RecordPayment(ctx, "Cash", "exit")
	m.RecordReceiptFailure(ctx, "entry")
	m.RecordBusinessError(ctx, "duplicate_open_ticket")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "crudpark-test"}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordTicketEntry(context.Background(), "Subscription")
}

func TestHTTPMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := newHTTPMetrics(reg)
	require.NoError(t, err)

	again, err := newHTTPMetrics(reg)
	require.NoError(t, err)
	require.Same(t, m.requests, again.requests)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("/health", http.MethodGet, "200")))
}
