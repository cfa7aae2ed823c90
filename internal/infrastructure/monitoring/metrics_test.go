package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordClassLoad("builtin", "ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ClassLoads.WithLabelValues("builtin", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ClassLoads.WithLabelValues("builtin", "ok")))
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordClassLoad("builtin", "ok")
	m.RecordClassLoad("builtin", "version_mismatch")
	m.RecordClassLoad("external", "module_not_found")
	m.RecordRender("text/plain", "ok")
	m.RecordRender("application/vnd.jupyter.widget-view+json", "error")
	m.IncViewsDisplayed()
	m.RecordHTTPRequest("GET", "/health", "200", time.Millisecond, 0, 10)
	m.RecordHTTPRequest("POST", "/api/render", "413", time.Millisecond, 0, 10)

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.ClassLoads)
	assert.Equal(t, int64(1), s.ClassFailures)
	assert.Equal(t, int64(1), s.RenderFailures)
	assert.Equal(t, int64(1), s.ViewsDisplayed)
	assert.Equal(t, int64(2), s.TotalRequests)
	assert.Equal(t, int64(1), s.TotalErrors)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordClassLoad("builtin", "ok")
		m.RecordRender("text/plain", "ok")
		m.IncViewsDisplayed()
		m.RecordSanitize("description")
		NewTimer(m, "noop").Stop("success")
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "htmlmanager_http_requests_total"))
	assert.True(t, strings.Contains(body, "htmlmanager_uptime_seconds"))
}
