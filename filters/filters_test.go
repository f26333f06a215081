package filters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestContainer(t *testing.T, log *zap.Logger, metrics *Metrics) *restful.Container {
	t.Helper()

	ws := new(restful.WebService)
	ws.Path("/things").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("/{id}").To(func(req *restful.Request, resp *restful.Response) {
		_ = resp.WriteAsJson(map[string]string{"id": req.PathParameter("id")})
	}))
	ws.Route(ws.GET("/boom").To(func(req *restful.Request, resp *restful.Response) {
		panic("boom")
	}))

	c := restful.NewContainer()
	c.Filter(RequestID())
	c.Filter(Logger(log))
	c.Filter(metrics.Filter)
	c.Filter(Recovery(log))
	c.Add(ws)
	return c
}

func TestFilters(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, reg)
	c := newTestContainer(t, zap.New(core), metrics)

	t.Run("Request id is generated and logged", func(t *testing.T) {
		w := httptest.NewRecorder()
		c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/42", nil))

		require.Equal(t, http.StatusOK, w.Code)
		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)

		entries := logs.FilterMessage("Request").All()
		require.NotEmpty(t, entries)
		fields := entries[len(entries)-1].ContextMap()
		assert.Equal(t, id, fields["request_id"])
		assert.EqualValues(t, http.StatusOK, fields["status_code"])
		assert.Equal(t, "/things/42", fields["path"])
	})

	t.Run("Caller request id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/things/1", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		c.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("Panic becomes 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		c.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
		assert.NotEmpty(t, logs.FilterMessage("Panic while handling request").All())
	})

	t.Run("Metrics are labelled by route template", func(t *testing.T) {
		count := testutil.ToFloat64(metrics.requests.WithLabelValues("/things/{id}", http.MethodGet, "200"))
		assert.Equal(t, float64(2), count)

		w := httptest.NewRecorder()
		metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), "receita_http_requests_total"))
	})
}
