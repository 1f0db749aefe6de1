package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func serve(db Pinger, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "optica_test_total", Help: "test"}))

	r := gin.New()
	NewHandler(db, reg).RegisterRoutes(r.Group("/api/v1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := serve(pinger{}, "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(pinger{}, "/api/v1/health/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(pinger{err: errors.New("down")}, "/api/v1/health/ready").Code)
}

func TestMetrics(t *testing.T) {
	w := serve(pinger{}, "/api/v1/health/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "optica_test_total")
}
