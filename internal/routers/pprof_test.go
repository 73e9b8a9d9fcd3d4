package routers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPrivateRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "private_router_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	get := func(r http.Handler, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	release := NewPrivateRouterWithLogger(gin.ReleaseMode, zap.NewNop(), reg)

	w := get(release, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "private_router_test_total 1")

	assert.Equal(t, http.StatusOK, get(release, "/debug/vars").Code)
	assert.Equal(t, http.StatusNotFound, get(release, DefaultPrefix+"/").Code)

	debug := NewPrivateRouterWithLogger(gin.DebugMode, zap.NewNop(), reg)
	assert.Equal(t, http.StatusOK, get(debug, DefaultPrefix+"/").Code)
	assert.Equal(t, http.StatusOK, get(debug, DefaultPrefix+"/heap").Code)
}
