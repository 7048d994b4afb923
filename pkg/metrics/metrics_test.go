package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_GinMiddlewareCountsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := New()

	router := gin.New()
	router.Use(c.GinMiddleware())
	router.GET("/ok", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	router.GET("/boom", func(ctx *gin.Context) { ctx.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/ok", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snap := c.Snapshot()
	assert.Equal(t, int64(3), snap.RequestsTotal)
	assert.Equal(t, int64(1), snap.RequestsFailed)
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.IncDelivered()
	c.IncDelivered()
	c.IncFailed()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var snap Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(2), snap.PushDelivered)
	assert.Equal(t, int64(1), snap.PushFailed)
	assert.Equal(t, int64(0), snap.AvgLatencyMicros)
}
