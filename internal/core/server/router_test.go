package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), Options{Name: "api", CORSOrigins: []string{"https://shop.example"}})
	r.GET("/panic", func(*gin.Context) { panic("x") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://shop.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServerLifecycle(t *testing.T) {
	srv := BuildServer(Addr("127.0.0.1", 0), http.NotFoundHandler(), time.Second, time.Second, time.Second)
	assert.Equal(t, "127.0.0.1:0", srv.Addr)

	done := make(chan error, 1)
	go func() { done <- StartHTTP(srv, zap.NewNop()) }()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, Shutdown(srv, time.Second))
	assert.NoError(t, <-done)
}
