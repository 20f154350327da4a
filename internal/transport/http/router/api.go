package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"catalog-service/internal/core/server"
	mdw "catalog-service/internal/transport/http/middleware"
)

// Options 单个端（api / admin）的防护参数
type Options struct {
	RatePerSec     float64
	RateBurst      int
	MaxConcurrent  int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	CORSOrigins    []string
}

func newEngine(name string, l *zap.Logger, o Options) *gin.Engine {
	r := server.NewRouter(l, server.Options{Name: name, CORSOrigins: o.CORSOrigins})
	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(o.RatePerSec), o.RateBurst),
		mdw.ConcurrencyLimit(o.MaxConcurrent),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.SimpleRecovery(l),
	)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewAPIEngine 公开只读端，挂载 /api/v1 下所有已注册模块
func NewAPIEngine(l *zap.Logger, reg *Registry, o Options) *gin.Engine {
	r := newEngine("api", l, o)
	reg.MountAPI(r.Group("/api/v1"))
	return r
}
