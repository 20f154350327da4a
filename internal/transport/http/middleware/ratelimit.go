package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "catalog-service/internal/transport/http/response"
)

func tooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooManyRequests, "too many requests"))
}

// RateLimit 全局令牌桶；rps <= 0 不限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := rate.NewLimiter(rps, max(burst, 1))
	return func(c *gin.Context) {
		if !lim.Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}

// RateLimitPerIP 每个客户端 IP 一个令牌桶
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		lim, ok := buckets[ip]
		if !ok {
			lim = rate.NewLimiter(rps, max(burst, 1))
			buckets[ip] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}
