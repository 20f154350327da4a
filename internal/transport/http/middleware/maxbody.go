package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "catalog-service/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小，超限时读 body 会报错
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "request body too large"))
			return
		}
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
