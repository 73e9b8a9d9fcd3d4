package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS 响应头
const (
	CorsAllowOrigin  = "*"
	CorsAllowMethods = "GET, POST, OPTIONS"
	CorsAllowHeaders = "Content-Type, Authorization, X-Trace-ID"
	CorsMaxAge       = "86400"
)

// Cors 为所有响应附加 CORS 头，OPTIONS 预检请求直接返回 204
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", CorsAllowOrigin)
		h.Set("Access-Control-Allow-Methods", CorsAllowMethods)
		h.Set("Access-Control-Allow-Headers", CorsAllowHeaders)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", CorsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
