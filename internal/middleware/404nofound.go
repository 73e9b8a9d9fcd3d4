package middleware

import (
	"net/http"

	"github.com/haierkeys/note-rpc-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 未注册的接口以纯文本 404 返回，不使用 RPC 错误信封
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusNotFound, code.ErrorNotFoundAPI.Msg())
		c.Abort()
	}
}
