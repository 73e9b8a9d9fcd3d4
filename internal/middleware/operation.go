package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RPCPrefix RPC 接口路径前缀
const RPCPrefix = "/api/trpc/"

// OperationName 返回请求对应的 RPC 操作名，非 RPC 路径返回空串
func OperationName(c *gin.Context) string {
	path := c.Request.URL.Path
	if !strings.HasPrefix(path, RPCPrefix) {
		return ""
	}
	return strings.TrimPrefix(path, RPCPrefix)
}
