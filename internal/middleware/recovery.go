package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/note-rpc-service/pkg/app"
	"github.com/haierkeys/note-rpc-service/pkg/code"
	apperrors "github.com/haierkeys/note-rpc-service/pkg/errors"
	"github.com/haierkeys/note-rpc-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
// panic 以 INTERNAL_SERVER_ERROR 信封返回
func RecoveryWithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		defer func() {
			if err := recover(); err != nil {
				var codeObj *code.Code
				switch e := err.(type) {
				case error:
					codeObj = apperrors.ToCode(e)
				case string:
					codeObj = code.ErrorServerInternal.WithMessage(e)
				default:
					codeObj = code.ErrorServerInternal
				}

				log.Error("Recovered from panic",
					zap.String("router", path),
					zap.String(logger.FieldMethod, c.Request.Method),
					zap.String("query", query),
					zap.String("ip", c.ClientIP()),
					zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
					zap.String("panic_value", fmt.Sprintf("%v", err)),
					zap.String("stack", string(debug.Stack())),
				)

				// 返回统一的错误响应
				app.NewResponse(c).WithPath(OperationName(c)).ToError(codeObj)
				c.Abort()
			}
		}()

		c.Next()
	}
}
