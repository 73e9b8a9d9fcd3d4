// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"net/http"

	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/middleware"
	pkgapp "github.com/haierkeys/note-rpc-service/pkg/app"
	"github.com/haierkeys/note-rpc-service/pkg/code"
	apperrors "github.com/haierkeys/note-rpc-service/pkg/errors"
	"github.com/haierkeys/note-rpc-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusSuccess 成功响应中的 status 字段
const StatusSuccess = "success"

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// begin 解码请求并检查方法
// 解码失败不会中断请求，输入视为空对象，由后续结构校验给出 BAD_REQUEST
// writeOnly 的操作只接受 POST
func (h *Handler) begin(c *gin.Context, op string, writeOnly bool) (*pkgapp.Response, any, bool) {
	response := pkgapp.NewResponse(c).WithPath(op)

	payload, err := pkgapp.DecodeRequest(c)
	if err != nil {
		h.App.Logger().Debug("decode input failed, using empty input",
			zap.String(logger.FieldOperation, op),
			zap.String(logger.FieldTraceID, middleware.GetTraceIDFromGin(c)),
			zap.Error(err))
	}

	if writeOnly && c.Request.Method != http.MethodPost {
		response.ToError(code.ErrorMethodNotSupported.WithMessagef(
			`Unsupported %s-request to mutation procedure at path "%s"`, c.Request.Method, op))
		return nil, nil, false
	}

	return response, payload.Input(), true
}

// execute 在逻辑存储的串行队列上执行 fn
func (h *Handler) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return h.App.Execute(ctx, fn)
}

// fail 记录日志并输出错误信封
func (h *Handler) fail(c *gin.Context, op string, err error) {
	fields := []zap.Field{
		zap.String(logger.FieldOperation, op),
		zap.String(logger.FieldTraceID, middleware.GetTraceIDFromGin(c)),
		zap.Error(err),
	}
	if apperrors.IsInternal(err) {
		h.App.Logger().Error("rpc operation failed", fields...)
	} else {
		h.App.Logger().Debug("rpc operation rejected", fields...)
	}
	apperrors.ErrorResponse(c, op, err)
}
