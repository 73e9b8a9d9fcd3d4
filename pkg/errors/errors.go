// Package errors maps arbitrary failures onto the RPC error taxonomy
// Package errors 将任意错误映射到 RPC 错误分类
package errors

import (
	"errors"
	"time"

	"github.com/haierkeys/note-rpc-service/pkg/app"
	"github.com/haierkeys/note-rpc-service/pkg/code"
	"github.com/haierkeys/note-rpc-service/pkg/schema"

	"github.com/gin-gonic/gin"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code *code.Code `json:"-"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Code.Msg()
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// ToCode maps err onto the taxonomy.
// *code.Code and *AppError keep their code, schema failures become BAD_REQUEST with the first issue,
// anything else is INTERNAL_SERVER_ERROR carrying err's text when it has one.
// ToCode 将错误映射到分类。
// *code.Code 与 *AppError 保持原分类，结构校验失败为 BAD_REQUEST，其余为 INTERNAL_SERVER_ERROR 并携带错误文本。
func ToCode(err error) *code.Code {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr
	}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return code.ErrorBadRequest.WithMessage(verr.Error())
	}

	if msg := err.Error(); msg != "" {
		return code.ErrorServerInternal.WithMessage(msg)
	}
	return code.ErrorServerInternal
}

// IsInternal 判断错误是否会被映射为 INTERNAL_SERVER_ERROR
func IsInternal(err error) bool {
	c := ToCode(err)
	return c != nil && c.Name() == code.InternalServerError
}

// ErrorResponse 统一错误响应处理
// 将错误转换为 Code 并输出 RPC 错误信封
func ErrorResponse(c *gin.Context, path string, err error) {
	app.NewResponse(c).WithPath(path).ToError(ToCode(err))
}
