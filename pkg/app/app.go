// Package app provides the RPC envelope formatter and request decoder
// Package app 提供 RPC 响应信封格式化与请求解码
package app

import (
	"github.com/haierkeys/note-rpc-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// ResultBody success envelope: {"result":{"data":...}}
// ResultBody 成功信封
type ResultBody struct {
	Result ResultData `json:"result"`
}

type ResultData struct {
	Data any `json:"data"`
}

// ErrorBody error envelope: {"error":{"message","code","data"}}
// ErrorBody 错误信封
type ErrorBody struct {
	Error ErrorShape `json:"error"`
}

type ErrorShape struct {
	Message string    `json:"message"`
	Code    string    `json:"code"`
	Data    ErrorData `json:"data"`
}

// ErrorData mirrors the extra error data of the RPC wire format
// ErrorData RPC 线格式中错误的附加数据
type ErrorData struct {
	Code       string   `json:"code"`
	HttpStatus int      `json:"httpStatus"`
	Path       string   `json:"path,omitempty"`
	Details    []string `json:"details,omitempty"`
}

// Response writes envelopes to a gin context
// Response 将信封写入 gin 上下文
type Response struct {
	Ctx   *gin.Context
	Batch bool
	Path  string
}

// NewResponse creates a Response, batch mode follows the `batch` query parameter
// NewResponse 创建 Response，批量模式取决于 `batch` 查询参数是否存在
func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx:   ctx,
		Batch: IsBatch(ctx.Request.URL.Query()),
	}
}

// WithPath sets the operation name reported in error data
// WithPath 设置错误数据中的操作名称
func (r *Response) WithPath(path string) *Response {
	r.Path = path
	return r
}

// SuccessBody builds the success envelope, single or batched
// SuccessBody 构造成功信封（单个或批量）
func SuccessBody(data any, batch bool) any {
	body := ResultBody{Result: ResultData{Data: data}}
	if batch {
		return []ResultBody{body}
	}
	return body
}

// ErrorBodyOf builds the error envelope, single or batched
// ErrorBodyOf 构造错误信封（单个或批量）
func ErrorBodyOf(c *code.Code, path string, batch bool) any {
	body := ErrorBody{Error: ErrorShape{
		Message: c.Msg(),
		Code:    c.Name(),
		Data: ErrorData{
			Code:       c.Name(),
			HttpStatus: c.StatusCode(),
			Path:       path,
		},
	}}
	if c.HaveDetails() {
		body.Error.Data.Details = c.Details()
	}
	if batch {
		return []ErrorBody{body}
	}
	return body
}

// ToSuccess output to browser: HTTP 200 with the success envelope
// ToSuccess 输出到浏览器：HTTP 200 与成功信封
func (r *Response) ToSuccess(data any) {
	r.Ctx.Set("status_code", 200)
	r.Ctx.Set("rpc_code", "OK")
	r.send(200, SuccessBody(data, r.Batch))
}

// ToError outputs the error envelope with the HTTP status of the code
// ToError 输出错误信封，HTTP 状态码取自 code
func (r *Response) ToError(codeObj *code.Code) {
	r.Ctx.Set("status_code", codeObj.StatusCode())
	r.Ctx.Set("rpc_code", codeObj.Name())
	r.send(codeObj.StatusCode(), ErrorBodyOf(codeObj, r.Path, r.Batch))
}

func (r *Response) send(statusCode int, content any) {
	r.Ctx.JSON(statusCode, content)
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}
