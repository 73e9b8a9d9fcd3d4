package code

import "net/http"

// 错误分类名称
const (
	BadRequest          = "BAD_REQUEST"
	Conflict            = "CONFLICT"
	NotFound            = "NOT_FOUND"
	MethodNotSupported  = "METHOD_NOT_SUPPORTED"
	InternalServerError = "INTERNAL_SERVER_ERROR"
)

var (
	ErrorBadRequest = NewError(BadRequest, http.StatusBadRequest, lang{
		en:    "Invalid input",
		zh_cn: "参数错误",
	})
	ErrorNoteTitleExists = NewError(Conflict, http.StatusConflict, lang{
		en:    "Note with that title already exists",
		zh_cn: "已存在相同标题的笔记",
	})
	ErrorNoteNotFound = NewError(NotFound, http.StatusNotFound, lang{
		en:    "No note with that Id exists",
		zh_cn: "该 Id 对应的笔记不存在",
	})
	ErrorMethodNotSupported = NewError(MethodNotSupported, http.StatusMethodNotAllowed, lang{
		en:    "Method not supported",
		zh_cn: "不支持的请求方法",
	})
	ErrorServerInternal = NewError(InternalServerError, http.StatusInternalServerError, lang{
		en:    "Something went wrong",
		zh_cn: "服务器内部错误",
	})
	// ErrorNotFoundAPI 未注册的接口，以纯文本 404 输出而不是 RPC 错误信封
	ErrorNotFoundAPI = NewError(NotFound, http.StatusNotFound, lang{
		en:    "Not Found",
		zh_cn: "接口不存在",
	})
)
