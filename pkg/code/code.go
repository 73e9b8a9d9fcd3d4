package code

import (
	"fmt"
)

// Code is a typed RPC outcome: a taxonomy name, the HTTP status it maps to and a bilingual message
// Code 类型化的 RPC 结果：错误分类名称、对应的 HTTP 状态码以及双语消息
type Code struct {
	// 错误分类名称，如 BAD_REQUEST
	name string
	// HTTP 状态码
	httpStatus int
	// 错误消息
	Lang lang
	// 自定义消息，优先于 Lang
	msg string
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
	// 数据
	data any
	// 是否含有Data
	haveData bool
}

// NewError creates an error code
// NewError 创建错误码
func NewError(name string, httpStatus int, l lang) *Code {
	if name == "" {
		panic("错误分类名称不能为空")
	}
	return &Code{name: name, httpStatus: httpStatus, Lang: l}
}

// Clone 创建一个新的 Code 副本，预定义的错误码不会被修改
func (e *Code) Clone() *Code {
	c := &Code{
		name:        e.name,
		httpStatus:  e.httpStatus,
		Lang:        e.Lang,
		msg:         e.msg,
		haveDetails: e.haveDetails,
		data:        e.data,
		haveData:    e.haveData,
	}
	c.details = append([]string{}, e.details...)
	return c
}

func (e *Code) Error() string {
	return e.Msg()
}

// Name 错误分类名称
func (e *Code) Name() string {
	return e.name
}

// StatusCode HTTP 状态码
func (e *Code) StatusCode() int {
	return e.httpStatus
}

func (e *Code) Msg() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() any {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// Is 同一分类且同一默认消息的 Code 视为相同，用于 errors.Is
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return e.name == t.name && e.Lang == t.Lang
}

// WithMessage returns a copy carrying a custom message
// WithMessage 返回带自定义消息的副本
func (e *Code) WithMessage(msg string) *Code {
	c := e.Clone()
	c.msg = msg
	return c
}

// WithMessagef 格式化自定义消息
func (e *Code) WithMessagef(format string, args ...any) *Code {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

func (e *Code) WithData(data any) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}
