package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldOperation RPC 操作名称字段
	FieldOperation = "operation"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldStore 逻辑存储名称字段
	FieldStore = "store"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldCode 错误码字段
	FieldCode = "code"

	// FieldError 错误信息字段
	FieldError = "error"
)
