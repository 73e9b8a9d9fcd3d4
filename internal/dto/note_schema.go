package dto

import "github.com/haierkeys/note-rpc-service/pkg/schema"

// 默认分页参数
const (
	DefaultPageSize = 10
	DefaultPage     = 1
)

// CreateNoteSchema 创建笔记输入结构
var CreateNoteSchema = schema.Schema{
	schema.F("title", schema.String().Required("Title is required")),
	schema.F("content", schema.String().Required("Content is required")),
	schema.F("category", schema.String()),
	schema.F("published", schema.Bool()),
}

// UpdateNoteSchema 更新笔记输入结构，所有字段可选
var UpdateNoteSchema = schema.Schema{
	schema.F("title", schema.String()),
	schema.F("content", schema.String()),
	schema.F("category", schema.String()),
	schema.F("published", schema.Bool()),
}

// NoteFilterSchema 分页查询输入结构
var NoteFilterSchema = schema.Schema{
	schema.F("limit", schema.Int().Default(DefaultPageSize)),
	schema.F("page", schema.Int().Default(DefaultPage)),
}

// NoteIDSchema { noteId }
var NoteIDSchema = schema.Schema{
	schema.F("noteId", schema.String().Required("Note id is required")),
}

// UpdateNoteRequestSchema { noteId, body }
var UpdateNoteRequestSchema = schema.Schema{
	schema.F("noteId", schema.String().Required("Note id is required")),
	schema.F("body", schema.Object(UpdateNoteSchema).Default(map[string]any{})),
}
