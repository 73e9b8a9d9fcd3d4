package api_router

import (
	"context"

	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/dto"

	"github.com/gin-gonic/gin"
)

// RPC 操作名
const (
	OpGetHello   = "getHello"
	OpCreateNote = "createNote"
	OpGetNote    = "getNote"
	OpGetNotes   = "getNotes"
	OpUpdateNote = "updateNote"
	OpDeleteNote = "deleteNote"
)

// HelloMessage getHello 返回的问候语
const HelloMessage = "Hello from the note RPC service"

// HelloResult getHello 响应
type HelloResult struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// NoteData createNote 响应中的 data
type NoteData struct {
	Note *dto.NoteDTO `json:"note"`
}

// CreateNoteResult createNote 响应
type CreateNoteResult struct {
	Status string   `json:"status"`
	Data   NoteData `json:"data"`
}

// NoteResult getNote / updateNote 响应
type NoteResult struct {
	Status string       `json:"status"`
	Note   *dto.NoteDTO `json:"note"`
}

// NotesResult getNotes 响应
type NotesResult struct {
	Status  string         `json:"status"`
	Results int            `json:"results"`
	Notes   []*dto.NoteDTO `json:"notes"`
}

// StatusResult deleteNote 响应
type StatusResult struct {
	Status string `json:"status"`
}

// NoteHandler 笔记 RPC 处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// GetHello 连通性检查，任意方法
func (h *NoteHandler) GetHello(c *gin.Context) {
	response, _, ok := h.begin(c, OpGetHello, false)
	if !ok {
		return
	}
	response.ToSuccess(HelloResult{
		Message: HelloMessage,
		Status:  StatusSuccess,
		Version: h.App.Version().Version,
	})
}

// CreateNote 创建笔记，仅 POST
func (h *NoteHandler) CreateNote(c *gin.Context) {
	response, input, ok := h.begin(c, OpCreateNote, true)
	if !ok {
		return
	}

	params, err := h.App.Parser().ParseCreateNote(input)
	if err != nil {
		h.fail(c, OpCreateNote, err)
		return
	}

	var note *dto.NoteDTO
	err = h.execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		note, err = h.App.NoteService.Create(ctx, params)
		return err
	})
	if err != nil {
		h.fail(c, OpCreateNote, err)
		return
	}

	response.ToSuccess(CreateNoteResult{Status: StatusSuccess, Data: NoteData{Note: note}})
}

// GetNote 获取单条笔记，任意方法
func (h *NoteHandler) GetNote(c *gin.Context) {
	response, input, ok := h.begin(c, OpGetNote, false)
	if !ok {
		return
	}

	id, err := h.App.Parser().ParseNoteID(input)
	if err != nil {
		h.fail(c, OpGetNote, err)
		return
	}

	var note *dto.NoteDTO
	err = h.execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		note, err = h.App.NoteService.Get(ctx, id)
		return err
	})
	if err != nil {
		h.fail(c, OpGetNote, err)
		return
	}

	response.ToSuccess(NoteResult{Status: StatusSuccess, Note: note})
}

// GetNotes 分页获取笔记，任意方法
func (h *NoteHandler) GetNotes(c *gin.Context) {
	response, input, ok := h.begin(c, OpGetNotes, false)
	if !ok {
		return
	}

	params, err := h.App.Parser().ParseNoteFilter(input)
	if err != nil {
		h.fail(c, OpGetNotes, err)
		return
	}

	var notes []*dto.NoteDTO
	err = h.execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		notes, err = h.App.NoteService.List(ctx, params)
		return err
	})
	if err != nil {
		h.fail(c, OpGetNotes, err)
		return
	}

	response.ToSuccess(NotesResult{Status: StatusSuccess, Results: len(notes), Notes: notes})
}

// UpdateNote 部分更新笔记，仅 POST
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	response, input, ok := h.begin(c, OpUpdateNote, true)
	if !ok {
		return
	}

	id, params, err := h.App.Parser().ParseUpdateNote(input)
	if err != nil {
		h.fail(c, OpUpdateNote, err)
		return
	}

	var note *dto.NoteDTO
	err = h.execute(c.Request.Context(), func(ctx context.Context) error {
		var err error
		note, err = h.App.NoteService.Update(ctx, id, params)
		return err
	})
	if err != nil {
		h.fail(c, OpUpdateNote, err)
		return
	}

	response.ToSuccess(NoteResult{Status: StatusSuccess, Note: note})
}

// DeleteNote 删除笔记，仅 POST
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	response, input, ok := h.begin(c, OpDeleteNote, true)
	if !ok {
		return
	}

	id, err := h.App.Parser().ParseNoteID(input)
	if err != nil {
		h.fail(c, OpDeleteNote, err)
		return
	}

	err = h.execute(c.Request.Context(), func(ctx context.Context) error {
		return h.App.NoteService.Delete(ctx, id)
	})
	if err != nil {
		h.fail(c, OpDeleteNote, err)
		return
	}

	response.ToSuccess(StatusResult{Status: StatusSuccess})
}
