// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"math"

	"github.com/haierkeys/note-rpc-service/internal/domain"
	"github.com/haierkeys/note-rpc-service/pkg/timex"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  *string    `json:"category,omitempty"`
	Published bool       `json:"published"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// CreateNoteInput Request parameters for creating a note
// CreateNoteInput 创建笔记的请求参数
type CreateNoteInput struct {
	Title     string  `json:"title" binding:"min=1"`
	Content   string  `json:"content"`
	Category  *string `json:"category"`
	Published *bool   `json:"published"`
}

// UpdateNoteInput Request parameters for updating a note, nil means not provided
// UpdateNoteInput 更新笔记的请求参数，nil 表示未提供
type UpdateNoteInput struct {
	Title     *string `json:"title" binding:"omitempty,min=1"`
	Content   *string `json:"content"`
	Category  *string `json:"category"`
	Published *bool   `json:"published"`
}

// Fields 转换为领域层的部分更新字段
func (in *UpdateNoteInput) Fields() domain.NoteFields {
	if in == nil {
		return domain.NoteFields{}
	}
	return domain.NoteFields{
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Published: in.Published,
	}
}

// NoteFilterInput Pagination parameters
// NoteFilterInput 分页查询参数
type NoteFilterInput struct {
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

// OutOfRange reports whether (page-1)*limit does not fit in an int
// Such a page lies past any stored row and is always empty
// OutOfRange 判断 (page-1)*limit 是否超出 int 范围，超出时该页必然为空
func (in *NoteFilterInput) OutOfRange() bool {
	return in.Limit > 0 && in.Page > 1 && in.Page-1 > math.MaxInt/in.Limit
}

// Offset 计算偏移量 (page-1)*limit，溢出时返回 math.MaxInt
func (in *NoteFilterInput) Offset() int {
	if in.OutOfRange() {
		return math.MaxInt
	}
	return (in.Page - 1) * in.Limit
}

// NoteFromDomain 将领域模型转换为 DTO
func NoteFromDomain(n *domain.Note) (*NoteDTO, error) {
	if n == nil {
		return nil, nil
	}
	out := &NoteDTO{}
	if err := copier.CopyWithOption(out, n, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.Wrapf(err, "copy note %s", n.ID)
	}
	return out, nil
}

// NotesFromDomain 批量转换
func NotesFromDomain(list []*domain.Note) ([]*NoteDTO, error) {
	out := make([]*NoteDTO, 0, len(list))
	for _, n := range list {
		d, err := NoteFromDomain(n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
