// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoteNotFound 笔记不存在
	ErrNoteNotFound = errors.New("note not found")
	// ErrUniqueViolation 违反唯一约束（标题重复）
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// Note 笔记领域模型
type Note struct {
	ID        string
	Title     string
	Content   string
	Category  *string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCategory 判断笔记是否设置了分类
func (n *Note) HasCategory() bool {
	return n.Category != nil
}

// NoteFields 笔记部分更新字段
// nil 表示未提供，不做修改
type NoteFields struct {
	Title     *string
	Content   *string
	Category  *string
	Published *bool
}

// IsEmpty 判断是否没有任何需要修改的字段
func (f NoteFields) IsEmpty() bool {
	return f.Title == nil && f.Content == nil && f.Category == nil && f.Published == nil
}

// Apply 将字段应用到笔记上
func (f NoteFields) Apply(n *Note) {
	if f.Title != nil {
		n.Title = *f.Title
	}
	if f.Content != nil {
		n.Content = *f.Content
	}
	if f.Category != nil {
		c := *f.Category
		n.Category = &c
	}
	if f.Published != nil {
		n.Published = *f.Published
	}
}
