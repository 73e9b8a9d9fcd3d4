// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// TitleExists 判断标题是否已被使用
	TitleExists(ctx context.Context, title string) (bool, error)

	// TitleExistsExcept 判断标题是否已被除 id 以外的笔记使用
	TitleExistsExcept(ctx context.Context, title, id string) (bool, error)

	// Create 创建笔记，标题冲突时返回 ErrUniqueViolation
	Create(ctx context.Context, note *Note) error

	// GetByID 根据ID获取笔记，不存在时返回 ErrNoteNotFound
	GetByID(ctx context.Context, id string) (*Note, error)

	// List 按创建时间倒序分页获取笔记
	List(ctx context.Context, limit, offset int) ([]*Note, error)

	// UpdateFields 只更新提供的字段与 updatedAt
	UpdateFields(ctx context.Context, id string, fields NoteFields, updatedAt time.Time) error

	// Delete 物理删除笔记
	Delete(ctx context.Context, id string) error

	// Count 获取笔记总数
	Count(ctx context.Context) (int64, error)
}
