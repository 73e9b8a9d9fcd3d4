package dao

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/domain"
	"github.com/haierkeys/note-rpc-service/internal/model"
	"github.com/haierkeys/note-rpc-service/pkg/convert"
	"github.com/haierkeys/note-rpc-service/pkg/timex"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(db *gorm.DB) domain.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) notes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Note{})
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	note := &domain.Note{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Published: convert.Int2Bool(m.Published),
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
	if m.Category != nil {
		c := *m.Category
		note.Category = &c
	}
	return note
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	return &model.Note{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Category:  n.Category,
		Published: convert.Bool2Int(n.Published),
		CreatedAt: timex.Time(n.CreatedAt),
		UpdatedAt: timex.Time(n.UpdatedAt),
	}
}

// TitleExists 判断标题是否已被使用
func (r *noteRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.notes(ctx).Where(clause.Eq{Column: "title", Value: title}).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count notes by title")
	}
	return count > 0, nil
}

// TitleExistsExcept 判断标题是否已被其他笔记使用
func (r *noteRepository) TitleExistsExcept(ctx context.Context, title, id string) (bool, error) {
	var count int64
	err := r.notes(ctx).
		Where(clause.Eq{Column: "title", Value: title}).
		Where(clause.Neq{Column: "id", Value: id}).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count notes by title")
	}
	return count > 0, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	m := r.toModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return classifyError(err, "insert note")
	}
	return nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var m model.Note
	err := r.notes(ctx).Where(clause.Eq{Column: "id", Value: id}).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select note")
	}
	return r.toDomain(&m), nil
}

// List 按创建时间倒序分页获取笔记，创建时间相同时按 id 倒序
func (r *noteRepository) List(ctx context.Context, limit, offset int) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.notes(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "createdAt"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Limit(limit).
		Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, errors.Wrap(err, "select notes")
	}

	list := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// UpdateFields 只更新提供的字段，updatedAt 总是刷新
func (r *noteRepository) UpdateFields(ctx context.Context, id string, fields domain.NoteFields, updatedAt time.Time) error {
	values := map[string]any{
		"updatedAt": timex.Time(updatedAt),
	}
	if fields.Title != nil {
		values["title"] = *fields.Title
	}
	if fields.Content != nil {
		values["content"] = *fields.Content
	}
	if fields.Category != nil {
		values["category"] = *fields.Category
	}
	if fields.Published != nil {
		values["published"] = convert.Bool2Int(*fields.Published)
	}

	result := r.notes(ctx).Where(clause.Eq{Column: "id", Value: id}).Updates(values)
	if result.Error != nil {
		return classifyError(result.Error, "update note")
	}
	if result.RowsAffected == 0 {
		// mysql reports zero affected rows when nothing changed
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete 物理删除笔记
func (r *noteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where(clause.Eq{Column: "id", Value: id}).Delete(&model.Note{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete note")
	}
	if result.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// Count 获取笔记总数
func (r *noteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.notes(ctx).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count notes")
	}
	return count, nil
}

// classifyError 将数据库唯一约束错误转换为 domain.ErrUniqueViolation，其余错误只做包装
func classifyError(err error, op string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return errors.Wrap(domain.ErrUniqueViolation, op+": "+err.Error())
	}
	return errors.Wrap(err, op)
}

// 各驱动的唯一约束错误文本：sqlite、mysql 1062、postgres 23505
var uniqueViolationMarkers = []string{
	"UNIQUE constraint failed",
	"Error 1062",
	"Duplicate entry",
	"SQLSTATE 23505",
	"duplicate key value violates unique constraint",
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
