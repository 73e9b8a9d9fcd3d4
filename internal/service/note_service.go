package service

import (
	"context"

	"github.com/haierkeys/note-rpc-service/internal/domain"
	"github.com/haierkeys/note-rpc-service/internal/dto"
	"github.com/haierkeys/note-rpc-service/pkg/code"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 创建笔记，标题已存在时返回 CONFLICT
	Create(ctx context.Context, params *dto.CreateNoteInput) (*dto.NoteDTO, error)

	// Get 获取单条笔记
	Get(ctx context.Context, id string) (*dto.NoteDTO, error)

	// List 按创建时间倒序分页获取笔记
	List(ctx context.Context, params *dto.NoteFilterInput) ([]*dto.NoteDTO, error)

	// Update 部分更新笔记
	Update(ctx context.Context, id string, params *dto.UpdateNoteInput) (*dto.NoteDTO, error)

	// Delete 删除笔记
	Delete(ctx context.Context, id string) error

	// Count 笔记总数
	Count(ctx context.Context) (int64, error)
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	clock    *monotonicClock
	newID    func() string
}

// NewNoteService 创建 NoteService 实例，now 为 nil 时使用系统时间
func NewNoteService(noteRepo domain.NoteRepository, now Clock) NoteService {
	return &noteService{
		noteRepo: noteRepo,
		clock:    newMonotonicClock(now),
		newID:    uuid.NewString,
	}
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, params *dto.CreateNoteInput) (*dto.NoteDTO, error) {
	exists, err := s.noteRepo.TitleExists(ctx, params.Title)
	if err != nil {
		return nil, errors.Wrap(err, "create note")
	}
	if exists {
		return nil, code.ErrorNoteTitleExists
	}

	now := s.clock.Now()
	note := &domain.Note{
		ID:        s.newID(),
		Title:     params.Title,
		Content:   params.Content,
		Category:  params.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if params.Published != nil {
		note.Published = *params.Published
	}

	// 预检查与插入之间可能被并发创建抢先，由唯一约束兜底
	if err := s.noteRepo.Create(ctx, note); err != nil {
		if errors.Is(err, domain.ErrUniqueViolation) {
			return nil, code.ErrorNoteTitleExists
		}
		return nil, errors.Wrap(err, "create note")
	}

	return dto.NoteFromDomain(note)
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, id string) (*dto.NoteDTO, error) {
	note, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NoteFromDomain(note)
}

func (s *noteService) get(ctx context.Context, id string) (*domain.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, errors.Wrap(err, "get note")
	}
	return note, nil
}

// List 获取笔记列表
func (s *noteService) List(ctx context.Context, params *dto.NoteFilterInput) ([]*dto.NoteDTO, error) {
	if params.OutOfRange() {
		return []*dto.NoteDTO{}, nil
	}
	notes, err := s.noteRepo.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, errors.Wrap(err, "list notes")
	}
	return dto.NotesFromDomain(notes)
}

// Update 更新笔记
// 只修改提供的字段；标题变更时需在其他笔记中唯一；updatedAt 总是刷新
func (s *noteService) Update(ctx context.Context, id string, params *dto.UpdateNoteInput) (*dto.NoteDTO, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := params.Fields()
	if fields.Title != nil && *fields.Title != current.Title {
		exists, err := s.noteRepo.TitleExistsExcept(ctx, *fields.Title, id)
		if err != nil {
			return nil, errors.Wrap(err, "update note")
		}
		if exists {
			return nil, code.ErrorNoteTitleExists
		}
	}

	if err := s.noteRepo.UpdateFields(ctx, id, fields, s.clock.Now()); err != nil {
		switch {
		case errors.Is(err, domain.ErrUniqueViolation):
			return nil, code.ErrorNoteTitleExists
		case errors.Is(err, domain.ErrNoteNotFound):
			return nil, code.ErrorNoteNotFound
		}
		return nil, errors.Wrap(err, "update note")
	}

	return s.Get(ctx, id)
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return code.ErrorNoteNotFound
		}
		return errors.Wrap(err, "delete note")
	}
	return nil
}

// Count 笔记总数
func (s *noteService) Count(ctx context.Context) (int64, error) {
	n, err := s.noteRepo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count notes")
	}
	return n, nil
}
