package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/haierkeys/note-rpc-service/internal/domain"
)

// memoryNoteRepo 内存实现的笔记仓储，语义与 dao 保持一致
type memoryNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*domain.Note
}

func newMemoryNoteRepo() *memoryNoteRepo {
	return &memoryNoteRepo{notes: make(map[string]*domain.Note)}
}

func clone(n *domain.Note) *domain.Note {
	c := *n
	if n.Category != nil {
		v := *n.Category
		c.Category = &v
	}
	return &c
}

func (r *memoryNoteRepo) titleTaken(title, except string) bool {
	for id, n := range r.notes {
		if n.Title == title && id != except {
			return true
		}
	}
	return false
}

func (r *memoryNoteRepo) TitleExists(ctx context.Context, title string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.titleTaken(title, ""), nil
}

func (r *memoryNoteRepo) TitleExistsExcept(ctx context.Context, title, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.titleTaken(title, id), nil
}

func (r *memoryNoteRepo) Create(ctx context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.titleTaken(note.Title, "") {
		return domain.ErrUniqueViolation
	}
	r.notes[note.ID] = clone(note)
	return nil
}

func (r *memoryNoteRepo) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	return clone(n), nil
}

func (r *memoryNoteRepo) List(ctx context.Context, limit, offset int) ([]*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Note, 0, len(r.notes))
	for _, n := range r.notes {
		all = append(all, clone(n))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return []*domain.Note{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryNoteRepo) UpdateFields(ctx context.Context, id string, fields domain.NoteFields, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return domain.ErrNoteNotFound
	}
	if fields.Title != nil && r.titleTaken(*fields.Title, id) {
		return domain.ErrUniqueViolation
	}
	fields.Apply(n)
	n.UpdatedAt = updatedAt
	return nil
}

func (r *memoryNoteRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *memoryNoteRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.notes)), nil
}
