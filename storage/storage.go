package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"rest-planner/domain"
)

// Storage keeps tasks in memory in insertion order.
type Storage struct {
	mu    sync.RWMutex
	tasks []domain.Task
}

// New creates a Storage pre-populated with the given tasks.
func New(seed ...domain.Task) *Storage {
	tasks := make([]domain.Task, 0, len(seed)+16)
	tasks = append(tasks, seed...)
	return &Storage{tasks: tasks}
}

// Save appends the task. Uniqueness of the id is the caller's responsibility.
func (s *Storage) Save(_ context.Context, task domain.Task) error {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	return nil
}

// FindAll returns a snapshot of every stored task.
func (s *Storage) FindAll(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// FindByID reports false when no task has the given id.
func (s *Storage) FindByID(_ context.Context, id uuid.UUID) (domain.Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true, nil
		}
	}
	return domain.Task{}, false, nil
}

// FindByOwnerID returns the owner's tasks in insertion order. The result is
// never nil.
func (s *Storage) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Task{}
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}
