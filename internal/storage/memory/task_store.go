package memory

import (
	"context"
	"slices"
	"sync"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
)

// DefaultMaxTasks bounds a TaskStore created without WithMaxTasks.
const DefaultMaxTasks = 1000

// TaskStore is an in-memory implementation of storage.TaskStore. It holds at
// most maxTasks tasks; saving a new task into a full store evicts the oldest
// finished task, or the oldest task when none has finished.
type TaskStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.Task
	order    []string // insertion order of keys in tasks
	maxTasks int
	served   int
}

// TaskStoreOption configures a TaskStore.
type TaskStoreOption func(*TaskStore)

// WithMaxTasks caps retained tasks. Values below 1 keep the default.
func WithMaxTasks(n int) TaskStoreOption {
	return func(s *TaskStore) {
		if n > 0 {
			s.maxTasks = n
		}
	}
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore(opts ...TaskStoreOption) *TaskStore {
	s := &TaskStore{
		tasks:    make(map[string]*domain.Task),
		maxTasks: DefaultMaxTasks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts or replaces a task by ID.
func (s *TaskStore) Save(_ context.Context, t *domain.Task) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; !exists {
		if len(s.tasks) >= s.maxTasks {
			s.evictLocked()
		}
		s.order = append(s.order, t.ID)
		s.served++
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

func (s *TaskStore) evictLocked() {
	victim := 0
	for i, id := range s.order {
		if s.tasks[id].Status.State.Terminal() {
			victim = i
			break
		}
	}
	delete(s.tasks, s.order[victim])
	s.order = slices.Delete(s.order, victim, victim+1)
}

// Get retrieves a task by ID. Returns ErrNotFound if not exists.
func (s *TaskStore) Get(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tasks[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return t.Clone(), nil
}

// Count returns the number of distinct tasks saved, evicted ones included.
func (s *TaskStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.served, nil
}

// Len returns the number of tasks currently retained.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tasks)
}

var _ storage.TaskStore = (*TaskStore)(nil)
