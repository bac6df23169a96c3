package storage

import (
	"fmt"
	"sync"

	"github.com/rcliao/specforge/internal/domain"
)

// MemoryStorage keeps every collection in insertion order for the life of
// the process. All reads hand out copies.
type MemoryStorage struct {
	mu          sync.RWMutex
	tasks       []*domain.Task
	taskIndex   map[string]int
	agents      []*domain.Agent
	assignments []*domain.Assignment
	taskSeq     int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:       make([]*domain.Task, 0),
		taskIndex:   make(map[string]int),
		agents:      make([]*domain.Agent, 0),
		assignments: make([]*domain.Assignment, 0),
	}
}

// Task Repository Implementation
func (ms *MemoryStorage) NextTaskID() (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.taskSeq++
	return TaskID(ms.taskSeq), nil
}

func (ms *MemoryStorage) CreateTask(task *domain.Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.taskIndex[task.ID]; exists {
		return fmt.Errorf("task with ID %s: %w", task.ID, ErrAlreadyExists)
	}

	ms.taskIndex[task.ID] = len(ms.tasks)
	ms.tasks = append(ms.tasks, task.Clone())
	return nil
}

func (ms *MemoryStorage) UpdateTask(id string, updates map[string]interface{}) (*domain.Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	i, exists := ms.taskIndex[id]
	if !exists {
		return nil, fmt.Errorf("task with ID %s: %w", id, ErrNotFound)
	}

	// Work on a copy so a rejected update leaves the stored task untouched.
	updated := ms.tasks[i].Clone()
	if err := applyTaskUpdates(updated, updates); err != nil {
		return nil, err
	}

	ms.tasks[i] = updated
	return updated.Clone(), nil
}

func (ms *MemoryStorage) GetTask(id string) (*domain.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	i, exists := ms.taskIndex[id]
	if !exists {
		return nil, fmt.Errorf("task with ID %s: %w", id, ErrNotFound)
	}

	return ms.tasks[i].Clone(), nil
}

func (ms *MemoryStorage) ListTasks(filter domain.TaskFilter) ([]*domain.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*domain.Task, 0, len(ms.tasks))
	for _, task := range ms.tasks {
		if filter.Matches(task) {
			result = append(result, task.Clone())
		}
	}

	return result, nil
}

// Agent Repository Implementation
func (ms *MemoryStorage) SeedAgents(agents []*domain.Agent) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	roster := make([]*domain.Agent, 0, len(agents))
	for _, a := range agents {
		roster = append(roster, a.Clone())
	}
	ms.agents = roster
	return nil
}

func (ms *MemoryStorage) ListAgents() ([]*domain.Agent, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*domain.Agent, 0, len(ms.agents))
	for _, a := range ms.agents {
		result = append(result, a.Clone())
	}
	return result, nil
}

// Assignment log
func (ms *MemoryStorage) AppendAssignment(a *domain.Assignment) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	c := *a
	ms.assignments = append(ms.assignments, &c)
	return nil
}

func (ms *MemoryStorage) ListAssignments() ([]*domain.Assignment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*domain.Assignment, 0, len(ms.assignments))
	for _, a := range ms.assignments {
		c := *a
		result = append(result, &c)
	}
	return result, nil
}

func (ms *MemoryStorage) Close() error {
	return nil
}
