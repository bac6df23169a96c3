package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/storage"
)

type TaskService struct {
	storage TaskStorage
}

func NewTaskService(storage TaskStorage) *TaskService {
	return &TaskService{
		storage: storage,
	}
}

func (s *TaskService) Create(task *domain.Task) error {
	return s.storage.CreateTask(task)
}

func (s *TaskService) Update(id string, updates map[string]interface{}) (*domain.Task, error) {
	return s.storage.UpdateTask(id, updates)
}

func (s *TaskService) Get(id string) (*domain.Task, error) {
	return s.storage.GetTask(id)
}

func (s *TaskService) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	return s.storage.ListTasks(filter)
}

// UpdateStatus reports false without error when the task does not exist.
func (s *TaskService) UpdateStatus(id string, status domain.TaskStatus) (bool, error) {
	if !status.Valid() {
		return false, &domain.InvalidStatusError{Status: string(status)}
	}

	_, err := s.storage.UpdateTask(id, map[string]interface{}{
		"status":    status,
		"updatedAt": time.Now(),
	})
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update status of %s: %w", id, err)
	}
	return true, nil
}
