// Package storage holds the task, agent and assignment collections behind
// the engine. MemoryStorage lives for the process; SQLiteStorage persists
// the same collections to a database file.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/specforge/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store is implemented by every backend.
type Store interface {
	NextTaskID() (string, error)
	CreateTask(task *domain.Task) error
	UpdateTask(id string, updates map[string]interface{}) (*domain.Task, error)
	GetTask(id string) (*domain.Task, error)
	ListTasks(filter domain.TaskFilter) ([]*domain.Task, error)

	SeedAgents(agents []*domain.Agent) error
	ListAgents() ([]*domain.Agent, error)

	AppendAssignment(a *domain.Assignment) error
	ListAssignments() ([]*domain.Assignment, error)

	Close() error
}

func TaskID(n int) string { return fmt.Sprintf("task-%d", n) }

// applyTaskUpdates mutates task in place. Recognised keys are title,
// description, status, assignedAgent and updatedAt.
func applyTaskUpdates(task *domain.Task, updates map[string]interface{}) error {
	for key, value := range updates {
		switch key {
		case "title":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("update %q: expected string, got %T", key, value)
			}
			task.Title = v
		case "description":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("update %q: expected string, got %T", key, value)
			}
			task.Description = v
		case "status":
			var status domain.TaskStatus
			switch v := value.(type) {
			case domain.TaskStatus:
				status = v
			case string:
				status = domain.TaskStatus(v)
			default:
				return fmt.Errorf("update %q: expected status, got %T", key, value)
			}
			if !status.Valid() {
				return &domain.InvalidStatusError{Status: string(status)}
			}
			task.Status = status
		case "assignedAgent":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("update %q: expected string, got %T", key, value)
			}
			task.AssignedAgent = v
		case "updatedAt":
			v, ok := value.(time.Time)
			if !ok {
				return fmt.Errorf("update %q: expected time, got %T", key, value)
			}
			task.UpdatedAt = v
		default:
			return fmt.Errorf("update %q: unknown field", key)
		}
	}
	if _, ok := updates["updatedAt"]; !ok {
		task.UpdatedAt = time.Now()
	}
	return nil
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Open returns the backend named by driver. path is the database file for
// sqlite and the snapshot directory for file.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStorage(), nil
	case DriverSQLite:
		if path == "" {
			return nil, errors.New("storage: sqlite driver needs a database path")
		}
		return NewSQLiteStorage(path)
	case DriverFile:
		if path == "" {
			return nil, errors.New("storage: file driver needs a directory")
		}
		return NewFileStorage(path)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
