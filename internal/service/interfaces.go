package service

import (
	"github.com/rcliao/specforge/internal/domain"
)

// TaskStorage interface for task persistence
type TaskStorage interface {
	NextTaskID() (string, error)
	CreateTask(task *domain.Task) error
	UpdateTask(id string, updates map[string]interface{}) (*domain.Task, error)
	GetTask(id string) (*domain.Task, error)
	ListTasks(filter domain.TaskFilter) ([]*domain.Task, error)
}

// AgentStorage holds the worker roster in registry order.
type AgentStorage interface {
	SeedAgents(agents []*domain.Agent) error
	ListAgents() ([]*domain.Agent, error)
}

// AssignmentStorage is the append-only assignment log.
type AssignmentStorage interface {
	AppendAssignment(a *domain.Assignment) error
	ListAssignments() ([]*domain.Assignment, error)
}

type Storage interface {
	TaskStorage
	AgentStorage
	AssignmentStorage
}

// TaskIDSource hands out monotonic task IDs.
type TaskIDSource interface {
	NextTaskID() (string, error)
}
