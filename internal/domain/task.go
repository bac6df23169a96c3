package domain

import (
	"time"
)

type TaskStatus string

const (
	StatusPending       TaskStatus = "pending"
	StatusAssigned      TaskStatus = "assigned"
	StatusInProgress    TaskStatus = "in-progress"
	StatusNeedsRevision TaskStatus = "needs-revision"
	StatusCompleted     TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusNeedsRevision, StatusCompleted:
		return true
	}
	return false
}

// ParseTaskStatus converts a wire value into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", &InvalidStatusError{Status: s}
	}
	return status, nil
}

type TaskType string

const (
	TaskDevelopment   TaskType = "development"
	TaskTesting       TaskType = "testing"
	TaskDocumentation TaskType = "documentation"
	TaskDesign        TaskType = "design"
	TaskReview        TaskType = "review"
)

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Type           TaskType   `json:"type"`
	Priority       Priority   `json:"priority"`
	Status         TaskStatus `json:"status"`
	Requirements   []string   `json:"requirements"`
	EstimatedHours float64    `json:"estimatedHours"`
	AssignedAgent  string     `json:"assignedAgent,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func NewTask(id, title, description string, taskType TaskType, priority Priority) *Task {
	now := time.Now()
	return &Task{
		ID:           id,
		Title:        title,
		Description:  description,
		Type:         taskType,
		Priority:     priority,
		Status:       StatusPending,
		Requirements: make([]string, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy safe to hand out of a store.
func (t *Task) Clone() *Task {
	c := *t
	c.Requirements = append(make([]string, 0, len(t.Requirements)), t.Requirements...)
	return &c
}

type TaskFilter struct {
	Status        *TaskStatus
	AssignedAgent *string
	Type          *TaskType
}

func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.AssignedAgent != nil && t.AssignedAgent != *f.AssignedAgent {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	return true
}
