package domain

import "time"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

type ValidationResult struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	Passed      bool      `json:"passed"`
	Score       int       `json:"score"`
	Issues      []Issue   `json:"issues"`
	Suggestions []string  `json:"suggestions"`
	Timestamp   time.Time `json:"timestamp"`
}
