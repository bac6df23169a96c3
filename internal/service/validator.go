package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rcliao/specforge/internal/domain"
)

const (
	minTitleLength       = 5
	minDescriptionLength = 10
	minEstimatedHours    = 1
)

type validationRule struct {
	category   string
	severity   domain.Severity
	penalty    int
	message    string
	suggestion string
	failed     func(*domain.Task) bool
}

var validationRules = []validationRule{
	{
		category:   "title",
		severity:   domain.SeverityError,
		penalty:    20,
		message:    "Task title is missing or shorter than 5 characters",
		suggestion: "Give the task a descriptive title of at least 5 characters",
		failed: func(t *domain.Task) bool {
			return utf8.RuneCountInString(strings.TrimSpace(t.Title)) < minTitleLength
		},
	},
	{
		category:   "description",
		severity:   domain.SeverityWarning,
		penalty:    10,
		message:    "Task description is missing or shorter than 10 characters",
		suggestion: "Describe the expected outcome in at least 10 characters",
		failed: func(t *domain.Task) bool {
			return utf8.RuneCountInString(strings.TrimSpace(t.Description)) < minDescriptionLength
		},
	},
	{
		category:   "estimate",
		severity:   domain.SeverityWarning,
		penalty:    5,
		message:    "Estimated hours are missing or below one hour",
		suggestion: "Provide an effort estimate of at least one hour",
		failed: func(t *domain.Task) bool {
			return t.EstimatedHours < minEstimatedHours
		},
	},
}

type TaskValidator struct {
	now func() time.Time
}

func NewTaskValidator() *TaskValidator {
	return &TaskValidator{now: time.Now}
}

// Validate scores a task out of 100. It never fails; passed is false only
// when an error-severity issue fired.
func (v *TaskValidator) Validate(task *domain.Task) *domain.ValidationResult {
	result := &domain.ValidationResult{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		Passed:      true,
		Score:       100,
		Issues:      make([]domain.Issue, 0),
		Suggestions: make([]string, 0),
		Timestamp:   v.now(),
	}

	for _, rule := range validationRules {
		if !rule.failed(task) {
			continue
		}
		result.Score -= rule.penalty
		result.Issues = append(result.Issues, domain.Issue{
			Severity: rule.severity,
			Category: rule.category,
			Message:  rule.message,
		})
		result.Suggestions = append(result.Suggestions, rule.suggestion)
		if rule.severity == domain.SeverityError {
			result.Passed = false
		}
	}

	if result.Score < 0 {
		result.Score = 0
	}
	return result
}
