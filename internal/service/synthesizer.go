package service

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/specforge/internal/domain"
)

const (
	titlePrefixLength = 50
	defaultStoryHours = 8
)

type complexity int

const (
	complexityLow complexity = iota
	complexityMedium
	complexityHigh
)

var baseHours = map[complexity]float64{
	complexityLow:    4,
	complexityMedium: 8,
	complexityHigh:   16,
}

var priorityFactor = map[domain.Priority]float64{
	domain.PriorityLow:      0.8,
	domain.PriorityMedium:   1.0,
	domain.PriorityHigh:     1.2,
	domain.PriorityCritical: 1.5,
}

var taskTypeFor = map[domain.RequirementType]domain.TaskType{
	domain.RequirementFunctional:    domain.TaskDevelopment,
	domain.RequirementTechnical:     domain.TaskDevelopment,
	domain.RequirementNonFunctional: domain.TaskTesting,
	domain.RequirementBusiness:      domain.TaskDocumentation,
}

func complexityOf(description string) complexity {
	switch n := utf8.RuneCountInString(description); {
	case n > 100:
		return complexityHigh
	case n > 50:
		return complexityMedium
	default:
		return complexityLow
	}
}

// EstimateEffort returns whole hours from the description length bucket
// scaled by priority. Unknown priorities scale as medium.
func EstimateEffort(description string, priority domain.Priority) float64 {
	factor, ok := priorityFactor[priority]
	if !ok {
		factor = priorityFactor[domain.PriorityMedium]
	}
	return math.Round(baseHours[complexityOf(description)] * factor)
}

// TaskSynthesizer turns requirements and user stories into pending tasks.
type TaskSynthesizer struct {
	ids TaskIDSource
}

func NewTaskSynthesizer(ids TaskIDSource) *TaskSynthesizer {
	return &TaskSynthesizer{ids: ids}
}

// Synthesize emits one task per requirement followed by one per story. It
// only fails when the ID source does.
func (s *TaskSynthesizer) Synthesize(spec *domain.Specification) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(spec.Requirements)+len(spec.UserStories))

	for _, req := range spec.Requirements {
		id, err := s.ids.NextTaskID()
		if err != nil {
			return nil, fmt.Errorf("allocate task id: %w", err)
		}

		taskType, ok := taskTypeFor[req.Type]
		if !ok {
			taskType = domain.TaskDevelopment
		}

		task := domain.NewTask(id, requirementTitle(req.Description), req.Description, taskType, req.Priority)
		task.Requirements = []string{req.ID}
		if req.Effort != nil {
			task.EstimatedHours = *req.Effort
		} else {
			task.EstimatedHours = EstimateEffort(req.Description, req.Priority)
		}
		tasks = append(tasks, task)
	}

	for _, story := range spec.UserStories {
		id, err := s.ids.NextTaskID()
		if err != nil {
			return nil, fmt.Errorf("allocate task id: %w", err)
		}

		description := fmt.Sprintf("As %s %s, I want %s so that %s", storyArticle(story), story.Actor, story.Action, story.Benefit)
		task := domain.NewTask(id, "Story: "+story.Action, description, domain.TaskDevelopment, story.Priority)
		task.EstimatedHours = defaultStoryHours
		if story.Effort != nil {
			task.EstimatedHours = *story.Effort
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func requirementTitle(description string) string {
	runes := []rune(description)
	if len(runes) > titlePrefixLength {
		runes = runes[:titlePrefixLength]
	}
	return "Implement: " + string(runes) + "..."
}

// storyArticle keeps the article the story was written with. Stories loaded
// from YAML carry none, so it is picked from the actor's first letter.
func storyArticle(story domain.UserStory) string {
	if story.Article != "" {
		return story.Article
	}
	if story.Actor != "" && strings.ContainsRune("aeiouAEIOU", rune(story.Actor[0])) {
		return "an"
	}
	return "a"
}
