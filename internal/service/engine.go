package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/logger"
	"github.com/rcliao/specforge/internal/parser"
	"github.com/rcliao/specforge/internal/search"
)

type ParseOptions struct {
	GenerateTasks bool `json:"generateTasks" yaml:"generate_tasks"`
	AutoAssign    bool `json:"autoAssign" yaml:"auto_assign"`
	Validate      bool `json:"validate" yaml:"validate"`
}

type ParseRequest struct {
	Content string        `json:"content"`
	Format  domain.Format `json:"format"`
	Options ParseOptions  `json:"options"`
}

type ParseResult struct {
	Spec        *domain.Specification      `json:"spec"`
	Tasks       []*domain.Task             `json:"tasks"`
	Assignments []*domain.Assignment       `json:"assignments"`
	Validation  []*domain.ValidationResult `json:"validation,omitempty"`
}

// SpecEngine runs parse, synthesize, assign and validate over one store.
// Mutating calls are serialized so concurrent tool calls cannot interleave
// their appends.
type SpecEngine struct {
	mu sync.Mutex

	tasks       *TaskService
	agents      *AgentService
	assignments AssignmentStorage
	synthesizer *TaskSynthesizer
	assigner    *AssignmentEngine
	validator   *TaskValidator
	searcher    *search.HybridSearch
	log         *slog.Logger
}

// NewSpecEngine seeds store with roster (the default agents when nil).
func NewSpecEngine(store Storage, roster []*domain.Agent) (*SpecEngine, error) {
	agents, err := NewAgentService(store, roster)
	if err != nil {
		return nil, err
	}
	return &SpecEngine{
		tasks:       NewTaskService(store),
		agents:      agents,
		assignments: store,
		synthesizer: NewTaskSynthesizer(store),
		assigner:    NewAssignmentEngine(agents, store, store),
		validator:   NewTaskValidator(),
		searcher:    search.NewHybridSearch(store),
		log:         logger.ForComponent("engine"),
	}, nil
}

func (e *SpecEngine) ParseSpecification(req ParseRequest) (*ParseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	spec, err := parser.Parse(req.Content, req.Format)
	if err != nil {
		return nil, err
	}
	e.log.Info("specification parsed",
		"title", spec.Title,
		"format", req.Format,
		"sections", len(spec.Sections),
		"requirements", len(spec.Requirements),
		"stories", len(spec.UserStories),
		"useCases", len(spec.UseCases))

	result := &ParseResult{
		Spec:        spec,
		Tasks:       make([]*domain.Task, 0),
		Assignments: make([]*domain.Assignment, 0),
	}
	if !req.Options.GenerateTasks {
		return result, nil
	}

	tasks, err := e.synthesizer.Synthesize(spec)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if err := e.tasks.Create(task); err != nil {
			return nil, fmt.Errorf("store task %s: %w", task.ID, err)
		}
	}
	result.Tasks = tasks

	if req.Options.AutoAssign {
		assignments, err := e.assigner.Assign(tasks)
		if err != nil {
			return nil, err
		}
		result.Assignments = assignments
	}

	if req.Options.Validate && len(tasks) > 0 {
		result.Validation = make([]*domain.ValidationResult, 0, len(tasks))
		for _, task := range tasks {
			result.Validation = append(result.Validation, e.validator.Validate(task))
		}
	}

	e.log.Info("tasks generated", "tasks", len(result.Tasks), "assignments", len(result.Assignments))
	return result, nil
}

// UpdateTaskStatus returns false when no task has the given ID.
func (e *SpecEngine) UpdateTaskStatus(id string, status domain.TaskStatus) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tasks.UpdateStatus(id, status)
}

func (e *SpecEngine) GetTasks() ([]*domain.Task, error) {
	return e.tasks.List(domain.TaskFilter{})
}

func (e *SpecEngine) ListTasks(filter domain.TaskFilter) ([]*domain.Task, error) {
	return e.tasks.List(filter)
}

func (e *SpecEngine) GetTask(id string) (*domain.Task, error) {
	return e.tasks.Get(id)
}

// SearchTasks ranks stored tasks against query.
func (e *SpecEngine) SearchTasks(query string, opts search.Options) ([]*search.Result, error) {
	return e.searcher.Search(query, opts)
}

// Summary rolls up every stored task against the current roster.
func (e *SpecEngine) Summary() (*WorkSummary, error) {
	tasks, err := e.tasks.List(domain.TaskFilter{})
	if err != nil {
		return nil, err
	}
	agents, err := e.agents.List()
	if err != nil {
		return nil, err
	}
	return Summarize(tasks, agents, time.Now()), nil
}

func (e *SpecEngine) GetAgents() ([]*domain.Agent, error) {
	return e.agents.List()
}

func (e *SpecEngine) GetAssignments() ([]*domain.Assignment, error) {
	return e.assignments.ListAssignments()
}

// ValidateTask re-runs validation against a stored task.
func (e *SpecEngine) ValidateTask(id string) (*domain.ValidationResult, error) {
	task, err := e.tasks.Get(id)
	if err != nil {
		return nil, err
	}
	return e.validator.Validate(task), nil
}
