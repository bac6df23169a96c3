package mcp

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/logger"
	"github.com/rcliao/specforge/internal/search"
	"github.com/rcliao/specforge/internal/service"
)

// MCPServer dispatches "specforge.*" commands to the engine. The REPL and
// the stdio tools both go through it.
type MCPServer struct {
	engine   *service.SpecEngine
	defaults service.ParseOptions
	log      *slog.Logger
}

func NewMCPServer(engine *service.SpecEngine, defaults service.ParseOptions) *MCPServer {
	return &MCPServer{
		engine:   engine,
		defaults: defaults,
		log:      logger.ForComponent("mcp"),
	}
}

func (s *MCPServer) HandleCommand(method string, params json.RawMessage) (interface{}, error) {
	s.log.Debug("handling command", "method", method)

	switch method {
	// Specification commands
	case "specforge.spec.parse":
		return s.handleSpecParse(params)

	// Task commands
	case "specforge.task.list":
		return s.handleTaskList(params)
	case "specforge.task.get":
		return s.handleTaskGet(params)
	case "specforge.task.status":
		return s.handleTaskStatus(params)
	case "specforge.task.validate":
		return s.handleTaskValidate(params)
	case "specforge.task.search":
		return s.handleTaskSearch(params)

	// Registry and log
	case "specforge.summary":
		return s.engine.Summary()
	case "specforge.agent.list":
		return s.engine.GetAgents()
	case "specforge.assignment.list":
		return s.engine.GetAssignments()

	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, target interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// Specification handlers
type ParseSpecParams struct {
	Content string                `json:"content"`
	Format  string                `json:"format"`
	Options *service.ParseOptions `json:"options,omitempty"`
}

func (s *MCPServer) handleSpecParse(params json.RawMessage) (interface{}, error) {
	var p ParseSpecParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return s.ParseSpec(p)
}

// ParseSpec applies the server defaults when no options are given.
func (s *MCPServer) ParseSpec(p ParseSpecParams) (*service.ParseResult, error) {
	opts := s.defaults
	if p.Options != nil {
		opts = *p.Options
	}
	format := p.Format
	if format == "" {
		format = string(domain.FormatMarkdown)
	}

	return s.engine.ParseSpecification(service.ParseRequest{
		Content: p.Content,
		Format:  domain.Format(format),
		Options: opts,
	})
}

// Task handlers
type ListTasksParams struct {
	Status        string `json:"status,omitempty"`
	AssignedAgent string `json:"assignedAgent,omitempty"`
	Type          string `json:"type,omitempty"`
}

func (p ListTasksParams) Filter() (domain.TaskFilter, error) {
	var filter domain.TaskFilter
	if p.Status != "" {
		status, err := domain.ParseTaskStatus(p.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if p.AssignedAgent != "" {
		agent := p.AssignedAgent
		filter.AssignedAgent = &agent
	}
	if p.Type != "" {
		taskType := domain.TaskType(p.Type)
		filter.Type = &taskType
	}
	return filter, nil
}

func (s *MCPServer) handleTaskList(params json.RawMessage) (interface{}, error) {
	var p ListTasksParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	filter, err := p.Filter()
	if err != nil {
		return nil, err
	}
	return s.engine.ListTasks(filter)
}

type TaskIDParams struct {
	ID string `json:"id"`
}

func (s *MCPServer) handleTaskGet(params json.RawMessage) (interface{}, error) {
	var p TaskIDParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return s.engine.GetTask(p.ID)
}

type UpdateStatusParams struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *MCPServer) handleTaskStatus(params json.RawMessage) (interface{}, error) {
	var p UpdateStatusParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	updated, err := s.engine.UpdateTaskStatus(p.ID, domain.TaskStatus(p.Status))
	if err != nil {
		return nil, err
	}
	return map[string]bool{"updated": updated}, nil
}

func (s *MCPServer) handleTaskValidate(params json.RawMessage) (interface{}, error) {
	var p TaskIDParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	return s.engine.ValidateTask(p.ID)
}

type SearchTasksParams struct {
	ListTasksParams
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func (s *MCPServer) handleTaskSearch(params json.RawMessage) (interface{}, error) {
	var p SearchTasksParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	filter, err := p.Filter()
	if err != nil {
		return nil, err
	}
	return s.engine.SearchTasks(p.Query, search.Options{Filter: filter, Limit: p.Limit, Offset: p.Offset})
}
