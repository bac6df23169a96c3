package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/search"
	"github.com/rcliao/specforge/internal/service"
	"github.com/rcliao/specforge/internal/storage"
)

const (
	outputMarkdown = "markdown"
	outputJSON     = "json"
)

func withOutput() mcpgo.ToolOption {
	return mcpgo.WithString("output",
		mcpgo.Description("Response format. Markdown is meant for reading, json for further processing."),
		mcpgo.Enum(outputMarkdown, outputJSON),
	)
}

func boolArg(req mcpgo.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// render returns JSON when asked, else the markdown produced by md.
func render(req mcpgo.CallToolRequest, v interface{}, md func() string) (*mcpgo.CallToolResult, error) {
	if req.GetString("output", outputMarkdown) == outputJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding result: %w", err)
		}
		return mcpgo.NewToolResultText(string(data)), nil
	}
	return mcpgo.NewToolResultText(md()), nil
}

// toolError turns caller mistakes into tool errors the model can read.
// Anything else is returned as a protocol error.
func toolError(err error) (*mcpgo.CallToolResult, error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrMalformedInput),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, storage.ErrNotFound):
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// ParseSpecTool handles the spec_parse MCP tool.
type ParseSpecTool struct {
	server *MCPServer
}

func NewParseSpecTool(server *MCPServer) *ParseSpecTool {
	return &ParseSpecTool{server: server}
}

func (t *ParseSpecTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("spec_parse",
		mcpgo.WithDescription(
			"Parse a project specification into requirements, user stories and use cases. "+
				"Optionally synthesize tasks, assign them to agents and validate them.",
		),
		mcpgo.WithString("content",
			mcpgo.Required(),
			mcpgo.Description("Raw specification text. May be empty."),
		),
		mcpgo.WithString("format",
			mcpgo.Description("Input format. Defaults to markdown."),
			mcpgo.Enum(string(domain.FormatMarkdown), string(domain.FormatYAML), string(domain.FormatPlain)),
		),
		mcpgo.WithBoolean("generate_tasks",
			mcpgo.Description("Create one task per requirement and user story."),
		),
		mcpgo.WithBoolean("auto_assign",
			mcpgo.Description("Assign generated tasks to the best available agent."),
		),
		mcpgo.WithBoolean("validate",
			mcpgo.Description("Score each generated task for completeness."),
		),
		withOutput(),
	)
}

func (t *ParseSpecTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	// Empty content is a valid, if untitled, specification.
	content, ok := req.GetArguments()["content"].(string)
	if !ok {
		return mcpgo.NewToolResultError("content is required"), nil
	}

	defaults := t.server.defaults
	opts := service.ParseOptions{
		GenerateTasks: boolArg(req, "generate_tasks", defaults.GenerateTasks),
		AutoAssign:    boolArg(req, "auto_assign", defaults.AutoAssign),
		Validate:      boolArg(req, "validate", defaults.Validate),
	}

	result, err := t.server.ParseSpec(ParseSpecParams{
		Content: content,
		Format:  req.GetString("format", string(domain.FormatMarkdown)),
		Options: &opts,
	})
	if err != nil {
		return toolError(err)
	}

	return render(req, result, func() string { return FormatParseResultAsMarkdown(result) })
}

// ListTasksTool handles the task_list MCP tool.
type ListTasksTool struct {
	server *MCPServer
}

func NewListTasksTool(server *MCPServer) *ListTasksTool {
	return &ListTasksTool{server: server}
}

func (t *ListTasksTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("task_list",
		mcpgo.WithDescription("List generated tasks, optionally filtered by status, agent or type."),
		mcpgo.WithString("status",
			mcpgo.Description("Only tasks in this status."),
			mcpgo.Enum(
				string(domain.StatusPending), string(domain.StatusAssigned), string(domain.StatusInProgress),
				string(domain.StatusNeedsRevision), string(domain.StatusCompleted),
			),
		),
		mcpgo.WithString("assigned_agent", mcpgo.Description("Only tasks assigned to this agent ID.")),
		mcpgo.WithString("type", mcpgo.Description("Only tasks of this type.")),
		withOutput(),
	)
}

func (t *ListTasksTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	filter, err := ListTasksParams{
		Status:        req.GetString("status", ""),
		AssignedAgent: req.GetString("assigned_agent", ""),
		Type:          req.GetString("type", ""),
	}.Filter()
	if err != nil {
		return toolError(err)
	}

	tasks, err := t.server.engine.ListTasks(filter)
	if err != nil {
		return toolError(err)
	}

	return render(req, tasks, func() string { return FormatTasksAsMarkdown(tasks) })
}

// UpdateTaskStatusTool handles the task_update_status MCP tool.
type UpdateTaskStatusTool struct {
	server *MCPServer
}

func NewUpdateTaskStatusTool(server *MCPServer) *UpdateTaskStatusTool {
	return &UpdateTaskStatusTool{server: server}
}

func (t *UpdateTaskStatusTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("task_update_status",
		mcpgo.WithDescription("Move a task to a new status. Completed tasks stop counting towards agent workload."),
		mcpgo.WithString("id", mcpgo.Required(), mcpgo.Description("Task ID, e.g. task-3.")),
		mcpgo.WithString("status",
			mcpgo.Required(),
			mcpgo.Description("New status."),
			mcpgo.Enum(
				string(domain.StatusPending), string(domain.StatusAssigned), string(domain.StatusInProgress),
				string(domain.StatusNeedsRevision), string(domain.StatusCompleted),
			),
		),
	)
}

func (t *UpdateTaskStatusTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id := req.GetString("id", "")
	status := req.GetString("status", "")

	updated, err := t.server.engine.UpdateTaskStatus(id, domain.TaskStatus(status))
	if err != nil {
		return toolError(err)
	}
	if !updated {
		return mcpgo.NewToolResultError(fmt.Sprintf("Task %q not found", id)), nil
	}

	return mcpgo.NewToolResultText(fmt.Sprintf("✅ Task `%s` is now **%s**", id, status)), nil
}

// ValidateTaskTool handles the task_validate MCP tool.
type ValidateTaskTool struct {
	server *MCPServer
}

func NewValidateTaskTool(server *MCPServer) *ValidateTaskTool {
	return &ValidateTaskTool{server: server}
}

func (t *ValidateTaskTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("task_validate",
		mcpgo.WithDescription("Score a stored task for title, description and estimate completeness."),
		mcpgo.WithString("id", mcpgo.Required(), mcpgo.Description("Task ID, e.g. task-3.")),
		withOutput(),
	)
}

func (t *ValidateTaskTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	result, err := t.server.engine.ValidateTask(req.GetString("id", ""))
	if err != nil {
		return toolError(err)
	}

	return render(req, result, func() string { return FormatValidationAsMarkdown(result) })
}

// SearchTasksTool handles the task_search MCP tool.
type SearchTasksTool struct {
	server *MCPServer
}

func NewSearchTasksTool(server *MCPServer) *SearchTasksTool {
	return &SearchTasksTool{server: server}
}

func (t *SearchTasksTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("task_search",
		mcpgo.WithDescription("Rank tasks by a query over title and description, or an exact requirement ID, task type or agent ID."),
		mcpgo.WithString("query", mcpgo.Required(), mcpgo.Description("Free text, or e.g. REQ-002.")),
		mcpgo.WithString("status", mcpgo.Description("Only tasks in this status.")),
		mcpgo.WithString("type", mcpgo.Description("Only tasks of this type.")),
		mcpgo.WithNumber("limit", mcpgo.Description("Maximum results, 0 for all.")),
		mcpgo.WithNumber("offset", mcpgo.Description("Results to skip before the first one returned.")),
		withOutput(),
	)
}

func (t *SearchTasksTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcpgo.NewToolResultError("query is required"), nil
	}

	filter, err := ListTasksParams{
		Status: req.GetString("status", ""),
		Type:   req.GetString("type", ""),
	}.Filter()
	if err != nil {
		return toolError(err)
	}

	results, err := t.server.engine.SearchTasks(query, search.Options{
		Filter: filter,
		Limit:  int(req.GetFloat("limit", 0)),
		Offset: int(req.GetFloat("offset", 0)),
	})
	if err != nil {
		return toolError(err)
	}

	return render(req, results, func() string { return FormatSearchResultsAsMarkdown(query, results) })
}

// WorkSummaryTool handles the work_summary MCP tool.
type WorkSummaryTool struct {
	server *MCPServer
}

func NewWorkSummaryTool(server *MCPServer) *WorkSummaryTool {
	return &WorkSummaryTool{server: server}
}

func (t *WorkSummaryTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("work_summary",
		mcpgo.WithDescription("Roll up tasks by status, type and priority with per-agent workload and recommendations."),
		withOutput(),
	)
}

func (t *WorkSummaryTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	summary, err := t.server.engine.Summary()
	if err != nil {
		return toolError(err)
	}

	return render(req, summary, func() string { return FormatSummaryAsMarkdown(summary) })
}

// ListAgentsTool handles the agent_list MCP tool.
type ListAgentsTool struct {
	server *MCPServer
}

func NewListAgentsTool(server *MCPServer) *ListAgentsTool {
	return &ListAgentsTool{server: server}
}

func (t *ListAgentsTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("agent_list",
		mcpgo.WithDescription("List the agent roster in registry order with capabilities and availability."),
		withOutput(),
	)
}

func (t *ListAgentsTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	agents, err := t.server.engine.GetAgents()
	if err != nil {
		return toolError(err)
	}

	return render(req, agents, func() string { return FormatAgentsAsMarkdown(agents) })
}

// ListAssignmentsTool handles the assignment_list MCP tool.
type ListAssignmentsTool struct {
	server *MCPServer
}

func NewListAssignmentsTool(server *MCPServer) *ListAssignmentsTool {
	return &ListAssignmentsTool{server: server}
}

func (t *ListAssignmentsTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("assignment_list",
		mcpgo.WithDescription("Show the assignment log with confidence and reasons."),
		withOutput(),
	)
}

func (t *ListAssignmentsTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	assignments, err := t.server.engine.GetAssignments()
	if err != nil {
		return toolError(err)
	}

	return render(req, assignments, func() string { return FormatAssignmentsAsMarkdown(assignments) })
}
