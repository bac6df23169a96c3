package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

const instructions = `specforge turns project specifications into assignable tasks.

Call spec_parse with markdown, yaml or plain text. Generated tasks get IDs
like task-1 and can be listed with task_list, found with task_search, moved
through their lifecycle with task_update_status and re-scored with
task_validate. work_summary reports progress and workload, agent_list shows
the roster and assignment_list shows who got what and why.`

// NewStdioServer registers every tool on a fresh mcp-go server.
func NewStdioServer(s *MCPServer) *server.MCPServer {
	srv := server.NewMCPServer(
		"specforge",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	parseTool := NewParseSpecTool(s)
	srv.AddTool(parseTool.Definition(), parseTool.Handle)

	listTool := NewListTasksTool(s)
	srv.AddTool(listTool.Definition(), listTool.Handle)

	statusTool := NewUpdateTaskStatusTool(s)
	srv.AddTool(statusTool.Definition(), statusTool.Handle)

	validateTool := NewValidateTaskTool(s)
	srv.AddTool(validateTool.Definition(), validateTool.Handle)

	searchTool := NewSearchTasksTool(s)
	srv.AddTool(searchTool.Definition(), searchTool.Handle)

	summaryTool := NewWorkSummaryTool(s)
	srv.AddTool(summaryTool.Definition(), summaryTool.Handle)

	agentsTool := NewListAgentsTool(s)
	srv.AddTool(agentsTool.Definition(), agentsTool.Handle)

	assignmentsTool := NewListAssignmentsTool(s)
	srv.AddTool(assignmentsTool.Definition(), assignmentsTool.Handle)

	return srv
}

// ServeStdio blocks serving the tools over stdin/stdout.
func ServeStdio(s *MCPServer) error {
	s.log.Info("serving MCP over stdio", "version", Version)
	return server.ServeStdio(NewStdioServer(s))
}
