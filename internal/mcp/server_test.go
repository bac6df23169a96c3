package mcp

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/search"
	"github.com/rcliao/specforge/internal/service"
	"github.com/rcliao/specforge/internal/storage"
)

const widgetSpec = "# Widget\n\nA widget tracker.\n\n## Requirements\n- The system must support login.\n"

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()
	engine, err := service.NewSpecEngine(storage.NewMemoryStorage(), nil)
	require.NoError(t, err)
	return NewMCPServer(engine, service.ParseOptions{GenerateTasks: true, AutoAssign: true, Validate: true})
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestMCPServer_SpecParse(t *testing.T) {
	server := newTestServer(t)

	result, err := server.HandleCommand("specforge.spec.parse", mustJSON(t, ParseSpecParams{
		Content: widgetSpec,
		Format:  "markdown",
	}))
	require.NoError(t, err)

	parsed, ok := result.(*service.ParseResult)
	require.True(t, ok)
	assert.Equal(t, "Widget", parsed.Spec.Title)
	assert.Len(t, parsed.Tasks, 1)
	assert.Len(t, parsed.Assignments, 1)
	assert.Len(t, parsed.Validation, 1)
}

func TestMCPServer_SpecParseExplicitOptions(t *testing.T) {
	server := newTestServer(t)

	result, err := server.HandleCommand("specforge.spec.parse", mustJSON(t, ParseSpecParams{
		Content: widgetSpec,
		Options: &service.ParseOptions{GenerateTasks: true},
	}))
	require.NoError(t, err)

	parsed := result.(*service.ParseResult)
	assert.Len(t, parsed.Tasks, 1)
	assert.Empty(t, parsed.Assignments)
	assert.Nil(t, parsed.Validation)
}

func TestMCPServer_SpecParseErrors(t *testing.T) {
	server := newTestServer(t)

	_, err := server.HandleCommand("specforge.spec.parse", mustJSON(t, ParseSpecParams{Content: "x", Format: "docx"}))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	_, err = server.HandleCommand("specforge.spec.parse", json.RawMessage(`{"content": 5}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameters")
}

func TestMCPServer_TaskCommands(t *testing.T) {
	server := newTestServer(t)
	_, err := server.HandleCommand("specforge.spec.parse", mustJSON(t, ParseSpecParams{Content: widgetSpec}))
	require.NoError(t, err)

	// Test task listing
	result, err := server.HandleCommand("specforge.task.list", nil)
	require.NoError(t, err)
	tasks := result.([]*domain.Task)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	result, err = server.HandleCommand("specforge.task.list", mustJSON(t, ListTasksParams{Status: "pending"}))
	require.NoError(t, err)
	assert.Empty(t, result.([]*domain.Task))

	_, err = server.HandleCommand("specforge.task.list", mustJSON(t, ListTasksParams{Status: "bogus"}))
	assert.True(t, errors.Is(err, domain.ErrInvalidStatus))

	// Test task retrieval
	result, err = server.HandleCommand("specforge.task.get", mustJSON(t, TaskIDParams{ID: id}))
	require.NoError(t, err)
	assert.Equal(t, id, result.(*domain.Task).ID)

	// Test status update
	result, err = server.HandleCommand("specforge.task.status", mustJSON(t, UpdateStatusParams{ID: id, Status: "completed"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"updated": true}, result)

	result, err = server.HandleCommand("specforge.task.status", mustJSON(t, UpdateStatusParams{ID: "task-404", Status: "completed"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"updated": false}, result)

	result, err = server.HandleCommand("specforge.task.list", mustJSON(t, ListTasksParams{Status: "completed", AssignedAgent: "agent-developer-1"}))
	require.NoError(t, err)
	assert.Len(t, result.([]*domain.Task), 1)

	// Test validation
	result, err = server.HandleCommand("specforge.task.validate", mustJSON(t, TaskIDParams{ID: id}))
	require.NoError(t, err)
	assert.True(t, result.(*domain.ValidationResult).Passed)

	// Test search
	result, err = server.HandleCommand("specforge.task.search", mustJSON(t, SearchTasksParams{Query: "login"}))
	require.NoError(t, err)
	hits := result.([]*search.Result)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].Task.ID)

	_, err = server.HandleCommand("specforge.task.search", nil)
	assert.Error(t, err)
}

func TestMCPServer_RegistryCommands(t *testing.T) {
	server := newTestServer(t)

	result, err := server.HandleCommand("specforge.agent.list", nil)
	require.NoError(t, err)
	assert.Len(t, result.([]*domain.Agent), 4)

	result, err = server.HandleCommand("specforge.summary", nil)
	require.NoError(t, err)
	assert.Zero(t, result.(*service.WorkSummary).Tasks.Total)

	result, err = server.HandleCommand("specforge.assignment.list", nil)
	require.NoError(t, err)
	assert.Empty(t, result.([]*domain.Assignment))
}

func TestMCPServer_UnknownMethod(t *testing.T) {
	server := newTestServer(t)

	_, err := server.HandleCommand("specforge.nope", nil)
	assert.EqualError(t, err, "unknown method: specforge.nope")
}
