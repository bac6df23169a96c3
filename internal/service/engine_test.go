package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/search"
	"github.com/rcliao/specforge/internal/storage"
)

const widgetSpec = "# Widget\n\nA widget tracker.\n\n## Requirements\n- The system must support login.\n"

var allOptions = ParseOptions{GenerateTasks: true, AutoAssign: true, Validate: true}

func newTestEngine(t *testing.T) *SpecEngine {
	t.Helper()
	engine, err := NewSpecEngine(storage.NewMemoryStorage(), nil)
	require.NoError(t, err)
	return engine
}

func TestSpecEngine_WidgetScenario(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.ParseSpecification(ParseRequest{
		Content: widgetSpec,
		Format:  domain.FormatMarkdown,
		Options: ParseOptions{GenerateTasks: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget", result.Spec.Title)
	require.Len(t, result.Spec.Requirements, 1)
	assert.Equal(t, domain.RequirementFunctional, result.Spec.Requirements[0].Type)
	assert.Equal(t, domain.PriorityCritical, result.Spec.Requirements[0].Priority)

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, domain.TaskDevelopment, result.Tasks[0].Type)
	assert.Equal(t, domain.StatusPending, result.Tasks[0].Status)
	assert.Empty(t, result.Assignments)
	assert.Nil(t, result.Validation)
}

func TestSpecEngine_FullPipeline(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.ParseSpecification(ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: allOptions})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "agent-developer-1", result.Assignments[0].AgentID)
	assert.Equal(t, domain.StatusAssigned, result.Tasks[0].Status)
	assert.Equal(t, "agent-developer-1", result.Tasks[0].AssignedAgent)

	require.Len(t, result.Validation, 1)
	assert.Equal(t, result.Tasks[0].ID, result.Validation[0].TaskID)
	assert.True(t, result.Validation[0].Passed)

	stored, err := engine.GetTasks()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.StatusAssigned, stored[0].Status)

	log, err := engine.GetAssignments()
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestSpecEngine_NoTasksRequested(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.ParseSpecification(ParseRequest{
		Content: widgetSpec,
		Format:  domain.FormatMarkdown,
		Options: ParseOptions{AutoAssign: true, Validate: true},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Empty(t, result.Assignments)
	assert.Nil(t, result.Validation)

	tasks, err := engine.GetTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSpecEngine_ValidationOmittedWithoutTasks(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.ParseSpecification(ParseRequest{Content: "# Empty\n\nNothing to do.\n", Format: domain.FormatMarkdown, Options: allOptions})
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Nil(t, result.Validation)
}

func TestSpecEngine_RepeatedParsesAppend(t *testing.T) {
	engine := newTestEngine(t)
	req := ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: ParseOptions{GenerateTasks: true}}

	first, err := engine.ParseSpecification(req)
	require.NoError(t, err)
	second, err := engine.ParseSpecification(req)
	require.NoError(t, err)

	assert.Equal(t, "task-1", first.Tasks[0].ID)
	assert.Equal(t, "task-2", second.Tasks[0].ID)
	assert.NotEqual(t, first.Spec.ID, second.Spec.ID)

	tasks, err := engine.GetTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestSpecEngine_ParseErrorsAbort(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.ParseSpecification(ParseRequest{Content: "x", Format: "xml", Options: allOptions})
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	result, err = engine.ParseSpecification(ParseRequest{Content: "a: [", Format: domain.FormatYAML, Options: allOptions})
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	tasks, err := engine.GetTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSpecEngine_UpdateTaskStatus(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.ParseSpecification(ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: ParseOptions{GenerateTasks: true}})
	require.NoError(t, err)
	id := result.Tasks[0].ID

	ok, err := engine.UpdateTaskStatus(id, domain.StatusInProgress)
	require.NoError(t, err)
	assert.True(t, ok)

	task, err := engine.GetTask(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, task.Status)

	ok, err = engine.UpdateTaskStatus("task-404", domain.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = engine.UpdateTaskStatus(id, domain.TaskStatus("shipped"))
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrInvalidStatus))
}

func TestSpecEngine_AccessorsReturnCopies(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.ParseSpecification(ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: allOptions})
	require.NoError(t, err)

	tasks, err := engine.GetTasks()
	require.NoError(t, err)
	tasks[0].Title = "tampered"

	agents, err := engine.GetAgents()
	require.NoError(t, err)
	require.Len(t, agents, 4)
	agents[0].Availability = domain.AvailabilityOffline

	assignments, err := engine.GetAssignments()
	require.NoError(t, err)
	assignments[0].AgentID = "tampered"

	tasks, _ = engine.GetTasks()
	agents, _ = engine.GetAgents()
	assignments, _ = engine.GetAssignments()
	assert.NotEqual(t, "tampered", tasks[0].Title)
	assert.Equal(t, domain.AvailabilityAvailable, agents[0].Availability)
	assert.Equal(t, "agent-developer-1", assignments[0].AgentID)
}

func TestSpecEngine_AvailabilityNeverChanges(t *testing.T) {
	engine := newTestEngine(t)
	input := "# Many\n\n## Requirements\n" +
		"- The system must support login.\n" +
		"- The system must support logout.\n" +
		"- The system must send a welcome email.\n"

	_, err := engine.ParseSpecification(ParseRequest{Content: input, Format: domain.FormatMarkdown, Options: allOptions})
	require.NoError(t, err)

	agents, err := engine.GetAgents()
	require.NoError(t, err)
	for _, a := range agents {
		assert.Equal(t, domain.AvailabilityAvailable, a.Availability, a.ID)
	}
}

func TestSpecEngine_ConcurrentParses(t *testing.T) {
	engine := newTestEngine(t)
	req := ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: allOptions}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ParseSpecification(req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tasks, err := engine.GetTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 8)

	seen := make(map[string]bool)
	for _, task := range tasks {
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}

	assignments, err := engine.GetAssignments()
	require.NoError(t, err)
	assert.Len(t, assignments, 8)
}

func TestSpecEngine_ValidateTask(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.ParseSpecification(ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: ParseOptions{GenerateTasks: true}})
	require.NoError(t, err)

	v, err := engine.ValidateTask(result.Tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, v.Score)

	_, err = engine.ValidateTask("task-404")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSpecEngine_SearchTasks(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.ParseSpecification(ParseRequest{Content: widgetSpec, Format: domain.FormatMarkdown, Options: allOptions})
	require.NoError(t, err)

	hits, err := engine.SearchTasks("login", search.Options{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, result.Tasks[0].ID, hits[0].Task.ID)

	hits, err = engine.SearchTasks("REQ-001", search.Options{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, search.MatchStructural, hits[0].MatchType)

	hits, err = engine.SearchTasks("nothing matches this", search.Options{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
