package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/storage"
)

func newTestAssigner(t *testing.T, roster []*domain.Agent) (*AssignmentEngine, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	agents, err := NewAgentService(store, roster)
	require.NoError(t, err)
	engine := NewAssignmentEngine(agents, store, store)
	engine.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return engine, store
}

func storeTask(t *testing.T, store *storage.MemoryStorage, title, desc string, taskType domain.TaskType) *domain.Task {
	t.Helper()
	id, err := store.NextTaskID()
	require.NoError(t, err)
	task := domain.NewTask(id, title, desc, taskType, domain.PriorityMedium)
	require.NoError(t, store.CreateTask(task))
	return task
}

func TestTypeCompatibility(t *testing.T) {
	assert.Equal(t, 1.0, TypeCompatibility(domain.AgentDeveloper, domain.TaskDevelopment))
	assert.Equal(t, 0.3, TypeCompatibility(domain.AgentDeveloper, domain.TaskDesign))
	assert.Equal(t, 1.0, TypeCompatibility(domain.AgentArchitect, domain.TaskReview))
	assert.Equal(t, 0.3, TypeCompatibility(domain.AgentDesigner, domain.TaskTesting))
	assert.Equal(t, 0.3, TypeCompatibility(domain.AgentType("intern"), domain.TaskDevelopment))
}

func TestScoreAgent_Breakdown(t *testing.T) {
	dev := domain.DefaultAgents()[0]
	task := domain.NewTask("task-1", "API", "Build the REST api backend with database access", domain.TaskDevelopment, domain.PriorityHigh)

	score := ScoreAgent(dev, task, 0)
	assert.Equal(t, 1.0, score.TypeCompatibility)
	assert.InDelta(t, 0.5, score.CapabilityMatch, 1e-9) // api, backend, database
	assert.Equal(t, 1.0, score.Workload)
	assert.InDelta(t, 0.87, score.Performance, 1e-9)
	assert.InDelta(t, 0.4+0.15+0.2+0.087, score.Confidence, 1e-9)

	busy := ScoreAgent(dev, task, 5)
	assert.InDelta(t, 0.5, busy.Workload, 1e-9)
	assert.Less(t, busy.Confidence, score.Confidence)

	saturated := ScoreAgent(dev, task, 25)
	assert.Equal(t, 0.0, saturated.Workload)
}

func TestScoreAgent_ConfidenceBounds(t *testing.T) {
	agentTypes := []domain.AgentType{domain.AgentDeveloper, domain.AgentDesigner, domain.AgentTester, domain.AgentReviewer, domain.AgentArchitect}
	taskTypes := []domain.TaskType{domain.TaskDevelopment, domain.TaskTesting, domain.TaskDocumentation, domain.TaskDesign, domain.TaskReview}

	for _, at := range agentTypes {
		for _, tt := range taskTypes {
			for _, open := range []int{0, 3, 10, 40} {
				agent := &domain.Agent{
					Type:         at,
					Capabilities: []string{"api", "ui"},
					Performance:  domain.Performance{AverageScore: 10},
				}
				task := &domain.Task{Type: tt, Description: "api and ui work"}
				c := ScoreAgent(agent, task, open).Confidence
				assert.GreaterOrEqual(t, c, 0.0)
				assert.LessOrEqual(t, c, 1.0)
			}
		}
	}
}

func TestScoreAgent_UnmatchedPairUpperBound(t *testing.T) {
	designer := domain.DefaultAgents()[1]
	task := &domain.Task{Type: domain.TaskTesting, Description: "verify nightly backups restore"}

	score := ScoreAgent(designer, task, 0)
	assert.Equal(t, 0.0, score.CapabilityMatch)
	assert.LessOrEqual(t, score.Confidence, 0.4*0.3+0.2*1+0.1*score.Performance+1e-9)
}

func TestAssignmentEngine_PicksBestAgent(t *testing.T) {
	engine, store := newTestAssigner(t, nil)
	task := storeTask(t, store, "Implement: API", "Build the REST api backend with database access", domain.TaskDevelopment)

	assignments, err := engine.Assign([]*domain.Task{task})
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	a := assignments[0]
	assert.Equal(t, task.ID, a.TaskID)
	assert.Equal(t, "agent-developer-1", a.AgentID)
	assert.Equal(t, "Full-Stack Developer", a.AgentName)
	assert.Contains(t, a.Reason, "developer agents are well suited to development tasks")
	assert.Contains(t, a.Reason, "; ")

	// The caller's task and the stored copy are both updated.
	assert.Equal(t, domain.StatusAssigned, task.Status)
	assert.Equal(t, "agent-developer-1", task.AssignedAgent)
	stored, err := store.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, stored.Status)
	assert.Equal(t, "agent-developer-1", stored.AssignedAgent)

	logged, err := store.ListAssignments()
	require.NoError(t, err)
	assert.Len(t, logged, 1)
}

func TestAssignmentEngine_EmptyPool(t *testing.T) {
	offline := domain.DefaultAgents()
	for _, a := range offline {
		a.Availability = domain.AvailabilityOffline
	}
	engine, store := newTestAssigner(t, offline)
	task := storeTask(t, store, "Implement: API", "Build the api", domain.TaskDevelopment)

	assignments, err := engine.Assign([]*domain.Task{task})
	require.NoError(t, err)
	assert.NotNil(t, assignments)
	assert.Empty(t, assignments)
	assert.Equal(t, domain.StatusPending, task.Status)

	stored, err := store.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestAssignmentEngine_SkipsUnavailableAgents(t *testing.T) {
	roster := domain.DefaultAgents()
	roster[0].Availability = domain.AvailabilityBusy
	engine, store := newTestAssigner(t, roster)
	task := storeTask(t, store, "Implement: API", "Build the REST api backend", domain.TaskDevelopment)

	assignments, err := engine.Assign([]*domain.Task{task})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "agent-architect-1", assignments[0].AgentID)
}

func TestAssignmentEngine_TieGoesToFirstAgent(t *testing.T) {
	twin := func(id string) *domain.Agent {
		return &domain.Agent{ID: id, Name: id, Type: domain.AgentTester, Availability: domain.AvailabilityAvailable}
	}
	engine, store := newTestAssigner(t, []*domain.Agent{twin("first"), twin("second")})
	task := storeTask(t, store, "Check things", "nothing special here", domain.TaskDesign)

	assignments, err := engine.Assign([]*domain.Task{task})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "first", assignments[0].AgentID)
	assert.Equal(t, basicReason, assignments[0].Reason)
}

func TestAssignmentEngine_WorkloadSpreadsTasks(t *testing.T) {
	twin := func(id string) *domain.Agent {
		return &domain.Agent{ID: id, Name: id, Type: domain.AgentDeveloper, Availability: domain.AvailabilityAvailable}
	}
	engine, store := newTestAssigner(t, []*domain.Agent{twin("a"), twin("b")})

	var tasks []*domain.Task
	for i := 0; i < 4; i++ {
		tasks = append(tasks, storeTask(t, store, "Build feature", "implement the thing", domain.TaskDevelopment))
	}

	assignments, err := engine.Assign(tasks)
	require.NoError(t, err)
	require.Len(t, assignments, 4)

	got := []string{assignments[0].AgentID, assignments[1].AgentID, assignments[2].AgentID, assignments[3].AgentID}
	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestAssignmentEngine_CompletedTasksFreeCapacity(t *testing.T) {
	engine, store := newTestAssigner(t, nil)
	first := storeTask(t, store, "Build feature", "implement the thing", domain.TaskDevelopment)
	_, err := engine.Assign([]*domain.Task{first})
	require.NoError(t, err)

	open, err := engine.openAssignments()
	require.NoError(t, err)
	assert.Equal(t, 1, open[first.AssignedAgent])

	_, err = store.UpdateTask(first.ID, map[string]interface{}{"status": domain.StatusCompleted})
	require.NoError(t, err)

	open, err = engine.openAssignments()
	require.NoError(t, err)
	assert.Equal(t, 0, open[first.AssignedAgent])
}

func TestAssignmentEngine_SkipsAssignedTasks(t *testing.T) {
	engine, store := newTestAssigner(t, nil)
	task := storeTask(t, store, "Build feature", "implement the thing", domain.TaskDevelopment)
	task.AssignedAgent = "someone-else"

	assignments, err := engine.Assign([]*domain.Task{task})
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
