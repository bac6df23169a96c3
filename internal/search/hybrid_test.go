package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/storage"
)

func seedTasks(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	store := storage.NewMemoryStorage()

	auth := domain.NewTask("task-1", "Implement: Users must authenticate with SSO", "Users must authenticate with SSO", domain.TaskDevelopment, domain.PriorityHigh)
	auth.Requirements = []string{"REQ-001"}
	auth.AssignedAgent = "agent-dev-1"

	authTests := domain.NewTask("task-2", "Test: Users must authenticate with SSO", "Write tests covering authenticate flows", domain.TaskTesting, domain.PriorityHigh)
	authTests.Requirements = []string{"REQ-001"}

	docs := domain.NewTask("task-3", "Implement: Export reports as PDF", "The system should export reports", domain.TaskDocumentation, domain.PriorityMedium)
	docs.Requirements = []string{"REQ-002"}

	for _, task := range []*domain.Task{auth, authTests, docs} {
		require.NoError(t, store.CreateTask(task))
	}
	return store
}

func TestHybridSearch_Keyword(t *testing.T) {
	searcher := NewHybridSearch(seedTasks(t))

	results, err := searcher.Search("Authenticate", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Both match in title and description; creation order breaks the tie.
	assert.Equal(t, "task-1", results[0].Task.ID)
	assert.Equal(t, MatchKeyword, results[0].MatchType)
	assert.Equal(t, 15.0, results[0].Score)
	assert.Equal(t, "Implement: Users must **authenticate** with SSO", results[0].Snippet)
}

func TestHybridSearch_Structural(t *testing.T) {
	searcher := NewHybridSearch(seedTasks(t))

	results, err := searcher.Search("req-002", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "task-3", results[0].Task.ID)
	assert.Equal(t, MatchStructural, results[0].MatchType)
	assert.Equal(t, "Requirement: REQ-002", results[0].Snippet)

	results, err = searcher.Search("agent-dev-1", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Agent: agent-dev-1", results[0].Snippet)
}

func TestHybridSearch_FilterAndPagination(t *testing.T) {
	searcher := NewHybridSearch(seedTasks(t))

	testingType := domain.TaskTesting
	results, err := searcher.Search("req-001", Options{Filter: domain.TaskFilter{Type: &testingType}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "task-2", results[0].Task.ID)

	results, err = searcher.Search("req-001", Options{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "task-2", results[0].Task.ID)

	results, err = searcher.Search("req-001", Options{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = searcher.Search("req-001", Options{Limit: 2, Offset: -3})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "task-1", results[0].Task.ID)

	results, err = searcher.Search("req-001", Options{Limit: -1, Offset: -1})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHybridSearch_EmptyQuery(t *testing.T) {
	results, err := NewHybridSearch(seedTasks(t)).Search("   ", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExtractSnippet(t *testing.T) {
	text := "The reporting module needs to export every quarterly report as a signed PDF document for auditors"
	snippet := extractSnippet(text, "pdf", 100)
	assert.Contains(t, snippet, "**PDF**")
	assert.True(t, len(snippet) < len(text))
}
