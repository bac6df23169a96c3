package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
)

func newTestSQLite(t *testing.T, path string) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_Contract(t *testing.T) {
	runStoreContract(t, newTestSQLite(t, filepath.Join(t.TempDir(), "specforge.db")))
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "specforge.db")

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	id, err := s.NextTaskID()
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(domain.NewTask(id, "Persisted", "desc", domain.TaskDesign, domain.PriorityHigh)))
	require.NoError(t, s.SeedAgents(domain.DefaultAgents()))
	require.NoError(t, s.Close())

	reopened := newTestSQLite(t, path)
	tasks, err := reopened.ListTasks(domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Persisted", tasks[0].Title)
	assert.Equal(t, domain.TaskDesign, tasks[0].Type)

	// The counter carries on instead of reusing task-1.
	next, err := reopened.NextTaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-2", next)

	agents, err := reopened.ListAgents()
	require.NoError(t, err)
	assert.Len(t, agents, 4)
}
