package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rcliao/specforge/internal/domain"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStorage persists tasks, agents and assignments as JSON rows ordered
// by an insertion sequence. Filterable task fields are mirrored in columns.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	// A single connection keeps the counter update and reads serialized.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			seq            INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT NOT NULL UNIQUE,
			status         TEXT NOT NULL,
			type           TEXT NOT NULL,
			assigned_agent TEXT NOT NULL DEFAULT '',
			data           TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_agent ON tasks(assigned_agent);

		CREATE TABLE IF NOT EXISTS agents (
			seq  INTEGER PRIMARY KEY AUTOINCREMENT,
			id   TEXT NOT NULL UNIQUE,
			data TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assignments (
			seq      INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id  TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			data     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assignments_agent ON assignments(agent_id);

		CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) NextTaskID() (string, error) {
	var n int
	err := s.db.QueryRow(`
		INSERT INTO counters (name, value) VALUES ('task', 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value`).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("storage: next task id: %w", err)
	}
	return TaskID(n), nil
}

func (s *SQLiteStorage) CreateTask(task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("storage: encode task: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO tasks (id, status, type, assigned_agent, data) VALUES (?, ?, ?, ?, ?)`,
		task.ID, string(task.Status), string(task.Type), task.AssignedAgent, string(data),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("task with ID %s: %w", task.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("storage: insert task: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpdateTask(id string, updates map[string]interface{}) (*domain.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	task, err := scanTask(tx.QueryRow(`SELECT data FROM tasks WHERE id = ?`, id), id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskUpdates(task, updates); err != nil {
		return nil, err
	}

	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("storage: encode task: %w", err)
	}
	_, err = tx.Exec(
		`UPDATE tasks SET status = ?, type = ?, assigned_agent = ?, data = ? WHERE id = ?`,
		string(task.Status), string(task.Type), task.AssignedAgent, string(data), id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage: commit: %w", err)
	}
	return task, nil
}

func (s *SQLiteStorage) GetTask(id string) (*domain.Task, error) {
	return scanTask(s.db.QueryRow(`SELECT data FROM tasks WHERE id = ?`, id), id)
}

func scanTask(row *sql.Row, id string) (*domain.Task, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read task: %w", err)
	}
	var task domain.Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, fmt.Errorf("storage: decode task %s: %w", id, err)
	}
	return &task, nil
}

func (s *SQLiteStorage) ListTasks(filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT data FROM tasks`
	var where []string
	var args []any
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.AssignedAgent != nil {
		where = append(where, "assigned_agent = ?")
		args = append(args, *filter.AssignedAgent)
	}
	if filter.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list tasks: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Task, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("storage: scan task: %w", err)
		}
		var task domain.Task
		if err := json.Unmarshal([]byte(data), &task); err != nil {
			return nil, fmt.Errorf("storage: decode task: %w", err)
		}
		result = append(result, &task)
	}
	return result, rows.Err()
}

// SeedAgents replaces the stored roster, keeping the given order.
func (s *SQLiteStorage) SeedAgents(agents []*domain.Agent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM agents`); err != nil {
		return fmt.Errorf("storage: clear agents: %w", err)
	}
	for _, a := range agents {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("storage: encode agent: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO agents (id, data) VALUES (?, ?)`, a.ID, string(data)); err != nil {
			return fmt.Errorf("storage: insert agent %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) ListAgents() ([]*domain.Agent, error) {
	rows, err := s.db.Query(`SELECT data FROM agents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage: list agents: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Agent, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("storage: scan agent: %w", err)
		}
		var a domain.Agent
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("storage: decode agent: %w", err)
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

func (s *SQLiteStorage) AppendAssignment(a *domain.Assignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("storage: encode assignment: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO assignments (task_id, agent_id, data) VALUES (?, ?, ?)`,
		a.TaskID, a.AgentID, string(data),
	)
	if err != nil {
		return fmt.Errorf("storage: insert assignment: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListAssignments() ([]*domain.Assignment, error) {
	rows, err := s.db.Query(`SELECT data FROM assignments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("storage: list assignments: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Assignment, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("storage: scan assignment: %w", err)
		}
		var a domain.Assignment
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("storage: decode assignment: %w", err)
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}
