package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rcliao/specforge/internal/domain"
)

const snapshotFile = "state.json"

// FileStorage keeps the working set in memory and rewrites a JSON snapshot
// under basePath after every mutation.
type FileStorage struct {
	*MemoryStorage

	basePath string
	mu       sync.Mutex
}

type snapshot struct {
	TaskSeq     int                  `json:"taskSeq"`
	Tasks       []*domain.Task       `json:"tasks"`
	Agents      []*domain.Agent      `json:"agents"`
	Assignments []*domain.Assignment `json:"assignments"`
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	fs := &FileStorage{
		MemoryStorage: NewMemoryStorage(),
		basePath:      basePath,
	}

	err := fs.initialize()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	return fs, nil
}

func (fs *FileStorage) initialize() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return err
	}

	var snap snapshot
	err := loadJSON(fs.path(), &snap)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	ms := fs.MemoryStorage
	ms.taskSeq = snap.TaskSeq
	for _, t := range snap.Tasks {
		ms.taskIndex[t.ID] = len(ms.tasks)
		ms.tasks = append(ms.tasks, t)
	}
	if snap.Agents != nil {
		ms.agents = snap.Agents
	}
	if snap.Assignments != nil {
		ms.assignments = snap.Assignments
	}
	return nil
}

func (fs *FileStorage) path() string {
	return filepath.Join(fs.basePath, snapshotFile)
}

func (fs *FileStorage) persist() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ms := fs.MemoryStorage
	ms.mu.RLock()
	snap := snapshot{
		TaskSeq:     ms.taskSeq,
		Tasks:       ms.tasks,
		Agents:      ms.agents,
		Assignments: ms.assignments,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	ms.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}

	return writeFileAtomic(fs.path(), data)
}

func (fs *FileStorage) NextTaskID() (string, error) {
	id, err := fs.MemoryStorage.NextTaskID()
	if err != nil {
		return "", err
	}
	return id, fs.persist()
}

func (fs *FileStorage) CreateTask(task *domain.Task) error {
	if err := fs.MemoryStorage.CreateTask(task); err != nil {
		return err
	}
	return fs.persist()
}

func (fs *FileStorage) UpdateTask(id string, updates map[string]interface{}) (*domain.Task, error) {
	task, err := fs.MemoryStorage.UpdateTask(id, updates)
	if err != nil {
		return nil, err
	}
	return task, fs.persist()
}

func (fs *FileStorage) SeedAgents(agents []*domain.Agent) error {
	if err := fs.MemoryStorage.SeedAgents(agents); err != nil {
		return err
	}
	return fs.persist()
}

func (fs *FileStorage) AppendAssignment(a *domain.Assignment) error {
	if err := fs.MemoryStorage.AppendAssignment(a); err != nil {
		return err
	}
	return fs.persist()
}

// writeFileAtomic writes through a temp file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, path)
}

func loadJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(target)
}
