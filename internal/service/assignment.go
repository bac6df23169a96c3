package service

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/logger"
)

const (
	weightType       = 0.4
	weightCapability = 0.3
	weightWorkload   = 0.2
	weightPerf       = 0.1

	defaultTypeCompatibility = 0.3
	workloadCeiling          = 10.0

	typeReasonThreshold       = 0.7
	capabilityReasonThreshold = 0.5

	basicReason = "Basic compatibility match"
)

// typeCompatibility is sparse; missing pairs score defaultTypeCompatibility.
var typeCompatibility = map[domain.AgentType]map[domain.TaskType]float64{
	domain.AgentDeveloper: {
		domain.TaskDevelopment:   1.0,
		domain.TaskTesting:       0.6,
		domain.TaskDocumentation: 0.5,
		domain.TaskDesign:        0.3,
		domain.TaskReview:        0.7,
	},
	domain.AgentDesigner: {
		domain.TaskDesign:        1.0,
		domain.TaskDocumentation: 0.6,
		domain.TaskReview:        0.5,
	},
	domain.AgentTester: {
		domain.TaskTesting:       1.0,
		domain.TaskReview:        0.7,
		domain.TaskDevelopment:   0.4,
		domain.TaskDocumentation: 0.5,
	},
	domain.AgentReviewer: {
		domain.TaskReview:        1.0,
		domain.TaskTesting:       0.7,
		domain.TaskDocumentation: 0.6,
	},
	domain.AgentArchitect: {
		domain.TaskReview:        1.0,
		domain.TaskDesign:        0.8,
		domain.TaskDevelopment:   0.7,
		domain.TaskDocumentation: 0.6,
	},
}

func TypeCompatibility(agent domain.AgentType, task domain.TaskType) float64 {
	if v, ok := typeCompatibility[agent][task]; ok {
		return v
	}
	return defaultTypeCompatibility
}

// Score is the breakdown behind one agent/task confidence.
type Score struct {
	TypeCompatibility float64 `json:"typeCompatibility"`
	CapabilityMatch   float64 `json:"capabilityMatch"`
	Workload          float64 `json:"workload"`
	Performance       float64 `json:"performance"`
	Confidence        float64 `json:"confidence"`
	matched           int
}

// ScoreAgent rates agent for task given its current open assignment count.
func ScoreAgent(agent *domain.Agent, task *domain.Task, openAssignments int) Score {
	s := Score{TypeCompatibility: TypeCompatibility(agent.Type, task.Type)}

	if len(agent.Capabilities) > 0 {
		desc := strings.ToLower(task.Description)
		for _, c := range agent.Capabilities {
			if c != "" && strings.Contains(desc, strings.ToLower(c)) {
				s.matched++
			}
		}
		s.CapabilityMatch = math.Min(1, float64(s.matched)/float64(len(agent.Capabilities)))
	}

	s.Workload = math.Max(0, 1-float64(openAssignments)/workloadCeiling)

	if agent.Performance.AverageScore > 0 {
		s.Performance = agent.Performance.AverageScore / 10
	}

	s.Confidence = math.Min(1, weightType*s.TypeCompatibility+
		weightCapability*s.CapabilityMatch+
		weightWorkload*s.Workload+
		weightPerf*s.Performance)
	return s
}

func (s Score) reason(agent *domain.Agent, task *domain.Task) string {
	var parts []string
	if s.TypeCompatibility > typeReasonThreshold {
		parts = append(parts, fmt.Sprintf("%s agents are well suited to %s tasks", agent.Type, task.Type))
	}
	if s.CapabilityMatch > capabilityReasonThreshold {
		parts = append(parts, fmt.Sprintf("matches %d of %d capabilities", s.matched, len(agent.Capabilities)))
	}
	if agent.Performance.AverageScore > 0 {
		parts = append(parts, fmt.Sprintf("average score %.1f over %d tasks", agent.Performance.AverageScore, agent.Performance.TasksCompleted))
	}
	if len(parts) == 0 {
		return basicReason
	}
	return strings.Join(parts, "; ")
}

// AssignmentEngine greedily gives each task to its best available agent.
type AssignmentEngine struct {
	agents      *AgentService
	tasks       TaskStorage
	assignments AssignmentStorage
	now         func() time.Time
	log         *slog.Logger
}

func NewAssignmentEngine(agents *AgentService, tasks TaskStorage, assignments AssignmentStorage) *AssignmentEngine {
	return &AssignmentEngine{
		agents:      agents,
		tasks:       tasks,
		assignments: assignments,
		now:         time.Now,
		log:         logger.ForComponent("assignment"),
	}
}

// Assign mutates and persists every task it places and returns the new log
// entries. Tasks with an agent already, or with no available agent, are
// skipped. Ties go to the agent listed first.
func (e *AssignmentEngine) Assign(tasks []*domain.Task) ([]*domain.Assignment, error) {
	result := make([]*domain.Assignment, 0)

	pool, err := e.agents.Available()
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if len(pool) == 0 {
		e.log.Debug("no available agents", "tasks", len(tasks))
		return result, nil
	}

	open, err := e.openAssignments()
	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if task.AssignedAgent != "" {
			continue
		}

		var best *domain.Agent
		var bestScore Score
		bestConf := -1.0
		for _, agent := range pool {
			score := ScoreAgent(agent, task, open[agent.ID])
			e.log.Debug("scored agent", "task", task.ID, "agent", agent.ID, "confidence", score.Confidence)
			if score.Confidence > bestConf {
				best, bestScore, bestConf = agent, score, score.Confidence
			}
		}

		now := e.now()
		assignment := &domain.Assignment{
			TaskID:     task.ID,
			AgentID:    best.ID,
			AgentName:  best.Name,
			Confidence: bestScore.Confidence,
			Reason:     bestScore.reason(best, task),
			AssignedAt: now,
		}

		if _, err := e.tasks.UpdateTask(task.ID, map[string]interface{}{
			"status":        domain.StatusAssigned,
			"assignedAgent": best.ID,
			"updatedAt":     now,
		}); err != nil {
			return nil, fmt.Errorf("assign %s: %w", task.ID, err)
		}
		if err := e.assignments.AppendAssignment(assignment); err != nil {
			return nil, fmt.Errorf("record assignment for %s: %w", task.ID, err)
		}

		task.AssignedAgent = best.ID
		task.Status = domain.StatusAssigned
		task.UpdatedAt = now
		open[best.ID]++
		result = append(result, assignment)

		e.log.Info("task assigned", "task", task.ID, "agent", best.ID, "confidence", assignment.Confidence)
	}

	return result, nil
}

// openAssignments counts, per agent, logged assignments whose task is not
// completed.
func (e *AssignmentEngine) openAssignments() (map[string]int, error) {
	log, err := e.assignments.ListAssignments()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	tasks, err := e.tasks.ListTasks(domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	status := make(map[string]domain.TaskStatus, len(tasks))
	for _, t := range tasks {
		status[t.ID] = t.Status
	}

	open := make(map[string]int)
	for _, a := range log {
		if status[a.TaskID] != domain.StatusCompleted {
			open[a.AgentID]++
		}
	}
	return open, nil
}
