package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/rcliao/specforge/internal/domain"
)

const (
	recentTaskCount  = 5
	busyAgentOpenMin = 3
)

type WorkSummary struct {
	Tasks       *TaskSummary     `json:"tasks"`
	Workload    []*AgentWorkload `json:"workload"`
	Insights    *WorkInsights    `json:"insights"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

type TaskSummary struct {
	Total          int                       `json:"total"`
	ByStatus       map[domain.TaskStatus]int `json:"byStatus"`
	ByType         map[domain.TaskType]int   `json:"byType"`
	ByPriority     map[domain.Priority]int   `json:"byPriority"`
	EstimatedHours float64                   `json:"estimatedHours"`
	RemainingHours float64                   `json:"remainingHours"`
	Recent         []*domain.Task            `json:"recent"`
	NeedsRevision  []*domain.Task            `json:"needsRevision"`
	Unassigned     []*domain.Task            `json:"unassigned"`
}

// AgentWorkload is derived from task ownership, not the assignment log, so
// status changes made after assignment are reflected.
type AgentWorkload struct {
	AgentID   string  `json:"agentId"`
	AgentName string  `json:"agentName"`
	Open      int     `json:"open"`
	Completed int     `json:"completed"`
	OpenHours float64 `json:"openHours"`
}

type WorkInsights struct {
	VelocityTrend   string   `json:"velocityTrend"`
	Recommendations []string `json:"recommendations"`
}

// Summarize rolls tasks up by status, type and priority and computes
// per-agent workload for every agent in roster order.
func Summarize(tasks []*domain.Task, agents []*domain.Agent, now time.Time) *WorkSummary {
	summary := &WorkSummary{
		Tasks:       summarizeTasks(tasks),
		Workload:    summarizeWorkload(tasks, agents),
		GeneratedAt: now,
	}
	summary.Insights = &WorkInsights{
		VelocityTrend: velocityTrend(tasks, now),
	}
	summary.Insights.Recommendations = recommendations(summary)
	return summary
}

func summarizeTasks(tasks []*domain.Task) *TaskSummary {
	summary := &TaskSummary{
		Total:         len(tasks),
		ByStatus:      make(map[domain.TaskStatus]int),
		ByType:        make(map[domain.TaskType]int),
		ByPriority:    make(map[domain.Priority]int),
		Recent:        make([]*domain.Task, 0),
		NeedsRevision: make([]*domain.Task, 0),
		Unassigned:    make([]*domain.Task, 0),
	}

	for _, task := range tasks {
		summary.ByStatus[task.Status]++
		summary.ByType[task.Type]++
		summary.ByPriority[task.Priority]++
		summary.EstimatedHours += task.EstimatedHours

		if task.Status != domain.StatusCompleted {
			summary.RemainingHours += task.EstimatedHours
		}
		if task.Status == domain.StatusNeedsRevision {
			summary.NeedsRevision = append(summary.NeedsRevision, task)
		}
		if task.Status == domain.StatusPending && task.AssignedAgent == "" {
			summary.Unassigned = append(summary.Unassigned, task)
		}
	}

	sorted := make([]*domain.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > recentTaskCount {
		sorted = sorted[:recentTaskCount]
	}
	summary.Recent = sorted

	return summary
}

func summarizeWorkload(tasks []*domain.Task, agents []*domain.Agent) []*AgentWorkload {
	byID := make(map[string]*AgentWorkload, len(agents))
	workload := make([]*AgentWorkload, 0, len(agents))
	for _, a := range agents {
		w := &AgentWorkload{AgentID: a.ID, AgentName: a.Name}
		byID[a.ID] = w
		workload = append(workload, w)
	}

	for _, task := range tasks {
		w, ok := byID[task.AssignedAgent]
		if !ok {
			continue
		}
		if task.Status == domain.StatusCompleted {
			w.Completed++
			continue
		}
		w.Open++
		w.OpenHours += task.EstimatedHours
	}
	return workload
}

// velocityTrend compares completions in the last week with the week before.
func velocityTrend(tasks []*domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "no_data"
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	recent, previous := 0, 0
	for _, task := range tasks {
		if task.Status != domain.StatusCompleted {
			continue
		}
		if task.UpdatedAt.After(weekAgo) {
			recent++
		} else if task.UpdatedAt.After(twoWeeksAgo) {
			previous++
		}
	}

	switch {
	case recent > previous:
		return "improving"
	case recent < previous:
		return "declining"
	default:
		return "stable"
	}
}

func recommendations(s *WorkSummary) []string {
	recs := make([]string, 0)

	if n := len(s.Tasks.Unassigned); n > 0 {
		recs = append(recs, fmt.Sprintf("Assign %d pending tasks that have no agent", n))
	}
	if n := len(s.Tasks.NeedsRevision); n > 0 {
		recs = append(recs, fmt.Sprintf("Revise %d tasks flagged for revision", n))
	}
	for _, w := range s.Workload {
		if w.Open >= busyAgentOpenMin {
			recs = append(recs, fmt.Sprintf("%s has %d open tasks (%.1fh), consider rebalancing", w.AgentName, w.Open, w.OpenHours))
		}
	}
	if s.Insights.VelocityTrend == "declining" {
		recs = append(recs, "Velocity is declining, consider splitting large tasks")
	}

	if len(recs) == 0 {
		recs = append(recs, "Work is on track")
	}
	return recs
}
