package mcp

import (
	"fmt"
	"strings"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/search"
	"github.com/rcliao/specforge/internal/service"
)

// FormatTasksAsMarkdown formats a list of tasks as markdown grouped by status
func FormatTasksAsMarkdown(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return "📋 **No tasks found**\n\nGenerate tasks with `spec_parse`"
	}

	var sb strings.Builder
	sb.WriteString("# 📋 Tasks\n\n")

	statusGroups := make(map[domain.TaskStatus][]*domain.Task)
	for _, task := range tasks {
		statusGroups[task.Status] = append(statusGroups[task.Status], task)
	}

	// Display in order: In Progress, Needs Revision, Assigned, Pending, Completed
	displayOrder := []domain.TaskStatus{
		domain.StatusInProgress,
		domain.StatusNeedsRevision,
		domain.StatusAssigned,
		domain.StatusPending,
		domain.StatusCompleted,
	}

	for _, status := range displayOrder {
		group := statusGroups[status]
		if len(group) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("## %s\n\n", getStatusHeader(status)))

		for _, task := range group {
			sb.WriteString(formatSingleTask(task))
			sb.WriteString("\n")
		}
	}

	return strings.TrimSpace(sb.String())
}

func formatSingleTask(task *domain.Task) string {
	var sb strings.Builder

	checkbox := "[ ]"
	switch task.Status {
	case domain.StatusCompleted:
		checkbox = "[x]"
	case domain.StatusNeedsRevision:
		checkbox = "[!]"
	case domain.StatusInProgress:
		checkbox = "[>]"
	}

	sb.WriteString(fmt.Sprintf("### %s %s **%s** `[%s]`\n", checkbox, priorityIcon(task.Priority), task.Title, task.ID))

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("   %s\n", task.Description))
	}

	sb.WriteString(fmt.Sprintf("   🧩 %s · 📊 Estimated: %.1fh\n", task.Type, task.EstimatedHours))

	if len(task.Requirements) > 0 {
		sb.WriteString(fmt.Sprintf("   🔗 %s\n", strings.Join(task.Requirements, ", ")))
	}

	if task.AssignedAgent != "" {
		sb.WriteString(fmt.Sprintf("   👤 Assigned to: %s\n", task.AssignedAgent))
	}

	return sb.String()
}

func priorityIcon(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return "🔥"
	case domain.PriorityHigh:
		return "🔴"
	case domain.PriorityMedium:
		return "🟡"
	case domain.PriorityLow:
		return "🟢"
	default:
		return ""
	}
}

func getStatusHeader(status domain.TaskStatus) string {
	switch status {
	case domain.StatusPending:
		return "📅 Pending"
	case domain.StatusAssigned:
		return "👤 Assigned"
	case domain.StatusInProgress:
		return "🚀 In Progress"
	case domain.StatusNeedsRevision:
		return "🔁 Needs Revision"
	case domain.StatusCompleted:
		return "✅ Completed"
	default:
		return string(status)
	}
}

// FormatParseResultAsMarkdown summarises a parse run
func FormatParseResultAsMarkdown(result *service.ParseResult) string {
	spec := result.Spec

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# 📄 %s\n\n", spec.Title))
	sb.WriteString(fmt.Sprintf("%s\n\n", spec.Summary))
	sb.WriteString(fmt.Sprintf("**Spec ID:** `%s`\n\n", spec.ID))
	sb.WriteString("| Sections | Requirements | User Stories | Use Cases | Tasks | Assignments |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d |\n\n",
		len(spec.Sections), len(spec.Requirements), len(spec.UserStories), len(spec.UseCases),
		len(result.Tasks), len(result.Assignments)))

	if len(spec.Requirements) > 0 {
		sb.WriteString("## Requirements\n\n")
		for _, req := range spec.Requirements {
			sb.WriteString(fmt.Sprintf("- **%s** %s %s _(%s)_\n", req.ID, priorityIcon(req.Priority), req.Description, req.Type))
			for _, c := range req.AcceptanceCriteria {
				sb.WriteString(fmt.Sprintf("  - %s\n", c))
			}
		}
		sb.WriteString("\n")
	}

	if len(spec.UserStories) > 0 {
		sb.WriteString("## User Stories\n\n")
		for _, s := range spec.UserStories {
			sb.WriteString(fmt.Sprintf("- **%s** As a %s, I want %s so that %s\n", s.ID, s.Actor, s.Action, s.Benefit))
		}
		sb.WriteString("\n")
	}

	if len(spec.UseCases) > 0 {
		sb.WriteString("## Use Cases\n\n")
		for _, uc := range spec.UseCases {
			sb.WriteString(fmt.Sprintf("- **%s** %s", uc.ID, uc.Name))
			if len(uc.Actors) > 0 {
				sb.WriteString(fmt.Sprintf(" (%s)", strings.Join(uc.Actors, ", ")))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(result.Assignments) > 0 {
		sb.WriteString(FormatAssignmentsAsMarkdown(result.Assignments))
		sb.WriteString("\n\n")
	}

	if len(result.Validation) > 0 {
		sb.WriteString("## ✔️ Validation\n\n")
		for _, v := range result.Validation {
			sb.WriteString(formatValidationLine(v))
		}
	}

	return strings.TrimSpace(sb.String())
}

// FormatAgentsAsMarkdown formats the agent roster as markdown
func FormatAgentsAsMarkdown(agents []*domain.Agent) string {
	if len(agents) == 0 {
		return "🤖 **No agents registered**"
	}

	var sb strings.Builder
	sb.WriteString("# 🤖 Agents\n\n")

	for i, a := range agents {
		sb.WriteString(fmt.Sprintf("## %d. %s `[%s]`\n\n", i+1, a.Name, a.ID))
		sb.WriteString(fmt.Sprintf("**Type:** %s · **Availability:** %s\n\n", a.Type, a.Availability))
		if len(a.Capabilities) > 0 {
			sb.WriteString(fmt.Sprintf("**Capabilities:** %s\n\n", strings.Join(a.Capabilities, ", ")))
		}
		sb.WriteString(fmt.Sprintf("**Performance:** %d tasks, average %.1f\n\n", a.Performance.TasksCompleted, a.Performance.AverageScore))
	}

	return strings.TrimSpace(sb.String())
}

// FormatAssignmentsAsMarkdown formats the assignment log as markdown
func FormatAssignmentsAsMarkdown(assignments []*domain.Assignment) string {
	if len(assignments) == 0 {
		return "🎯 **No assignments yet**"
	}

	var sb strings.Builder
	sb.WriteString("## 🎯 Assignments\n\n")
	sb.WriteString("| Task | Agent | Confidence | Reason |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, a := range assignments {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.0f%% | %s |\n", a.TaskID, a.AgentName, a.Confidence*100, a.Reason))
	}

	return strings.TrimSpace(sb.String())
}

// FormatValidationAsMarkdown formats a single validation result
func FormatValidationAsMarkdown(v *domain.ValidationResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# ✔️ Validation for %s\n\n", v.TaskID))
	sb.WriteString(formatValidationLine(v))

	for _, issue := range v.Issues {
		sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", issue.Severity, issue.Category, issue.Message))
	}
	if len(v.Suggestions) > 0 {
		sb.WriteString("\n### Suggestions\n")
		for _, s := range v.Suggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}

	return strings.TrimSpace(sb.String())
}

func formatValidationLine(v *domain.ValidationResult) string {
	mark := "✅"
	if !v.Passed {
		mark = "❌"
	}
	return fmt.Sprintf("%s `%s` score %d/100, %d issue(s)\n", mark, v.TaskID, v.Score, len(v.Issues))
}

// FormatSearchResultsAsMarkdown lists ranked search hits
func FormatSearchResultsAsMarkdown(query string, results []*search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("🔍 **No tasks match %q**", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## 🔍 Results for %q\n\n", query))
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- `%s` %s %s (%.0f, %s)\n", r.Task.ID, priorityIcon(r.Task.Priority), r.Snippet, r.Score, r.MatchType))
	}

	return strings.TrimSpace(sb.String())
}

// FormatSummaryAsMarkdown renders the work summary
func FormatSummaryAsMarkdown(s *service.WorkSummary) string {
	var sb strings.Builder
	sb.WriteString("# 📊 Work Summary\n\n")

	ts := s.Tasks
	sb.WriteString(fmt.Sprintf("**Tasks:** %d (%.1fh estimated, %.1fh remaining)\n", ts.Total, ts.EstimatedHours, ts.RemainingHours))
	sb.WriteString(fmt.Sprintf("**Velocity:** %s\n\n", s.Insights.VelocityTrend))

	if ts.Total > 0 {
		sb.WriteString("## Status\n")
		for _, status := range []domain.TaskStatus{
			domain.StatusPending, domain.StatusAssigned, domain.StatusInProgress,
			domain.StatusNeedsRevision, domain.StatusCompleted,
		} {
			if n := ts.ByStatus[status]; n > 0 {
				sb.WriteString(fmt.Sprintf("- %s: %d\n", getStatusHeader(status), n))
			}
		}
		sb.WriteString("\n")
	}

	if len(s.Workload) > 0 {
		sb.WriteString("## Workload\n")
		sb.WriteString("| Agent | Open | Completed | Open hours |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, w := range s.Workload {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f |\n", w.AgentName, w.Open, w.Completed, w.OpenHours))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recommendations\n")
	for _, r := range s.Insights.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s\n", r))
	}

	return strings.TrimSpace(sb.String())
}
