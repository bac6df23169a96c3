// Package report renders ingest results for the terminal and for disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// Summary renders one boxed block per ingested file.
func Summary(path string, result *service.ParseResult) string {
	var lines []string

	head := result.Spec.Title
	if path != "" {
		head = fmt.Sprintf("%s · %s", head, filepath.Base(path))
	}
	lines = append(lines, titleStyle.Render(head))

	spec := result.Spec
	lines = append(lines, fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
		labelStyle.Render("sections"), len(spec.Sections),
		labelStyle.Render("requirements"), len(spec.Requirements),
		labelStyle.Render("stories"), len(spec.UserStories),
		labelStyle.Render("use cases"), len(spec.UseCases)))

	if len(result.Tasks) > 0 {
		lines = append(lines, "")
		owners := make(map[string]string, len(result.Assignments))
		for _, a := range result.Assignments {
			owners[a.TaskID] = a.AgentName
		}
		for _, t := range result.Tasks {
			line := fmt.Sprintf("%s  %s [%s, %s, %.1fh]", t.ID, t.Title, t.Type, t.Priority, t.EstimatedHours)
			if name, ok := owners[t.ID]; ok {
				line += labelStyle.Render(" → " + name)
			}
			lines = append(lines, line)
		}
	}

	if issues := validationLines(result.Validation); len(issues) > 0 {
		lines = append(lines, "")
		lines = append(lines, issues...)
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func validationLines(results []*domain.ValidationResult) []string {
	var lines []string
	failed := 0
	for _, v := range results {
		if !v.Passed {
			failed++
		}
		for _, issue := range v.Issues {
			style := warnStyle
			if issue.Severity == domain.SeverityError {
				style = errorStyle
			}
			lines = append(lines, style.Render(fmt.Sprintf("%s %s: %s", v.TaskID, issue.Severity, issue.Message)))
		}
	}
	if len(results) == 0 {
		return nil
	}
	if failed == 0 {
		return append(lines, okStyle.Render(fmt.Sprintf("all %d tasks passed validation", len(results))))
	}
	return append(lines, errorStyle.Render(fmt.Sprintf("%d of %d tasks failed validation", failed, len(results))))
}

// WriteJSON writes v as indented JSON, replacing path atomically.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
