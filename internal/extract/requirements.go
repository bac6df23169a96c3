package extract

import (
	"fmt"
	"strings"

	"github.com/rcliao/specforge/internal/domain"
)

func RequirementID(n int) string { return fmt.Sprintf("REQ-%03d", n) }

// Requirements scans every section line by line and returns the matches
// numbered REQ-001 onwards in document order.
func Requirements(sections []domain.Section) []domain.Requirement {
	reqs := make([]domain.Requirement, 0)
	for _, section := range sections {
		lines := strings.Split(section.Content, "\n")
		for i, line := range lines {
			if !IsRequirement(line) {
				continue
			}
			desc := cleanDescription(line)
			reqs = append(reqs, domain.Requirement{
				ID:                 RequirementID(len(reqs) + 1),
				Description:        desc,
				Type:               Classify(desc),
				Priority:           DeterminePriority(desc),
				AcceptanceCriteria: criteriaAfter(lines, i),
				Source:             section.Title,
			})
		}
	}
	return reqs
}

// criteriaAfter collects the dash lines directly below lines[i]. When the
// anchor is itself a list item only deeper-indented dash lines count, so a
// sibling bullet ends the run.
func criteriaAfter(lines []string, i int) []string {
	criteria := make([]string, 0)
	anchor := lines[i]
	bulleted := listMarkerRe.MatchString(strings.TrimSpace(anchor))
	for _, next := range lines[i+1:] {
		trimmed := strings.TrimSpace(next)
		if !strings.HasPrefix(trimmed, "-") {
			break
		}
		if bulleted && indentOf(next) <= indentOf(anchor) {
			break
		}
		if c := strings.TrimSpace(strings.TrimPrefix(trimmed, "-")); c != "" {
			criteria = append(criteria, c)
		}
	}
	return criteria
}
