package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/specforge/internal/domain"
)

var (
	storySectionRe = regexp.MustCompile(`(?i)stor(?:y|ies)`)
	storyRe        = regexp.MustCompile(`(?i)As (an?) (.+?), I want (.+?) so that (.+?)(?:\.|$)`)
)

func StoryID(n int) string { return fmt.Sprintf("US-%03d", n) }

func UserStories(sections []domain.Section) []domain.UserStory {
	stories := make([]domain.UserStory, 0)
	for _, section := range sections {
		if !storySectionRe.MatchString(section.Title) {
			continue
		}
		lines := strings.Split(section.Content, "\n")
		for i, line := range lines {
			m := storyRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			stories = append(stories, domain.UserStory{
				ID:                 StoryID(len(stories) + 1),
				Article:            strings.ToLower(m[1]),
				Actor:              trimClause(m[2]),
				Action:             trimClause(m[3]),
				Benefit:            trimClause(m[4]),
				AcceptanceCriteria: criteriaAfter(lines, i),
				Priority:           domain.PriorityMedium,
			})
		}
	}
	return stories
}

func trimClause(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ", ")
}
