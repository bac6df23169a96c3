package parser

import (
	"strings"

	"github.com/rcliao/specforge/internal/domain"
)

func parsePlain(content string) (*domain.Specification, error) {
	spec := domain.NewSpecification()

	lines := strings.Split(content, "\n")
	if t := strings.TrimSpace(lines[0]); t != "" {
		spec.Title = t
	}
	if len(lines) > 1 {
		if s := strings.TrimSpace(lines[1]); s != "" {
			spec.Summary = truncateSummary(s)
		}
	}

	spec.Sections = []domain.Section{{Title: "Content", Content: content, Level: 1}}
	extractAll(spec)
	return spec, nil
}
