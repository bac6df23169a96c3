// Package parser turns raw specification documents into domain.Specification
// values. Markdown, YAML and plain text are supported.
package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/extract"
)

const summaryLimit = 200

type parseFunc func(content string) (*domain.Specification, error)

var parsers = map[domain.Format]parseFunc{
	domain.FormatMarkdown: parseMarkdown,
	domain.FormatYAML:     parseYAML,
	domain.FormatPlain:    parsePlain,
}

// Parse decodes content in the given format. Unknown formats fail with
// *domain.UnsupportedFormatError, undecodable structured input with
// *domain.MalformedInputError. No partial specification is returned on error.
func Parse(content string, format domain.Format) (*domain.Specification, error) {
	fn, ok := parsers[format]
	if !ok {
		return nil, &domain.UnsupportedFormatError{Format: string(format)}
	}
	return fn(normalize(content))
}

func normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return norm.NFC.String(content)
}

func truncateSummary(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= summaryLimit {
		return s
	}
	return string([]rune(s)[:summaryLimit]) + "..."
}

// extractAll fills the narrative fields from the parsed sections.
func extractAll(spec *domain.Specification) {
	spec.Requirements = extract.Requirements(spec.Sections)
	spec.UserStories = extract.UserStories(spec.Sections)
	spec.UseCases = extract.UseCases(spec.Sections)
}
