// Package extract pulls requirements, user stories and use cases out of
// parsed specification sections. Every function here is pure and never
// fails; no match yields an empty slice.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/specforge/internal/domain"
)

// minRequirementLength is the rune count a trimmed line must exceed.
const minRequirementLength = 15

var (
	dividerRe       = regexp.MustCompile(`^(?:-{3,}|={3,})$`)
	shortCriteriaRe = regexp.MustCompile(`(?i)^-\s+(?:criteria\b.*|\w+\s+\d+)$`)
	listMarkerRe    = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)
	reqLabelRe      = regexp.MustCompile(`(?i)^requirement:\s*`)
)

// requirementRules are tried in order; the first match qualifies a line.
var requirementRules = []func(string) bool{
	matchAll(`(?i)^(?:[-*+]|\d+[.)])\s+.*\b(?:requirement|must|shall|should|will|system|feature|function)`),
	matchAll(`(?i)^(?:requirement\b|req-|(?:the\s+)?system\b).*\b(?:must|shall|should|will)\b`),
	matchAll(`(?i)^requirement:`),
	matchAll(`(?i)\b(?:system|application|platform)\b`, `(?i)\b(?:needs|requires|should|must)\b`),
	matchAll(`(?i)\b(?:performance|security|reliability)\b`, `(?i)\b(?:should|must|needs|requires)\b`),
}

func matchAll(patterns ...string) func(string) bool {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return func(s string) bool {
		for _, re := range res {
			if !re.MatchString(s) {
				return false
			}
		}
		return true
	}
}

// IsRequirement reports whether a single line reads as a requirement statement.
func IsRequirement(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || dividerRe.MatchString(trimmed) {
		return false
	}
	if utf8.RuneCountInString(trimmed) <= minRequirementLength {
		return false
	}
	if shortCriteriaRe.MatchString(trimmed) {
		return false
	}
	for _, rule := range requirementRules {
		if rule(trimmed) {
			return true
		}
	}
	return false
}

type keywordRule[T any] struct {
	keywords []string
	label    T
}

func (r keywordRule[T]) matches(lower string) bool {
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

var typeRules = []keywordRule[domain.RequirementType]{
	{[]string{"performance", "scalability", "security", "usability"}, domain.RequirementNonFunctional},
	{[]string{"technology", "framework", "architecture", "implementation"}, domain.RequirementTechnical},
	{[]string{"business", "revenue", "cost", "roi"}, domain.RequirementBusiness},
}

var priorityRules = []keywordRule[domain.Priority]{
	{[]string{"critical", "must", "required"}, domain.PriorityCritical},
	{[]string{"important", "should"}, domain.PriorityHigh},
	{[]string{"nice to have", "may"}, domain.PriorityLow},
}

// Classify maps a requirement description to its type. Substring checks,
// first rule wins, functional otherwise.
func Classify(description string) domain.RequirementType {
	lower := strings.ToLower(description)
	for _, r := range typeRules {
		if r.matches(lower) {
			return r.label
		}
	}
	return domain.RequirementFunctional
}

func DeterminePriority(text string) domain.Priority {
	lower := strings.ToLower(text)
	for _, r := range priorityRules {
		if r.matches(lower) {
			return r.label
		}
	}
	return domain.PriorityMedium
}

func cleanDescription(line string) string {
	s := strings.TrimSpace(line)
	s = listMarkerRe.ReplaceAllString(s, "")
	s = reqLabelRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
