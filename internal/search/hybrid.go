// Package search ranks generated tasks against a free-text query.
package search

import (
	"sort"
	"strings"

	"github.com/rcliao/specforge/internal/domain"
)

type MatchType string

const (
	MatchKeyword    MatchType = "keyword"
	MatchStructural MatchType = "structural"
)

type Options struct {
	Filter domain.TaskFilter
	Limit  int
	Offset int
}

type Result struct {
	Task      *domain.Task `json:"task"`
	Score     float64      `json:"score"`
	MatchType MatchType    `json:"matchType"`
	Snippet   string       `json:"snippet"`
}

type TaskLister interface {
	ListTasks(filter domain.TaskFilter) ([]*domain.Task, error)
}

// HybridSearch combines a text match over title and description with a
// structural match over requirement ids, task type and assigned agent.
type HybridSearch struct {
	tasks TaskLister
}

func NewHybridSearch(tasks TaskLister) *HybridSearch {
	return &HybridSearch{tasks: tasks}
}

func (hs *HybridSearch) Search(query string, opts Options) ([]*Result, error) {
	tasks, err := hs.tasks.ListTasks(opts.Filter)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	results := make([]*Result, 0)
	if query == "" {
		return results, nil
	}

	for _, task := range tasks {
		keyword := hs.keywordScore(task, query)
		structural := hs.structuralScore(task, query)
		if keyword == 0 && structural == 0 {
			continue
		}

		r := &Result{Task: task, Score: keyword + structural}
		if keyword >= structural {
			r.MatchType = MatchKeyword
			r.Snippet = hs.keywordSnippet(task, query)
		} else {
			r.MatchType = MatchStructural
			r.Snippet = hs.structuralSnippet(task, query)
		}
		results = append(results, r)
	}

	// Stable so equal scores keep creation order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return paginate(results, opts.Offset, opts.Limit), nil
}

// paginate treats a negative offset as zero and a non-positive limit as
// unbounded.
func paginate(results []*Result, offset, limit int) []*Result {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []*Result{}
	}
	end := offset + limit
	if limit <= 0 || end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

func (hs *HybridSearch) keywordScore(task *domain.Task, query string) float64 {
	score := 0.0

	title := strings.ToLower(task.Title)
	if strings.Contains(title, query) {
		score += 10.0
		if title == query {
			score += 5.0
		}
	}

	if strings.Contains(strings.ToLower(task.Description), query) {
		score += 5.0
	}

	return score
}

func (hs *HybridSearch) structuralScore(task *domain.Task, query string) float64 {
	score := 0.0

	for _, id := range task.Requirements {
		if strings.ToLower(id) == query {
			score += 8.0
		}
	}
	if strings.ToLower(string(task.Type)) == query {
		score += 4.0
	}
	if task.AssignedAgent != "" && strings.ToLower(task.AssignedAgent) == query {
		score += 6.0
	}

	return score
}

func (hs *HybridSearch) keywordSnippet(task *domain.Task, query string) string {
	if strings.Contains(strings.ToLower(task.Title), query) {
		return highlight(task.Title, query)
	}
	if strings.Contains(strings.ToLower(task.Description), query) {
		return extractSnippet(task.Description, query, 100)
	}
	return task.Title
}

func (hs *HybridSearch) structuralSnippet(task *domain.Task, query string) string {
	for _, id := range task.Requirements {
		if strings.ToLower(id) == query {
			return "Requirement: " + id
		}
	}
	if task.AssignedAgent != "" && strings.ToLower(task.AssignedAgent) == query {
		return "Agent: " + task.AssignedAgent
	}
	return "Type: " + string(task.Type)
}

func extractSnippet(text, query string, maxLength int) string {
	index := strings.Index(strings.ToLower(text), query)
	if index == -1 || len(strings.ToLower(text)) != len(text) {
		if len(text) > maxLength {
			return truncateRunes(text, maxLength) + "..."
		}
		return text
	}

	start := index - 30
	if start < 0 {
		start = 0
	}
	end := index + len(query) + 30
	if end > len(text) {
		end = len(text)
	}
	// Keep the window on rune boundaries.
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet += "..."
	}
	return highlight(snippet, query)
}

// highlight wraps the first case-insensitive match in markdown bold.
func highlight(text, query string) string {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		return text
	}
	index := strings.Index(lower, query)
	if index == -1 {
		return text
	}
	end := index + len(query)
	return text[:index] + "**" + text[index:end] + "**" + text[end:]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
