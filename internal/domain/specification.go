package domain

import (
	"time"

	"github.com/google/uuid"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
	FormatPlain    Format = "plain"
)

func (f Format) Valid() bool {
	switch f {
	case FormatMarkdown, FormatYAML, FormatPlain:
		return true
	}
	return false
}

type RequirementType string

const (
	RequirementFunctional    RequirementType = "functional"
	RequirementNonFunctional RequirementType = "non-functional"
	RequirementTechnical     RequirementType = "technical"
	RequirementBusiness      RequirementType = "business"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

const (
	DefaultTitle   = "Untitled Specification"
	DefaultSummary = "No summary provided"
)

// Specification is the canonical model produced by the parser.
type Specification struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Summary      string         `json:"summary"`
	Sections     []Section      `json:"sections"`
	Requirements []Requirement  `json:"requirements"`
	UserStories  []UserStory    `json:"userStories"`
	UseCases     []UseCase      `json:"useCases"`
	Metadata     map[string]any `json:"metadata"`
	Timestamp    time.Time      `json:"timestamp"`
}

type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

type Requirement struct {
	ID                 string          `json:"id" yaml:"id"`
	Description        string          `json:"description" yaml:"description"`
	Type               RequirementType `json:"type" yaml:"type"`
	Priority           Priority        `json:"priority" yaml:"priority"`
	AcceptanceCriteria []string        `json:"acceptanceCriteria" yaml:"acceptanceCriteria"`
	Source             string          `json:"source,omitempty" yaml:"source"`
	Effort             *float64        `json:"effort,omitempty" yaml:"effort"`
}

type UserStory struct {
	ID                 string   `json:"id" yaml:"id"`
	Article            string   `json:"article,omitempty" yaml:"article,omitempty"`
	Actor              string   `json:"actor" yaml:"actor"`
	Action             string   `json:"action" yaml:"action"`
	Benefit            string   `json:"benefit" yaml:"benefit"`
	AcceptanceCriteria []string `json:"acceptanceCriteria" yaml:"acceptanceCriteria"`
	Priority           Priority `json:"priority" yaml:"priority"`
	Effort             *float64 `json:"effort,omitempty" yaml:"effort"`
}

type UseCase struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	Actors           []string `json:"actors" yaml:"actors"`
	Preconditions    []string `json:"preconditions" yaml:"preconditions"`
	Postconditions   []string `json:"postconditions" yaml:"postconditions"`
	MainFlow         []string `json:"mainFlow" yaml:"mainFlow"`
	AlternativeFlows []string `json:"alternativeFlows,omitempty" yaml:"alternativeFlows"`
}

func NewSpecification() *Specification {
	return &Specification{
		ID:           uuid.New().String(),
		Title:        DefaultTitle,
		Summary:      DefaultSummary,
		Sections:     make([]Section, 0),
		Requirements: make([]Requirement, 0),
		UserStories:  make([]UserStory, 0),
		UseCases:     make([]UseCase, 0),
		Metadata:     make(map[string]any),
		Timestamp:    time.Now(),
	}
}

// RequirementIDs returns the IDs of every requirement in declaration order.
func (s *Specification) RequirementIDs() []string {
	ids := make([]string, 0, len(s.Requirements))
	for _, r := range s.Requirements {
		ids = append(ids, r.ID)
	}
	return ids
}
