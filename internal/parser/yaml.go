package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/extract"
)

var errNotMapping = errors.New("top-level value is not a mapping")

func parseYAML(content string) (*domain.Specification, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil, malformedYAML(err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, malformedYAML(errNotMapping)
	}
	mapping := root.Content[0]

	spec := domain.NewSpecification()
	var hasReqs, hasStories, hasUseCases bool
	var description string

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i].Value, mapping.Content[i+1]

		sectionContent, err := renderValue(value)
		if err != nil {
			return nil, malformedYAML(err)
		}
		spec.Sections = append(spec.Sections, domain.Section{Title: key, Content: sectionContent, Level: 1})

		switch key {
		case "title":
			if t := strings.TrimSpace(scalarString(value)); t != "" {
				spec.Title = t
			}
		case "summary":
			if s := scalarString(value); strings.TrimSpace(s) != "" {
				spec.Summary = truncateSummary(s)
			}
		case "description":
			description = scalarString(value)
		case "requirements":
			if err := value.Decode(&spec.Requirements); err != nil {
				return nil, malformedYAML(fmt.Errorf("requirements: %w", err))
			}
			hasReqs = true
		case "userStories":
			if err := value.Decode(&spec.UserStories); err != nil {
				return nil, malformedYAML(fmt.Errorf("userStories: %w", err))
			}
			hasStories = true
		case "useCases":
			if err := value.Decode(&spec.UseCases); err != nil {
				return nil, malformedYAML(fmt.Errorf("useCases: %w", err))
			}
			hasUseCases = true
		case "metadata":
			meta := make(map[string]any)
			if err := value.Decode(&meta); err != nil {
				return nil, malformedYAML(fmt.Errorf("metadata: %w", err))
			}
			spec.Metadata = meta
		}
	}

	if spec.Summary == domain.DefaultSummary && strings.TrimSpace(description) != "" {
		spec.Summary = truncateSummary(description)
	}

	if spec.Requirements == nil {
		spec.Requirements = make([]domain.Requirement, 0)
	}
	if spec.UserStories == nil {
		spec.UserStories = make([]domain.UserStory, 0)
	}
	if spec.UseCases == nil {
		spec.UseCases = make([]domain.UseCase, 0)
	}

	if hasReqs {
		fillRequirements(spec.Requirements)
	} else {
		spec.Requirements = extract.Requirements(spec.Sections)
	}
	if hasStories {
		fillStories(spec.UserStories)
	} else {
		spec.UserStories = extract.UserStories(spec.Sections)
	}
	if hasUseCases {
		fillUseCases(spec.UseCases)
	} else {
		spec.UseCases = extract.UseCases(spec.Sections)
	}
	return spec, nil
}

func malformedYAML(err error) error {
	return &domain.MalformedInputError{Format: domain.FormatYAML, Err: err}
}

func scalarString(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// renderValue returns string scalars verbatim and everything else as
// two-space indented JSON, falling back to YAML when JSON cannot hold it.
func renderValue(n *yaml.Node) (string, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return "", err
	}
	if out, err := json.MarshalIndent(v, "", "  "); err == nil {
		return string(out), nil
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func fillRequirements(reqs []domain.Requirement) {
	for i := range reqs {
		r := &reqs[i]
		if r.ID == "" {
			r.ID = extract.RequirementID(i + 1)
		}
		if r.Type == "" {
			r.Type = extract.Classify(r.Description)
		}
		if r.Priority == "" {
			r.Priority = extract.DeterminePriority(r.Description)
		}
		if r.AcceptanceCriteria == nil {
			r.AcceptanceCriteria = make([]string, 0)
		}
	}
}

func fillStories(stories []domain.UserStory) {
	for i := range stories {
		s := &stories[i]
		if s.ID == "" {
			s.ID = extract.StoryID(i + 1)
		}
		if s.Priority == "" {
			s.Priority = domain.PriorityMedium
		}
		if s.AcceptanceCriteria == nil {
			s.AcceptanceCriteria = make([]string, 0)
		}
	}
}

func fillUseCases(cases []domain.UseCase) {
	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = extract.UseCaseID(i + 1)
		}
	}
}
