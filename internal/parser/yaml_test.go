package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
)

func TestParseYAML_Sections(t *testing.T) {
	input := `title: Payments
description: Card and wallet payments.
scope:
  - cards
  - wallets
notes: Keep PCI in mind
`
	spec, err := Parse(input, domain.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Payments", spec.Title)
	assert.Equal(t, "Card and wallet payments.", spec.Summary)

	require.Len(t, spec.Sections, 4)
	titles := []string{spec.Sections[0].Title, spec.Sections[1].Title, spec.Sections[2].Title, spec.Sections[3].Title}
	assert.Equal(t, []string{"title", "description", "scope", "notes"}, titles)
	assert.Equal(t, "[\n  \"cards\",\n  \"wallets\"\n]", spec.Sections[2].Content)
	assert.Equal(t, "Keep PCI in mind", spec.Sections[3].Content)
	for _, s := range spec.Sections {
		assert.Equal(t, 1, s.Level)
	}
}

func TestParseYAML_DirectCollections(t *testing.T) {
	input := `title: Orders
summary: Order intake
requirements:
  - description: Orders must be idempotent
  - id: R-9
    description: Nice to have order notes
    type: business
    effort: 3
userStories:
  - actor: buyer
    action: track my order
    benefit: I know when it arrives
useCases:
  - name: Place order
    actors: [Buyer]
metadata:
  team: commerce
`
	spec, err := Parse(input, domain.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Order intake", spec.Summary)
	require.Len(t, spec.Requirements, 2)

	first := spec.Requirements[0]
	assert.Equal(t, "REQ-001", first.ID)
	assert.Equal(t, domain.RequirementFunctional, first.Type)
	assert.Equal(t, domain.PriorityCritical, first.Priority)
	assert.NotNil(t, first.AcceptanceCriteria)

	second := spec.Requirements[1]
	assert.Equal(t, "R-9", second.ID)
	assert.Equal(t, domain.RequirementBusiness, second.Type)
	assert.Equal(t, domain.PriorityLow, second.Priority)
	require.NotNil(t, second.Effort)
	assert.Equal(t, 3.0, *second.Effort)

	require.Len(t, spec.UserStories, 1)
	assert.Equal(t, "US-001", spec.UserStories[0].ID)
	assert.Equal(t, domain.PriorityMedium, spec.UserStories[0].Priority)

	require.Len(t, spec.UseCases, 1)
	assert.Equal(t, "UC-001", spec.UseCases[0].ID)
	assert.Equal(t, []string{"Buyer"}, spec.UseCases[0].Actors)

	assert.Equal(t, "commerce", spec.Metadata["team"])
}

func TestParseYAML_Malformed(t *testing.T) {
	tests := map[string]string{
		"syntax":           "title: [unclosed",
		"scalar root":      "just a string",
		"list root":        "- a\n- b",
		"empty":            "",
		"bad requirements": "requirements: not-a-list",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			spec, err := Parse(input, domain.FormatYAML)
			require.Error(t, err)
			assert.Nil(t, spec)
			assert.True(t, errors.Is(err, domain.ErrMalformedInput))

			var mie *domain.MalformedInputError
			require.True(t, errors.As(err, &mie))
			assert.Equal(t, domain.FormatYAML, mie.Format)
		})
	}
}
