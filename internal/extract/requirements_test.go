package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/specforge/internal/domain"
)

func TestRequirements_Widget(t *testing.T) {
	sections := []domain.Section{
		{Title: "Widget", Content: "A widget tracker.", Level: 1},
		{Title: "Requirements", Content: "- The system must support login.", Level: 2},
	}

	reqs := Requirements(sections)
	require.Len(t, reqs, 1)
	assert.Equal(t, "REQ-001", reqs[0].ID)
	assert.Equal(t, "The system must support login.", reqs[0].Description)
	assert.Equal(t, domain.RequirementFunctional, reqs[0].Type)
	assert.Equal(t, domain.PriorityCritical, reqs[0].Priority)
	assert.Equal(t, "Requirements", reqs[0].Source)
	assert.Empty(t, reqs[0].AcceptanceCriteria)
}

func TestRequirements_AcceptanceCriteria(t *testing.T) {
	content := "The system must export reports as CSV\n" +
		"- Header row included\n" +
		"- UTF-8 encoded\n" +
		"Unrelated closing line\n" +
		"- Orphan dash"

	reqs := Requirements([]domain.Section{{Title: "Export", Content: content, Level: 2}})
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"Header row included", "UTF-8 encoded"}, reqs[0].AcceptanceCriteria)
}

func TestRequirements_NestedCriteriaUnderBullet(t *testing.T) {
	content := "- The system must support login.\n" +
		"  - Accepts email and password\n" +
		"  - Locks after five failures\n" +
		"- The system should send weekly digests"

	reqs := Requirements([]domain.Section{{Title: "Requirements", Content: content, Level: 2}})
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{"Accepts email and password", "Locks after five failures"}, reqs[0].AcceptanceCriteria)
	assert.Empty(t, reqs[1].AcceptanceCriteria)
	assert.Equal(t, "REQ-002", reqs[1].ID)
	assert.Equal(t, domain.PriorityHigh, reqs[1].Priority)
}

func TestRequirements_NumbersAcrossSections(t *testing.T) {
	sections := []domain.Section{
		{Title: "Auth", Content: "- Users must reset passwords by email"},
		{Title: "Ops", Content: "The platform needs nightly backups"},
	}

	reqs := Requirements(sections)
	require.Len(t, reqs, 2)
	assert.Equal(t, "REQ-001", reqs[0].ID)
	assert.Equal(t, "Auth", reqs[0].Source)
	assert.Equal(t, "REQ-002", reqs[1].ID)
	assert.Equal(t, "Ops", reqs[1].Source)
}

func TestRequirements_NoMatches(t *testing.T) {
	reqs := Requirements([]domain.Section{{Title: "Intro", Content: "Hello there."}})
	assert.NotNil(t, reqs)
	assert.Empty(t, reqs)
	assert.Empty(t, Requirements(nil))
}
